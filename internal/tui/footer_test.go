package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/store"
)

type fixedWords []string

func (f fixedWords) Generate() ([]string, error) { return f, nil }

func newTestModel(t *testing.T, words ...string) (*Model, *store.Store) {
	t.Helper()
	st := store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "save.json")), store.Options{Version: "1.0.0"})
	sess, err := session.New(fixedWords(words), st, session.Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewModel(context.Background(), sess, st, Options{WeakTop: 3}), st
}

func typeString(m *Model, s string) {
	for _, r := range s {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		m.Update(msg)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m, st := newTestModel(t, "ab", "cd")
	if err := st.AddExerciseRecord(context.Background(), model.ExerciseRecord{Accuracy: 96.9, WordsPerMinute: 68.1}); err != nil {
		t.Fatalf("add record: %v", err)
	}
	m.refreshHistory()

	out := m.renderFooter()
	if !containsAll(out, []string{"Word 1/2", "WPM", "Avg 68.1 WPM", "96.9%", "(1)"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "Last") {
		t.Fatalf("expected no last segment before finishing an exercise: %s", out)
	}
	if strings.Contains(out, "Trend") {
		t.Fatalf("expected no trend with a single record: %s", out)
	}
}

func TestRenderFooterTrend(t *testing.T) {
	m, st := newTestModel(t, "ab")
	for _, wpm := range []float64{40, 60, 80} {
		if err := st.AddExerciseRecord(context.Background(), model.ExerciseRecord{Accuracy: 100, WordsPerMinute: wpm}); err != nil {
			t.Fatalf("add record: %v", err)
		}
	}
	m.refreshHistory()
	if out := m.renderFooter(); !strings.Contains(out, "Trend [ +@]") {
		t.Fatalf("expected WPM trend in footer: %s", out)
	}
}

func TestTypingFinishesExercise(t *testing.T) {
	m, st := newTestModel(t, "ab", "cd")
	typeString(m, "ab ")
	if got := m.session.Exercise().CurrentWordIndex(); got != 1 {
		t.Fatalf("expected to advance to word 1, got %d", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after advance, got %q", m.input.Value())
	}
	typeString(m, "cd")
	if st.ExerciseCount() != 1 {
		t.Fatalf("expected one stored exercise, got %d", st.ExerciseCount())
	}
	if !strings.Contains(m.renderFooter(), "Last") {
		t.Fatalf("expected last segment after finishing")
	}
	if got := st.Character('a'); got.Hits != 1 {
		t.Fatalf("expected a hit for 'a', got %+v", got)
	}
}

func TestPauseOverlay(t *testing.T) {
	m, _ := newTestModel(t, "ab", "cd")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	typeString(m, "a")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	if !m.session.Paused() {
		t.Fatalf("expected paused session")
	}
	if !strings.Contains(m.View(), "Paused") {
		t.Fatalf("expected pause overlay")
	}
	typeString(m, "b")
	if m.session.Paused() {
		t.Fatalf("expected typing to resume")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
