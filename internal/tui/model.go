// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/exercise"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/stats"
)

const (
	tickInterval   = 250 * time.Millisecond
	wrongSpaceRune = '•'
	// trendLength is how many recent exercises the footer trend covers.
	trendLength = 20
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	weakStyle        = pendingStyle.Copy().Bold(true)
	cursorStyle      = currentWordStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pausedStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 4)
)

// Options configures the typing UI.
type Options struct {
	Logger *slog.Logger
	// WeakTop is the number of weakest characters highlighted in pending
	// words. Zero disables highlighting.
	WeakTop int
}

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctx     context.Context
	session *session.Session
	history stats.Source
	logger  *slog.Logger
	weakTop int

	input   textinput.Model
	weakSet map[rune]struct{}
	summary model.Summary
	trend   string
	status  string

	width  int
	height int
}

// NewModel constructs a typing TUI model.
func NewModel(ctx context.Context, sess *session.Session, history stats.Source, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "start typing"
	input.CharLimit = 0
	input.Focus()

	m := &Model{
		ctx:     ctx,
		session: sess,
		history: history,
		logger:  logger.With("component", "tui"),
		weakTop: opts.WeakTop,
		input:   input,
	}
	m.refreshHistory()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlP, tea.KeyTab:
			m.session.TogglePause()
			return m, nil
		case tea.KeyCtrlN:
			m.next()
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.handleInput(value)
	}
	return m, cmd
}

func (m *Model) handleInput(value string) {
	res, err := m.session.HandleInput(m.ctx, value)
	switch {
	case errors.Is(err, exercise.ErrFinished):
		// The next exercise could not be generated; ignore input until it is.
		m.status = "exercise finished, press ctrl+n for a new one"
	case err != nil:
		m.logger.Error("failed to handle input", "err", err)
		m.status = err.Error()
	default:
		m.status = ""
	}
	if res.Record != nil {
		m.refreshHistory()
	}
	m.syncInput()
}

func (m *Model) next() {
	if err := m.session.Next(); err != nil {
		m.logger.Error("failed to start exercise", "err", err)
		m.status = err.Error()
		return
	}
	m.status = ""
	m.syncInput()
}

// syncInput mirrors the exercise's input, which is cleared on word advance.
func (m *Model) syncInput() {
	current := m.session.Exercise().CurrentInput()
	if m.session.Exercise().IsFinished() {
		current = ""
	}
	if m.input.Value() != current {
		m.input.SetValue(current)
		m.input.CursorEnd()
	}
}

func (m *Model) refreshHistory() {
	if m.history == nil {
		return
	}
	chars := m.history.CharacterStats()
	records := m.history.Records()
	m.summary = stats.Summarize(records, chars)
	m.trend = ""
	if len(records) > 1 {
		m.trend = stats.Sparkline(stats.WPMSeries(stats.TakeLast(records, trendLength)))
	}
	if m.weakTop > 0 {
		m.weakSet = stats.SelectWeakChars(chars, m.weakTop)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	ex := m.session.Exercise()
	styled := buildStyledRunes(ex.Words(), ex.CurrentWordIndex(), ex.CurrentInput(), m.weakSet)
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styled) + "\n" + m.input.View()
	}
	contentWidth := max(int(float64(m.width)*0.70), 1)
	m.input.Width = contentWidth - len(m.input.Prompt) - 1

	var body string
	if m.session.Paused() {
		body = pausedStyle.Render("Paused\n\nctrl+p or keep typing to resume")
	} else {
		text := lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styled, contentWidth))
		body = lipgloss.JoinVertical(lipgloss.Left, text, "", m.input.View())
	}

	footer := m.renderFooter()
	if m.status != "" {
		footer = errorStyle.Render(m.status)
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return content + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	ex := m.session.Exercise()
	segments := []string{
		fmt.Sprintf("Word %d/%d", ex.CurrentWordIndex()+1, ex.WordCount()),
		fmt.Sprintf("Now %.1f WPM · %.0f%%", ex.WordsPerMinute(), ex.Accuracy()),
	}
	if last, ok := m.session.Last(); ok {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.0f%%", last.WordsPerMinute, last.Accuracy))
	}
	if m.summary.Exercises > 0 {
		segments = append(segments, fmt.Sprintf("Avg %.1f WPM · %.1f%% (%d)", m.summary.AvgWPM, m.summary.AvgAccuracy, m.summary.Exercises))
	}
	if m.trend != "" {
		segments = append(segments, "Trend ["+m.trend+"]")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
