package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/speedtype/internal/exercise"
	"github.com/verte-zerg/speedtype/internal/model"
)

type scriptedGenerator struct {
	batches [][]string
	calls   int
	err     error
}

func (g *scriptedGenerator) Generate() ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	words := g.batches[g.calls%len(g.batches)]
	g.calls++
	return words, nil
}

type memoryRecorder struct {
	hits    map[rune]int
	misses  map[rune]int
	records []model.ExerciseRecord
	saves   int
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{hits: map[rune]int{}, misses: map[rune]int{}}
}

func (r *memoryRecorder) AddCharacterHit(ch rune, amount int) error {
	r.hits[ch] += amount
	return nil
}

func (r *memoryRecorder) AddCharacterMiss(ch rune, amount int) error {
	r.misses[ch] -= amount
	return nil
}

func (r *memoryRecorder) AddExerciseRecord(_ context.Context, rec model.ExerciseRecord) error {
	r.records = append(r.records, rec)
	r.saves++
	return nil
}

func (r *memoryRecorder) Save(context.Context) error {
	r.saves++
	return nil
}

type manualClock struct {
	t time.Time
}

func (c *manualClock) now() time.Time { return c.t }

func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(t *testing.T, batches ...[]string) (*Session, *memoryRecorder, *manualClock) {
	t.Helper()
	clock := &manualClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	rec := newMemoryRecorder()
	s, err := New(&scriptedGenerator{batches: batches}, rec, Options{Now: clock.now})
	require.NoError(t, err)
	return s, rec, clock
}

func typeAll(t *testing.T, s *Session, clock *manualClock, inputs ...string) []Result {
	t.Helper()
	out := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		clock.advance(time.Second)
		res, err := s.HandleInput(context.Background(), in)
		require.NoError(t, err, "input %q", in)
		out = append(out, res)
	}
	return out
}

func TestFinishRecordsAndStartsNext(t *testing.T) {
	s, rec, clock := newTestSession(t, []string{"ab", "cd"}, []string{"next"})
	first := s.Exercise()

	results := typeAll(t, s, clock, "a", "ab", "ab ", "c", "cd")
	last := results[len(results)-1]
	require.NotNil(t, last.Record)
	assert.True(t, last.Finished)

	require.Len(t, rec.records, 1)
	assert.Equal(t, 100.0, rec.records[0].Accuracy)
	// Timing starts at the first keystroke: four more inputs, one second each.
	assert.InDelta(t, 5/exercise.AverageWordLength/4*60, rec.records[0].WordsPerMinute, 1e-9)
	assert.Equal(t, clock.t, rec.records[0].Timestamp)

	assert.NotSame(t, first, s.Exercise())
	assert.Equal(t, []string{"next"}, s.Exercise().Words())
	assert.Equal(t, exercise.NotStarted, s.Exercise().State())
	assert.Equal(t, 1, s.Completed())
	got, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, rec.records[0], got)
}

func TestKeystrokesFeedCharacterStats(t *testing.T) {
	s, rec, clock := newTestSession(t, []string{"ab", "c"})
	typeAll(t, s, clock, "a", "ax", "a", "ab", "ab ", "c")

	assert.Equal(t, 1, rec.hits['a'])
	assert.Equal(t, 1, rec.hits['b'])
	assert.Equal(t, 1, rec.misses['b'])
	assert.Equal(t, 1, rec.hits[' '])
	assert.Equal(t, 1, rec.hits['c'])
}

func TestPauseExcludesTime(t *testing.T) {
	s, rec, clock := newTestSession(t, []string{"goo"})
	typeAll(t, s, clock, "g")

	assert.True(t, s.TogglePause())
	assert.True(t, s.Paused())
	clock.advance(time.Hour)
	assert.Equal(t, time.Duration(0), s.Elapsed())

	results := typeAll(t, s, clock, "go", "goo")
	assert.True(t, results[0].Resumed)
	assert.False(t, results[1].Resumed)
	require.Len(t, rec.records, 1)
	// Only the second after resuming is counted.
	assert.InDelta(t, 3/exercise.AverageWordLength/1*60, rec.records[0].WordsPerMinute, 1e-9)
}

func TestTogglePauseBeforeStart(t *testing.T) {
	s, _, _ := newTestSession(t, []string{"go"})
	assert.False(t, s.TogglePause())
	assert.False(t, s.Paused())
}

func TestNextAbandons(t *testing.T) {
	s, rec, clock := newTestSession(t, []string{"one"}, []string{"two"})
	typeAll(t, s, clock, "o", "on")
	require.NoError(t, s.Next())
	assert.Equal(t, []string{"two"}, s.Exercise().Words())
	assert.Empty(t, rec.records)
	assert.Equal(t, time.Duration(0), s.Elapsed())
}

func TestGeneratorFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&scriptedGenerator{err: boom}, newMemoryRecorder(), Options{})
	require.ErrorIs(t, err, boom)
}

func TestCloseSaves(t *testing.T) {
	s, rec, _ := newTestSession(t, []string{"x"})
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, rec.saves)
}
