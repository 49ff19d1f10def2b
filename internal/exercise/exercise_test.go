package exercise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Duration

func (c fixedClock) Elapsed() time.Duration { return time.Duration(c) }

func feed(t *testing.T, ex *Exercise, inputs ...string) []Outcome {
	t.Helper()
	outs := make([]Outcome, 0, len(inputs))
	for _, in := range inputs {
		out, err := ex.HandleInput(in)
		require.NoError(t, err, "input %q", in)
		outs = append(outs, out)
	}
	return outs
}

func TestSingleMissEpisodeThenAdvance(t *testing.T) {
	ex, err := New([]string{"hello", "world"}, nil)
	require.NoError(t, err)

	outs := feed(t, ex, "h", "he", "hx", "h", "he", "hel", "hell", "hello ")

	assert.True(t, outs[0].Started)
	assert.True(t, outs[2].Missed)
	assert.True(t, outs[7].Advanced)
	assert.Equal(t, 1, ex.Misses())
	assert.Equal(t, 1, ex.CurrentWordIndex())
	assert.Equal(t, "world", ex.CurrentWord())
	assert.Equal(t, "", ex.CurrentInput())
	assert.Equal(t, Running, ex.State())
}

func TestSustainedWrongTypingCountsOnce(t *testing.T) {
	ex, err := New([]string{"hello", "world"}, nil)
	require.NoError(t, err)

	feed(t, ex, "h", "hx", "hxx", "hxxx", "hxxxx", "hxxxxx")
	assert.Equal(t, 1, ex.Misses())

	// Recovering and failing again starts a second episode.
	feed(t, ex, "h", "hq")
	assert.Equal(t, 2, ex.Misses())
}

func TestFirstKeystrokeResetsMisses(t *testing.T) {
	ex, err := New([]string{"hello", "world"}, nil)
	require.NoError(t, err)

	outs := feed(t, ex, "x")
	assert.True(t, outs[0].Started)
	assert.False(t, outs[0].Missed)
	assert.Equal(t, 0, ex.Misses())
	assert.False(t, ex.IsValidPrefix())

	// Still wrong: no new episode.
	feed(t, ex, "xy")
	assert.Equal(t, 0, ex.Misses())
}

func TestStartOnlyOnce(t *testing.T) {
	ex, err := New([]string{"hello", "world"}, nil)
	require.NoError(t, err)

	outs := feed(t, ex, "h", "", "h")
	assert.True(t, outs[0].Started)
	assert.False(t, outs[2].Started)
}

func TestFinishOnLastWordWithoutSpace(t *testing.T) {
	ex, err := New([]string{"ab", "cd"}, fixedClock(6*time.Second))
	require.NoError(t, err)

	outs := feed(t, ex, "a", "ab", "ab ", "c", "cd")
	assert.True(t, outs[2].Advanced)
	assert.True(t, outs[4].Finished)
	assert.True(t, ex.IsFinished())
	assert.Equal(t, 1, ex.CurrentWordIndex())

	// "ab " + "cd" = 5 correct characters.
	assert.Equal(t, 5, ex.WrittenRightCharacters())
	assert.InDelta(t, 5/AverageWordLength/6*60, ex.WordsPerMinute(), 1e-9)
}

func TestFinishedIgnoresInput(t *testing.T) {
	ex, err := New([]string{"go", "fast"}, nil)
	require.NoError(t, err)
	feed(t, ex, "g", "go", "go ", "f", "fa", "fas", "fast")
	require.True(t, ex.IsFinished())

	misses, index := ex.Misses(), ex.CurrentWordIndex()
	for _, in := range []string{"x", "", "fast ", "zzz"} {
		_, err := ex.HandleInput(in)
		require.ErrorIs(t, err, ErrFinished)
	}
	assert.Equal(t, misses, ex.Misses())
	assert.Equal(t, index, ex.CurrentWordIndex())
	assert.True(t, ex.IsFinished())
	assert.Equal(t, "fast", ex.CurrentInput())
}

func TestAdvanceRequiresExactWord(t *testing.T) {
	ex, err := New([]string{"cat", "dog"}, nil)
	require.NoError(t, err)

	outs := feed(t, ex, "c", "ca", "ca ")
	assert.False(t, outs[2].Advanced)
	assert.Equal(t, 0, ex.CurrentWordIndex())

	outs = feed(t, ex, "cat", "cat  ")
	assert.False(t, outs[1].Advanced)
	assert.Equal(t, 0, ex.CurrentWordIndex())

	outs = feed(t, ex, "cat ")
	assert.True(t, outs[0].Advanced)
	assert.Equal(t, 1, ex.CurrentWordIndex())
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		words  []string
		misses int
		want   float64
	}{
		{"no misses", []string{"hello", "world"}, 0, 100},
		// 11 characters, 1 miss: round(90.909...) = 91.
		{"one miss", []string{"hello", "world"}, 1, 91},
		{"clamped at zero", []string{"a", "b"}, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := New(tt.words, nil)
			require.NoError(t, err)
			ex.misses = tt.misses
			got := ex.Accuracy()
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestWordsPerMinuteCountsOnlyValidPrefix(t *testing.T) {
	ex, err := New([]string{"hello", "world"}, fixedClock(30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0.0, ex.WordsPerMinute())

	feed(t, ex, "h", "he", "hel", "hell", "hello ", "w", "wo")
	assert.Equal(t, 8, ex.WrittenRightCharacters())

	feed(t, ex, "wx")
	assert.Equal(t, 6, ex.WrittenRightCharacters())
	assert.InDelta(t, 6/AverageWordLength/30*60, ex.WordsPerMinute(), 1e-9)
}

func TestWordsPerMinuteZeroElapsed(t *testing.T) {
	ex, err := New([]string{"hello"}, fixedClock(0))
	require.NoError(t, err)
	feed(t, ex, "h", "he")
	assert.Equal(t, 0.0, ex.WordsPerMinute())

	noClock, err := New([]string{"hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, noClock.WordsPerMinute())
}

func TestKeystrokes(t *testing.T) {
	ex, err := New([]string{"ab", "c"}, nil)
	require.NoError(t, err)

	outs := feed(t, ex, "a", "ax", "a", "ab", "ab ", "c")
	require.NotNil(t, outs[0].Keystroke)
	assert.Equal(t, Keystroke{Expected: 'a', Typed: 'a', Hit: true}, *outs[0].Keystroke)
	require.NotNil(t, outs[1].Keystroke)
	assert.Equal(t, Keystroke{Expected: 'b', Typed: 'x', Hit: false}, *outs[1].Keystroke)
	assert.Nil(t, outs[2].Keystroke, "backspace is not a keystroke")
	require.NotNil(t, outs[4].Keystroke)
	assert.Equal(t, ' ', outs[4].Keystroke.Expected)
	assert.True(t, outs[4].Keystroke.Hit)
	require.NotNil(t, outs[5].Keystroke)
	assert.Equal(t, 'c', outs[5].Keystroke.Expected)
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrNoWords)
}

func TestRecord(t *testing.T) {
	ex, err := New([]string{"hi"}, fixedClock(3*time.Second))
	require.NoError(t, err)

	_, err = ex.Record(time.Now())
	require.ErrorIs(t, err, ErrNotFinished)

	feed(t, ex, "h", "hi")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	rec, err := ex.Record(at)
	require.NoError(t, err)
	assert.Equal(t, at.UTC(), rec.Timestamp)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.Equal(t, 100.0, rec.Accuracy)
	assert.InDelta(t, 2/AverageWordLength/3*60, rec.WordsPerMinute, 1e-9)
}

func TestStopwatch(t *testing.T) {
	now := time.Unix(1000, 0)
	sw := NewStopwatchWithClock(func() time.Time { return now })
	assert.Equal(t, time.Duration(0), sw.Elapsed())

	sw.Start()
	now = now.Add(2 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed())

	sw.Pause()
	now = now.Add(10 * time.Second)
	assert.Equal(t, 2*time.Second, sw.Elapsed())
	assert.True(t, sw.Paused())

	sw.Resume()
	now = now.Add(time.Second)
	assert.Equal(t, 3*time.Second, sw.Elapsed())

	sw.Stop()
	now = now.Add(time.Minute)
	assert.Equal(t, 3*time.Second, sw.Elapsed())
	assert.False(t, sw.Running())

	sw.Start()
	assert.Equal(t, time.Duration(0), sw.Elapsed())
}
