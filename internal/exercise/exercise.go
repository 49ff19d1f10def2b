// Package exercise evaluates typing input against a generated word sequence.
package exercise

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/speedtype/internal/model"
)

// AverageWordLength is the characters-per-word divisor used for WPM.
const AverageWordLength = 4.6

var (
	// ErrNoWords is returned when an exercise is created without words.
	ErrNoWords = errors.New("exercise has no words")
	// ErrFinished is returned when input arrives after the last word was typed.
	ErrFinished = errors.New("exercise already finished")
	// ErrNotFinished is returned when a record is requested too early.
	ErrNotFinished = errors.New("exercise not finished")
)

// State is the lifecycle stage of an exercise.
type State int

// Exercise states. Finished is terminal.
const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "not started"
	}
}

// Clock reports how long the exercise has been running.
type Clock interface {
	Elapsed() time.Duration
}

// Keystroke describes a single character appended to the input.
type Keystroke struct {
	// Expected is the character at the typed position; a space when the
	// position is past the end of the word.
	Expected rune
	Typed    rune
	Hit      bool
}

// Outcome reports what a call to HandleInput changed.
type Outcome struct {
	// Started is set on the first keystroke; the caller starts its timer.
	Started bool
	// Missed is set when a new miss episode begins.
	Missed bool
	// Advanced is set when the current word was completed with a space;
	// the caller clears its input field.
	Advanced bool
	// Finished is set when the last word was typed.
	Finished bool
	// Keystroke is set when the input grew by exactly one character.
	Keystroke *Keystroke
}

// Exercise holds the state of one practice session.
type Exercise struct {
	words      []string
	textLength int
	clock      Clock

	state          State
	index          int
	input          string
	previous       string
	wasValidPrefix bool
	misses         int
}

// New creates an exercise over words. clock supplies the elapsed time for
// WordsPerMinute and may be nil.
func New(words []string, clock Clock) (*Exercise, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	owned := make([]string, len(words))
	copy(owned, words)
	return &Exercise{
		words:          owned,
		textLength:     utf8.RuneCountInString(strings.Join(owned, " ")),
		clock:          clock,
		wasValidPrefix: true,
	}, nil
}

// HandleInput processes the full content of the input field for the
// current word. It returns ErrFinished without changing any state once
// the exercise is finished.
func (e *Exercise) HandleInput(input string) (Outcome, error) {
	var out Outcome
	if e.state == Finished {
		return out, ErrFinished
	}
	word := e.words[e.index]
	e.input = input
	out.Keystroke = e.keystroke(word, input)

	valid := isValidPrefix(word, input)
	if e.wasValidPrefix && !valid {
		e.misses++
		out.Missed = true
	}
	e.wasValidPrefix = valid

	if e.state == NotStarted && e.index == 0 && input != "" && e.previous == "" {
		e.state = Running
		e.misses = 0
		out.Missed = false
		out.Started = true
	}

	last := e.index == len(e.words)-1
	switch {
	case last && (input == word || input == word+" "):
		e.state = Finished
		out.Finished = true
	case !last && input == word+" ":
		e.index++
		e.input = ""
		e.previous = ""
		e.wasValidPrefix = true
		out.Advanced = true
		return out, nil
	}

	e.previous = input
	return out, nil
}

func (e *Exercise) keystroke(word, input string) *Keystroke {
	if len(input) <= len(e.previous) || !strings.HasPrefix(input, e.previous) {
		return nil
	}
	added := input[len(e.previous):]
	typed, size := utf8.DecodeRuneInString(added)
	if size != len(added) {
		return nil
	}
	pos := utf8.RuneCountInString(e.previous)
	expected := ' '
	if runes := []rune(word); pos < len(runes) {
		expected = runes[pos]
	}
	return &Keystroke{Expected: expected, Typed: typed, Hit: typed == expected}
}

func isValidPrefix(word, input string) bool {
	return strings.HasPrefix(word, strings.TrimRightFunc(input, unicode.IsSpace))
}

// State returns the lifecycle stage.
func (e *Exercise) State() State {
	return e.state
}

// IsFinished reports whether the last word has been typed.
func (e *Exercise) IsFinished() bool {
	return e.state == Finished
}

// Words returns the target words in typing order.
func (e *Exercise) Words() []string {
	out := make([]string, len(e.words))
	copy(out, e.words)
	return out
}

// WordCount returns the number of target words.
func (e *Exercise) WordCount() int {
	return len(e.words)
}

// Text returns the target words joined by single spaces.
func (e *Exercise) Text() string {
	return strings.Join(e.words, " ")
}

// TextLength returns the character length of Text.
func (e *Exercise) TextLength() int {
	return e.textLength
}

// CurrentWordIndex returns the 0-based index of the word being typed.
func (e *Exercise) CurrentWordIndex() int {
	return e.index
}

// CurrentWord returns the word being typed.
func (e *Exercise) CurrentWord() string {
	return e.words[e.index]
}

// CurrentInput returns the input for the current word.
func (e *Exercise) CurrentInput() string {
	return e.input
}

// IsValidPrefix reports whether the current input matches the start of
// the current word.
func (e *Exercise) IsValidPrefix() bool {
	return e.wasValidPrefix
}

// Misses returns the number of miss episodes since the first keystroke.
func (e *Exercise) Misses() int {
	return e.misses
}

// WrittenRightCharacters counts completed words with their separators plus
// the current input when it is a valid prefix.
func (e *Exercise) WrittenRightCharacters() int {
	n := 0
	for _, w := range e.words[:e.index] {
		n += utf8.RuneCountInString(w) + 1
	}
	if e.wasValidPrefix {
		n += utf8.RuneCountInString(strings.TrimRightFunc(e.input, unicode.IsSpace))
	}
	return n
}

// Accuracy returns round(max(1 - misses/textLength, 0) * 100).
func (e *Exercise) Accuracy() float64 {
	ratio := 1 - float64(e.misses)/float64(e.textLength)
	return math.Round(math.Max(ratio, 0) * 100)
}

// WordsPerMinute returns the typing speed so far, or 0 before any time
// has elapsed.
func (e *Exercise) WordsPerMinute() float64 {
	if e.clock == nil {
		return 0
	}
	seconds := e.clock.Elapsed().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(e.WrittenRightCharacters()) / AverageWordLength / seconds * 60
}

// Record snapshots a finished exercise at the given time.
func (e *Exercise) Record(at time.Time) (model.ExerciseRecord, error) {
	if e.state != Finished {
		return model.ExerciseRecord{}, ErrNotFinished
	}
	return model.ExerciseRecord{
		Timestamp:      at.UTC(),
		Accuracy:       e.Accuracy(),
		WordsPerMinute: e.WordsPerMinute(),
	}, nil
}
