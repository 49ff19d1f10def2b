// Package session runs consecutive exercises and records their results.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/speedtype/internal/exercise"
	"github.com/verte-zerg/speedtype/internal/model"
)

// Generator produces the words of the next exercise.
type Generator interface {
	Generate() ([]string, error)
}

// Recorder receives character statistics and finished exercises.
type Recorder interface {
	AddCharacterHit(r rune, amount int) error
	AddCharacterMiss(r rune, amount int) error
	AddExerciseRecord(ctx context.Context, rec model.ExerciseRecord) error
	Save(ctx context.Context) error
}

// Options configures a Session.
type Options struct {
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Result describes what one input change did.
type Result struct {
	exercise.Outcome
	// Record is set when the input finished an exercise.
	Record *model.ExerciseRecord
	// Resumed is set when the input ended a pause.
	Resumed bool
}

// Session owns the current exercise and its stopwatch.
type Session struct {
	gen      Generator
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	current   *exercise.Exercise
	watch     *exercise.Stopwatch
	last      *model.ExerciseRecord
	completed int
}

// New starts a session with a freshly generated exercise.
func New(gen Generator, recorder Recorder, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		gen:      gen,
		recorder: recorder,
		logger:   logger.With("component", "session"),
		now:      now,
	}
	if err := s.Next(); err != nil {
		return nil, err
	}
	return s, nil
}

// Exercise returns the exercise being typed.
func (s *Session) Exercise() *exercise.Exercise {
	return s.current
}

// Elapsed returns the running time of the current exercise.
func (s *Session) Elapsed() time.Duration {
	return s.watch.Elapsed()
}

// Paused reports whether the current exercise is paused.
func (s *Session) Paused() bool {
	return s.watch.Paused()
}

// Last returns the most recent record finished in this session.
func (s *Session) Last() (model.ExerciseRecord, bool) {
	if s.last == nil {
		return model.ExerciseRecord{}, false
	}
	return *s.last, true
}

// Completed returns how many exercises were finished in this session.
func (s *Session) Completed() int {
	return s.completed
}

// Next abandons the current exercise and starts a new one. On failure
// the current exercise is kept.
func (s *Session) Next() error {
	words, err := s.gen.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate exercise: %w", err)
	}
	watch := exercise.NewStopwatchWithClock(s.now)
	ex, err := exercise.New(words, watch)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	if s.current != nil && !s.current.IsFinished() && s.current.State() == exercise.Running {
		s.logger.Debug("abandoned exercise", "word", s.current.CurrentWordIndex(), "words", s.current.WordCount())
	}
	s.current = ex
	s.watch = watch
	return nil
}

// TogglePause pauses or resumes a running exercise. It reports whether the
// exercise is paused afterwards.
func (s *Session) TogglePause() bool {
	if s.current.State() != exercise.Running {
		return false
	}
	if s.watch.Paused() {
		s.watch.Resume()
	} else {
		s.watch.Pause()
	}
	return s.watch.Paused()
}

// HandleInput feeds the current word's input to the exercise. Typing
// while paused resumes. When the exercise finishes its record is stored
// and the next exercise starts.
func (s *Session) HandleInput(ctx context.Context, input string) (Result, error) {
	var res Result
	if s.watch.Paused() {
		s.watch.Resume()
		res.Resumed = true
	}

	out, err := s.current.HandleInput(input)
	if err != nil {
		return res, err
	}
	res.Outcome = out

	if out.Started {
		s.watch.Start()
	}
	var errs []error
	if ks := out.Keystroke; ks != nil {
		if ks.Hit {
			err = s.recorder.AddCharacterHit(ks.Expected, 1)
		} else {
			err = s.recorder.AddCharacterMiss(ks.Expected, -1)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to record keystroke: %w", err))
		}
	}
	if !out.Finished {
		return res, errors.Join(errs...)
	}

	s.watch.Stop()
	rec, err := s.current.Record(s.now())
	if err != nil {
		return res, errors.Join(append(errs, err)...)
	}
	res.Record = &rec
	s.last = &rec
	s.completed++
	s.logger.Info("exercise finished",
		"accuracy", rec.Accuracy,
		"wpm", rec.WordsPerMinute,
		"misses", s.current.Misses(),
		"elapsed", s.watch.Elapsed(),
	)
	if err := s.recorder.AddExerciseRecord(ctx, rec); err != nil {
		errs = append(errs, fmt.Errorf("failed to store exercise: %w", err))
	}
	if err := s.Next(); err != nil {
		errs = append(errs, err)
	}
	return res, errors.Join(errs...)
}

// Close saves character statistics gathered since the last record.
func (s *Session) Close(ctx context.Context) error {
	if err := s.recorder.Save(ctx); err != nil {
		return fmt.Errorf("failed to save on close: %w", err)
	}
	return nil
}
