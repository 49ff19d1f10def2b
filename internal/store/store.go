// Package store persists character statistics and exercise records as a
// single versioned JSON document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/version"
)

var (
	// ErrInvalidAmount is returned for a character delta with the wrong sign.
	ErrInvalidAmount = errors.New("invalid character amount")
	// ErrUnreadSave is returned by writes while the stored document could
	// not be read. Writing would replace data the store never saw.
	ErrUnreadSave = errors.New("save data could not be read")
)

// CorruptSaveError reports a save document that could not be used. The
// store is left empty.
type CorruptSaveError struct {
	Location  string
	Preserved string
	Err       error
}

func (e *CorruptSaveError) Error() string {
	if e.Preserved != "" {
		return fmt.Sprintf("corrupt save at %s (moved to %s): %v", e.Location, e.Preserved, e.Err)
	}
	return fmt.Sprintf("corrupt save at %s: %v", e.Location, e.Err)
}

func (e *CorruptSaveError) Unwrap() error {
	return e.Err
}

// Options configures a Store.
type Options struct {
	// Version is written into every saved document.
	Version string
	// Pretty indents the saved document.
	Pretty bool
	Logger *slog.Logger
}

// Store owns the in-memory statistics and their serialized mirror.
type Store struct {
	mu      sync.Mutex
	backend Backend
	opts    Options
	logger  *slog.Logger

	chars   map[rune]*model.CharacterStat
	records []model.ExerciseRecord

	charMirror   map[string]json.RawMessage
	recordMirror []byte

	// readErr is set when Load failed to read the backend. Writes are
	// refused until a later Load succeeds or Clear is called.
	readErr error
}

// New returns an empty store over backend. Call Load to read prior data.
func New(backend Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = version.Version
	}
	s := &Store{
		backend: backend,
		opts:    opts,
		logger:  logger.With("component", "store"),
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.chars = make(map[rune]*model.CharacterStat)
	s.records = nil
	s.charMirror = make(map[string]json.RawMessage)
	s.recordMirror = emptyArray
}

// Location describes where the store persists its document.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load replaces the in-memory state with the stored document. A missing
// document leaves the store empty and is not an error. An unusable
// document is moved aside and reported as *CorruptSaveError.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.readErr = nil
	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			s.logger.Debug("no save data", "location", s.backend.Location())
			return nil
		}
		s.readErr = err
		s.logger.Warn("save unreadable, writes disabled", "location", s.backend.Location(), "err", err)
		return fmt.Errorf("failed to load save: %w", err)
	}

	doc, err := decodeDocument(data)
	if err == nil {
		err = version.CheckCompatible(doc.version, s.opts.Version)
	}
	if err != nil {
		return s.corrupt(ctx, err)
	}

	s.chars = doc.chars
	s.charMirror = doc.charRaw
	s.records = doc.records
	s.recordMirror = doc.recordRaw
	s.logger.Debug("loaded save",
		"location", s.backend.Location(),
		"version", doc.version,
		"characters", len(s.chars),
		"records", len(s.records),
	)
	return nil
}

func (s *Store) corrupt(ctx context.Context, cause error) error {
	corruptErr := &CorruptSaveError{Location: s.backend.Location(), Err: cause}
	preserved, err := s.backend.Preserve(ctx)
	if err != nil {
		s.logger.Warn("failed to preserve corrupt save", "location", corruptErr.Location, "err", err)
	} else {
		corruptErr.Preserved = preserved
	}
	s.logger.Warn("corrupt save", "location", corruptErr.Location, "preserved", preserved, "err", cause)
	return corruptErr
}

// Save writes the current state to the backend.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.readErr != nil {
		return fmt.Errorf("%w at %s: %v", ErrUnreadSave, s.backend.Location(), s.readErr)
	}
	charData, err := json.Marshal(s.charMirror)
	if err != nil {
		return fmt.Errorf("failed to encode character data: %w", err)
	}
	doc := document{
		Version:       s.opts.Version,
		CharacterData: charData,
		ExerciseData:  s.recordMirror,
	}
	var data []byte
	if s.opts.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to encode save: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return err
	}
	s.logger.Debug("saved", "location", s.backend.Location(), "bytes", len(data))
	return nil
}

// AddCharacterHit adds amount hits for r. amount must be positive.
func (s *Store) AddCharacterHit(r rune, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: hit amount %d", ErrInvalidAmount, amount)
	}
	s.apply(r, amount)
	return nil
}

// AddCharacterMiss adds |amount| misses for r. amount must be negative.
func (s *Store) AddCharacterMiss(r rune, amount int) error {
	if amount >= 0 {
		return fmt.Errorf("%w: miss amount %d", ErrInvalidAmount, amount)
	}
	s.apply(r, amount)
	return nil
}

func (s *Store) apply(r rune, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, ok := s.chars[r]
	if !ok {
		stat = &model.CharacterStat{}
		s.chars[r] = stat
	}
	stat.Apply(delta)
	s.charMirror[string(r)] = encodeChar(*stat)
}

// AddExerciseRecord appends rec and saves. Timestamps are kept at
// millisecond precision, the resolution of the save document.
func (s *Store) AddExerciseRecord(ctx context.Context, rec model.ExerciseRecord) error {
	rec.Timestamp = time.UnixMilli(rec.UnixMilli()).UTC()
	encoded, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	s.recordMirror = appendRaw(s.recordMirror, encoded)
	return s.saveLocked(ctx)
}

// Clear drops all statistics and saves the empty state. It overwrites an
// unreadable save.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.readErr = nil
	return s.saveLocked(ctx)
}

// ExerciseCount returns the number of stored records.
func (s *Store) ExerciseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Records returns a copy of the records in chronological order.
func (s *Store) Records() []model.ExerciseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ExerciseRecord, len(s.records))
	copy(out, s.records)
	return out
}

// AccuracyHistory returns accuracy per record in chronological order.
func (s *Store) AccuracyHistory() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Accuracy
	}
	return out
}

// WordsPerMinuteHistory returns WPM per record in chronological order.
func (s *Store) WordsPerMinuteHistory() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.WordsPerMinute
	}
	return out
}

// TimestampHistory returns record timestamps in chronological order.
func (s *Store) TimestampHistory() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Timestamp
	}
	return out
}

// Character returns the stat for r. Unknown characters are zero.
func (s *Store) Character(r rune) model.CharacterStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stat, ok := s.chars[r]; ok {
		return *stat
	}
	return model.CharacterStat{}
}

// CharacterStats returns all character stats sorted by character.
func (s *Store) CharacterStats() []model.CharAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CharAggregate, 0, len(s.chars))
	for r, stat := range s.chars {
		out = append(out, model.CharAggregate{Char: string(r), CharacterStat: *stat})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Char < out[j].Char
	})
	return out
}

// Close releases the backend. It does not save.
func (s *Store) Close() error {
	return s.backend.Close()
}
