// Package generator builds typing text sequences.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Bounds for the generator settings. Out-of-range assignments are ignored.
const (
	MinWordCount      = 4
	MaxWordCount      = 32
	MinCharacterCount = 16
	MaxCharacterCount = 192

	DefaultWordCount      = MinWordCount + (MaxWordCount-MinWordCount)/2
	DefaultCharacterCount = MinCharacterCount + (MaxCharacterCount-MinCharacterCount)/2

	// minCustomTextLength is the number of non-whitespace characters a
	// custom text must exceed to replace random words.
	minCustomTextLength = 16
)

// ErrInsufficientDictionary is returned when the dictionary cannot satisfy
// the requested budget without repeating words.
var ErrInsufficientDictionary = errors.New("dictionary too small for requested exercise")

// Source provides random access to dictionary words.
type Source interface {
	Size() int
	WordAt(index int) (string, error)
}

// Generator produces randomized typing text.
type Generator struct {
	rnd            *rand.Rand
	source         Source
	logger         *slog.Logger
	method         model.GeneratorMethod
	wordCount      int
	characterCount int
	customText     string
}

// New returns a Generator seeded with the current time.
func New(source Source, logger *slog.Logger) *Generator {
	return NewWithRand(source, logger, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand returns a Generator drawing from rnd.
func NewWithRand(source Source, logger *slog.Logger, rnd *rand.Rand) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		rnd:            rnd,
		source:         source,
		logger:         logger.With("component", "generator"),
		method:         model.MethodWordCount,
		wordCount:      DefaultWordCount,
		characterCount: DefaultCharacterCount,
	}
}

// UseWordCount makes Generate draw a fixed number of words.
func (g *Generator) UseWordCount() {
	g.method = model.MethodWordCount
}

// UseCharacterCount makes Generate draw words until the character budget is met.
func (g *Generator) UseCharacterCount() {
	g.method = model.MethodCharacterCount
}

// Method returns the active generation method.
func (g *Generator) Method() model.GeneratorMethod {
	return g.method
}

// WordCount returns the configured number of words.
func (g *Generator) WordCount() int {
	return g.wordCount
}

// SetWordCount sets the word count if n is within bounds and reports
// whether it was applied.
func (g *Generator) SetWordCount(n int) bool {
	if n < MinWordCount || n > MaxWordCount {
		return false
	}
	g.wordCount = n
	return true
}

// CharacterCount returns the configured character budget.
func (g *Generator) CharacterCount() int {
	return g.characterCount
}

// SetCharacterCount sets the character budget if n is within bounds and
// reports whether it was applied.
func (g *Generator) SetCharacterCount(n int) bool {
	if n < MinCharacterCount || n > MaxCharacterCount {
		return false
	}
	g.characterCount = n
	return true
}

// CustomText returns the configured override text.
func (g *Generator) CustomText() string {
	return g.customText
}

// SetCustomText sets a text that replaces random words when long enough.
func (g *Generator) SetCustomText(text string) {
	g.customText = text
}

// Apply copies generator settings from cfg, ignoring out-of-range values.
func (g *Generator) Apply(cfg model.Config) {
	if cfg.Method == model.MethodCharacterCount {
		g.UseCharacterCount()
	} else {
		g.UseWordCount()
	}
	g.SetWordCount(cfg.WordCount)
	g.SetCharacterCount(cfg.CharacterCount)
	g.SetCustomText(cfg.CustomText)
}

// Generate returns the words of the next exercise in typing order.
func (g *Generator) Generate() ([]string, error) {
	if words, ok := customWords(g.customText); ok {
		g.logger.Debug("using custom text", "words", len(words))
		return words, nil
	}
	size := g.source.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: no words loaded", ErrInsufficientDictionary)
	}

	started := time.Now()
	used := make(map[int]struct{}, MaxCharacterCount/2)
	words := make([]string, 0, MaxCharacterCount/2)
	characters := 0

	add := func() error {
		word, err := g.source.WordAt(g.selectIndex(used, size))
		if err != nil {
			return err
		}
		words = append(words, word)
		characters += utf8.RuneCountInString(word)
		return nil
	}

	if g.method == model.MethodWordCount {
		if size < g.wordCount {
			return nil, fmt.Errorf("%w: need %d words, have %d", ErrInsufficientDictionary, g.wordCount, size)
		}
		for i := 0; i < g.wordCount; i++ {
			if err := add(); err != nil {
				return nil, err
			}
		}
	} else {
		for characters < g.characterCount {
			if len(used) == size {
				return nil, fmt.Errorf("%w: need %d characters, dictionary has %d", ErrInsufficientDictionary, g.characterCount, characters)
			}
			if err := add(); err != nil {
				return nil, err
			}
		}
	}

	g.logger.Debug("selected words",
		"method", g.method.String(),
		"words", len(words),
		"characters", characters,
		"elapsed", time.Since(started))
	return words, nil
}

// selectIndex draws a uniform index in [0, size) that is not in used and
// records it. The caller guarantees that at least one index is free.
func (g *Generator) selectIndex(used map[int]struct{}, size int) int {
	for {
		idx := g.rnd.Intn(size)
		if _, taken := used[idx]; taken {
			continue
		}
		used[idx] = struct{}{}
		return idx
	}
}

func customWords(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	nonSpace := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			nonSpace++
		}
	}
	if nonSpace <= minCustomTextLength {
		return nil, false
	}
	return strings.Fields(text), true
}
