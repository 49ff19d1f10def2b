// Package model defines shared data structures.
package model

import "time"

// GeneratorMethod selects how the generator sizes an exercise.
type GeneratorMethod int

const (
	// MethodWordCount draws a fixed number of words.
	MethodWordCount GeneratorMethod = iota
	// MethodCharacterCount draws words until a character budget is reached.
	MethodCharacterCount
)

// String returns the config name of the method.
func (m GeneratorMethod) String() string {
	if m == MethodCharacterCount {
		return "chars"
	}
	return "words"
}

// ParseGeneratorMethod maps a config name to a method.
func ParseGeneratorMethod(s string) (GeneratorMethod, bool) {
	switch s {
	case "words", "word-count":
		return MethodWordCount, true
	case "chars", "character-count":
		return MethodCharacterCount, true
	default:
		return MethodWordCount, false
	}
}

// Config defines practice settings.
type Config struct {
	Lang           string
	Method         GeneratorMethod
	WordCount      int
	CharacterCount int
	CustomText     string
	Backend        string
	Pretty         bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Width       int
	WeakTop     int
	FrequentTop int
}

// ExerciseRecord is the result of one finished exercise.
type ExerciseRecord struct {
	Timestamp      time.Time
	Accuracy       float64
	WordsPerMinute float64
}

// UnixMilli returns the timestamp in milliseconds since the Unix epoch.
func (r ExerciseRecord) UnixMilli() int64 {
	return r.Timestamp.UnixMilli()
}

// CharacterStat is a lifetime hit/miss tally for one character.
type CharacterStat struct {
	Hits   int
	Misses int
}

// Apply adds a signed delta: positive values count as hits, negative
// values count as misses by their absolute value.
func (c *CharacterStat) Apply(delta int) {
	if delta >= 0 {
		c.Hits += delta
		return
	}
	c.Misses -= delta
}

// Total returns hits plus misses.
func (c CharacterStat) Total() int {
	return c.Hits + c.Misses
}

// Accuracy returns the hit ratio in [0, 1], or 0 with no typings.
func (c CharacterStat) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c.Hits) / float64(total)
}

// CharAggregate pairs a character with its statistic for reporting.
type CharAggregate struct {
	Char string
	CharacterStat
}

// Summary holds the headline numbers of the statistics view.
type Summary struct {
	Exercises      int
	MaxAccuracy    float64
	AvgAccuracy    float64
	MaxWPM         float64
	AvgWPM         float64
	LastAccuracy   float64
	LastWPM        float64
	TotalHits      int
	TotalMisses    int
	FirstTimestamp time.Time
	LastTimestamp  time.Time
}

