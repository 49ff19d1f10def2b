// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/speedtype/internal/model"
)

// DefaultHistoryLimit is the number of most recent records plotted.
const DefaultHistoryLimit = 500

const sparkChars = " .:-=+*#%@"

// Summarize computes headline numbers over records and character stats.
// With no records every figure is zero.
func Summarize(records []model.ExerciseRecord, chars []model.CharAggregate) model.Summary {
	var sum model.Summary
	for _, c := range chars {
		sum.TotalHits += c.Hits
		sum.TotalMisses += c.Misses
	}
	if len(records) == 0 {
		return sum
	}
	var totalAcc, totalWPM float64
	for i, rec := range records {
		totalAcc += rec.Accuracy
		totalWPM += rec.WordsPerMinute
		if i == 0 || rec.Accuracy > sum.MaxAccuracy {
			sum.MaxAccuracy = rec.Accuracy
		}
		if i == 0 || rec.WordsPerMinute > sum.MaxWPM {
			sum.MaxWPM = rec.WordsPerMinute
		}
	}
	count := float64(len(records))
	last := records[len(records)-1]
	sum.Exercises = len(records)
	sum.AvgAccuracy = totalAcc / count
	sum.AvgWPM = totalWPM / count
	sum.LastAccuracy = last.Accuracy
	sum.LastWPM = last.WordsPerMinute
	sum.FirstTimestamp = records[0].Timestamp
	sum.LastTimestamp = last.Timestamp
	return sum
}

// FilterRecords applies the Since and Last filters of cfg.
func FilterRecords(records []model.ExerciseRecord, cfg model.StatsConfig) []model.ExerciseRecord {
	out := make([]model.ExerciseRecord, 0, len(records))
	for _, rec := range records {
		if cfg.Since != nil && rec.Timestamp.Before(*cfg.Since) {
			continue
		}
		out = append(out, rec)
	}
	return TakeLast(out, cfg.Last)
}

// TakeLast returns the final n elements of values, or all of them when
// n <= 0 or n exceeds the length.
func TakeLast[T any](values []T, n int) []T {
	if n <= 0 || n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

// AccuracySeries projects records onto their accuracy.
func AccuracySeries(records []model.ExerciseRecord) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = rec.Accuracy
	}
	return out
}

// WPMSeries projects records onto their words per minute.
func WPMSeries(records []model.ExerciseRecord) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = rec.WordsPerMinute
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = clamp(idx, 0, len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
