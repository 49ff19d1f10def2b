package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/speedtype/internal/model"
)

// Source provides the stored data a report is built from.
type Source interface {
	Records() []model.ExerciseRecord
	CharacterStats() []model.CharAggregate
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Summary model.Summary
	// Recent holds at most DefaultHistoryLimit records for the curves.
	Recent      []model.ExerciseRecord
	Chars       []model.CharAggregate
	CurveWindow int
	WeakTop     int
	FrequentTop int
	Width       int
}

// BuildReport filters the stored records and prepares them for rendering.
func BuildReport(src Source, cfg model.StatsConfig) Report {
	records := FilterRecords(src.Records(), cfg)
	chars := src.CharacterStats()
	return Report{
		Summary:     Summarize(records, chars),
		Recent:      TakeLast(records, DefaultHistoryLimit),
		Chars:       chars,
		CurveWindow: cfg.CurveWindow,
		WeakTop:     cfg.WeakTop,
		FrequentTop: cfg.FrequentTop,
		Width:       cfg.Width,
	}
}

// Render writes every section of the report.
func Render(w io.Writer, r Report, useColor bool) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if r.Summary.Exercises == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Recent, r.CurveWindow, r.Width, useColor); err != nil {
		return err
	}
	if err := RenderCharTable(w, "Weakest Characters", WeakestChars(r.Chars, r.WeakTop)); err != nil {
		return err
	}
	if r.FrequentTop <= 0 {
		return nil
	}
	return RenderCharTable(w, "Most Typed Characters", TopCharsByFrequency(r.Chars, r.FrequentTop))
}

// RenderSummary prints the headline numbers.
func RenderSummary(w io.Writer, s model.Summary) error {
	if s.Exercises == 0 {
		_, err := fmt.Fprintln(w, "No exercises recorded yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Exercises: %d (%s to %s)", s.Exercises, formatDate(s.FirstTimestamp), formatDate(s.LastTimestamp)),
		fmt.Sprintf("Max Accuracy: %.2f%%", s.MaxAccuracy),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy),
		fmt.Sprintf("Max WPM: %.2f", s.MaxWPM),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Last: %.0f%% at %.2f WPM", s.LastAccuracy, s.LastWPM),
	}
	if total := s.TotalHits + s.TotalMisses; total > 0 {
		lines = append(lines, fmt.Sprintf("Keystrokes: %d (%d missed)", total, s.TotalMisses))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves plots accuracy and WPM over the given records, smoothed
// by a moving average of window records.
func RenderCurves(w io.Writer, records []model.ExerciseRecord, window, totalWidth int, useColor bool) error {
	if len(records) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = 80
	}
	diagrams := []Diagram{
		{
			Title:  fmt.Sprintf("Accuracy (last %d)", len(records)),
			Values: MovingAverage(AccuracySeries(records), window),
			Format: "%.0f%%",
			Color:  lipgloss.Color("#52C41A"),
		},
		{
			Title:  fmt.Sprintf("Words per minute (last %d)", len(records)),
			Values: MovingAverage(WPMSeries(records), window),
			Format: "%.1f",
			Color:  lipgloss.Color("#C89A3A"),
		},
	}
	for _, d := range diagrams {
		d.Width = DiagramWidthFor(totalWidth, d.Values, d.Format)
		if err := d.Render(w, useColor); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
