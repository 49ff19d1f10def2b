package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/speedtype/internal/model"
)

var charColumns = [...]string{"Char", "Accuracy", "Hits", "Misses"}

type charRow [len(charColumns)]string

// RenderCharTable prints per-character aggregates under title in the
// given order.
func RenderCharTable(w io.Writer, title string, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range charTableLines(aggs) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// charTableLines lays out a header plus one line per aggregate. Column
// widths are terminal cells, so wide characters keep the numbers aligned.
// The character column is left aligned and the counts right aligned.
func charTableLines(aggs []model.CharAggregate) []string {
	rows := make([]charRow, 0, len(aggs)+1)
	rows = append(rows, charColumns)
	for _, agg := range aggs {
		rows = append(rows, charRow{
			charLabel(agg.Char),
			fmt.Sprintf("%.2f%%", agg.Accuracy()*100),
			strconv.Itoa(agg.Hits),
			strconv.Itoa(agg.Misses),
		})
	}

	var widths [len(charColumns)]int
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, len(rows))
	var b strings.Builder
	for i, row := range rows {
		b.Reset()
		b.WriteString(runewidth.FillRight(row[0], widths[0]))
		for col := 1; col < len(row); col++ {
			b.WriteByte(' ')
			b.WriteString(runewidth.FillLeft(row[col], widths[col]))
		}
		lines[i] = b.String()
	}
	return lines
}

func charLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}
