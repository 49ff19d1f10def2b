package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	defaultDiagramHeight = 8
	minDiagramWidth      = 10
	axisRune             = '│'
	cornerRune           = '└'
	baseRune             = '─'
)

// Diagram is a braille line chart of one series, scaled between the
// series' own minimum and maximum.
type Diagram struct {
	Title  string
	Values []float64
	// Width and Height are in terminal cells for the plot area. Zero
	// picks a default.
	Width  int
	Height int
	Format string
	Color  lipgloss.Color
}

// DiagramWidthFor returns the plot width that fits a diagram of values
// into totalWidth cells including the axis.
func DiagramWidthFor(totalWidth int, values []float64, format string) int {
	w := totalWidth - labelWidth(values, format) - 2
	if w < minDiagramWidth {
		return minDiagramWidth
	}
	return w
}

// Render writes the diagram. Nothing is written for an empty series.
func (d Diagram) Render(w io.Writer, useColor bool) error {
	if len(d.Values) == 0 {
		return nil
	}
	width := d.Width
	if width <= 0 {
		width = DiagramWidthFor(80, d.Values, d.format())
	}
	if width < minDiagramWidth {
		width = minDiagramWidth
	}
	height := d.Height
	if height <= 0 {
		height = defaultDiagramHeight
	}

	lo, hi := minMax(d.Values)
	grid := newBrailleGrid(width, height)
	points := resample(d.Values, width*2)
	prevX, prevY := -1, -1
	for x, v := range points {
		y := scaleToDot(v, lo, hi, height*4)
		if prevX < 0 {
			grid.set(x, y)
		} else {
			line(prevX, prevY, x, y, grid.set)
		}
		prevX, prevY = x, y
	}

	style := lipgloss.NewStyle()
	if useColor && d.Color != "" {
		style = style.Foreground(d.Color)
	}
	format := d.format()
	labelW := labelWidth(d.Values, format)
	labels := axisLabels(lo, hi, height, format)

	if d.Title != "" {
		if _, err := fmt.Fprintln(w, d.Title); err != nil {
			return err
		}
	}
	for row := 0; row < height; row++ {
		label := runewidth.FillLeft(labels[row], labelW)
		if _, err := fmt.Fprintf(w, "%s %c%s\n", label, axisRune, style.Render(grid.row(row))); err != nil {
			return err
		}
	}
	base := strings.Repeat(" ", labelW) + " " + string(cornerRune) + strings.Repeat(string(baseRune), width)
	if _, err := fmt.Fprintln(w, base); err != nil {
		return err
	}
	first, last := "1", fmt.Sprintf("%d", len(d.Values))
	gap := width - runewidth.StringWidth(first) - runewidth.StringWidth(last)
	if gap < 1 {
		gap = 1
	}
	ticks := strings.Repeat(" ", labelW+2) + first + strings.Repeat(" ", gap) + last
	if _, err := fmt.Fprintln(w, ticks); err != nil {
		return err
	}
	return nil
}

func (d Diagram) format() string {
	if d.Format == "" {
		return "%.1f"
	}
	return d.Format
}

func labelWidth(values []float64, format string) int {
	lo, hi := minMax(values)
	return max(
		runewidth.StringWidth(fmt.Sprintf(format, lo)),
		runewidth.StringWidth(fmt.Sprintf(format, hi)),
	)
}

// axisLabels labels the top, middle and bottom rows.
func axisLabels(lo, hi float64, height int, format string) []string {
	labels := make([]string, height)
	labels[0] = fmt.Sprintf(format, hi)
	if height > 1 {
		labels[height-1] = fmt.Sprintf(format, lo)
	}
	if height > 2 {
		labels[height/2] = fmt.Sprintf(format, (lo+hi)/2)
	}
	return labels
}

// scaleToDot maps v onto dot rows, row 0 being the top.
func scaleToDot(v, lo, hi float64, rows int) int {
	if rows <= 1 || hi-lo < 1e-9 {
		return rows / 2
	}
	pos := (v - lo) / (hi - lo)
	return clamp(int(math.Round((1-pos)*float64(rows-1))), 0, rows-1)
}

// resample stretches or averages values into n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) >= n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx] + (values[idx+1]-values[idx])*frac
		}
	}
	return out
}

// line plots a Bresenham line between two dots.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// brailleGrid holds 2x4 dot cells.
type brailleGrid struct {
	cells [][]uint8
}

// dotBits maps (column, row) within a cell to its braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func newBrailleGrid(width, height int) *brailleGrid {
	cells := make([][]uint8, height)
	for i := range cells {
		cells[i] = make([]uint8, width)
	}
	return &brailleGrid{cells: cells}
}

func (g *brailleGrid) set(x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(g.cells) || cx >= len(g.cells[cy]) {
		return
	}
	g.cells[cy][cx] |= dotBits[x%2][y%4]
}

func (g *brailleGrid) row(y int) string {
	var b strings.Builder
	for _, mask := range g.cells[y] {
		b.WriteRune(rune(0x2800 + int(mask)))
	}
	return b.String()
}
