package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes colors the exercise text: finished words, the word being
// typed compared against input, and pending words with weak characters
// marked. Extra typed characters are shown after the current word.
func buildStyledRunes(words []string, current int, input string, weak map[rune]struct{}) []styledRune {
	out := make([]styledRune, 0, len(words)*6)
	typed := []rune(input)
	for wi, word := range words {
		if wi > 0 {
			out = append(out, spaceRune(wi, current, typed, []rune(words[wi-1])))
		}
		target := []rune(word)
		switch {
		case wi < current:
			for _, r := range target {
				out = append(out, newStyledRune(r, correctStyle.Render(string(r))))
			}
		case wi == current:
			for i, r := range target {
				style := currentWordStyle
				switch {
				case i < len(typed) && typed[i] == r:
					style = correctStyle
				case i < len(typed):
					style = incorrectStyle
				case i == len(typed):
					style = cursorStyle
				}
				out = append(out, newStyledRune(r, style.Render(string(r))))
			}
			for i := len(target); i < len(typed); i++ {
				r := typed[i]
				if r == ' ' {
					r = wrongSpaceRune
				}
				out = append(out, newStyledRune(r, incorrectStyle.Render(string(r))))
			}
		default:
			for _, r := range target {
				style := pendingStyle
				if _, ok := weak[r]; ok {
					style = weakStyle
				}
				out = append(out, newStyledRune(r, style.Render(string(r))))
			}
		}
	}
	return out
}

// spaceRune styles the separator in front of word wi. It carries the cursor
// once the previous word has been typed completely.
func spaceRune(wi, current int, typed, prev []rune) styledRune {
	style := pendingStyle
	switch {
	case wi <= current:
		style = correctStyle
	case wi == current+1 && len(typed) == len(prev) && string(typed) == string(prev):
		style = cursorStyle
	}
	return styledRune{s: style.Render(" "), width: 1, isSpace: true}
}

func newStyledRune(r rune, rendered string) styledRune {
	return styledRune{s: rendered, width: runewidth.RuneWidth(r)}
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at spaces so no line exceeds width cells.
// Words longer than width are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
