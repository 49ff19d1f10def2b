package wordlist

import (
	"strings"
	"unicode/utf8"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "en":
		return filterEnglishASCII
	default:
		return func(string) bool { return true }
	}
}

// MaxLength keeps words of at most n characters. n <= 0 keeps everything.
func MaxLength(n int) FilterFunc {
	return func(word string) bool {
		return n <= 0 || utf8.RuneCountInString(word) <= n
	}
}

// All keeps words accepted by every filter.
func All(filters ...FilterFunc) FilterFunc {
	return func(word string) bool {
		for _, f := range filters {
			if !f(word) {
				return false
			}
		}
		return true
	}
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
