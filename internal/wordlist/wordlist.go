// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/*.txt
var bundled embed.FS

var (
	// ErrEmptyDictionary is returned when a source yields no words.
	ErrEmptyDictionary = errors.New("word list is empty")
	// ErrIndexOutOfRange is returned by WordAt for an invalid index.
	ErrIndexOutOfRange = errors.New("word index out of range")
)

// Dictionary is an immutable list of words in source order.
type Dictionary struct {
	words []string
}

// New builds a dictionary from words, dropping empty entries.
func New(words []string) (*Dictionary, error) {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return nil, ErrEmptyDictionary
	}
	return &Dictionary{words: kept}, nil
}

// Size returns the number of loaded words.
func (d *Dictionary) Size() int {
	return len(d.words)
}

// WordAt returns the word at index.
func (d *Dictionary) WordAt(index int) (string, error) {
	if index < 0 || index >= len(d.words) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(d.words))
	}
	return d.words[index], nil
}

// Words returns a copy of all words.
func (d *Dictionary) Words() []string {
	out := make([]string, len(d.words))
	copy(out, d.words)
	return out
}

// Filter returns a new dictionary with the words keep accepts.
func (d *Dictionary) Filter(keep FilterFunc) (*Dictionary, error) {
	var kept []string
	for _, w := range d.words {
		if keep(w) {
			kept = append(kept, w)
		}
	}
	return New(kept)
}

// Load reads one word per line. CRLF and CR line endings are accepted.
func Load(r io.Reader) (*Dictionary, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, line := range strings.Split(scanner.Text(), "\r") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			words = append(words, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(words)
}

// LoadFile reads one word per line from the provided file path.
func LoadFile(path string) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return Load(file)
}

// Bundled loads the word list shipped with the binary for lang.
func Bundled(lang string) (*Dictionary, error) {
	file, err := bundled.Open("data/" + strings.ToLower(lang) + ".txt")
	if err != nil {
		return nil, fmt.Errorf("no bundled word list for %q: %w", lang, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return Load(file)
}
