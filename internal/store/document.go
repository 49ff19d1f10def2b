package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/speedtype/internal/model"
)

var errSchema = errors.New("unexpected document schema")

type document struct {
	Version       string          `json:"version"`
	CharacterData json.RawMessage `json:"characterData"`
	ExerciseData  json.RawMessage `json:"exerciseData"`
}

type charEntry struct {
	H int `json:"h"`
	M int `json:"m"`
}

type recordEntry struct {
	T int64   `json:"t"`
	A float64 `json:"a"`
	W float64 `json:"w"`
}

var emptyArray = []byte("[]")

func encodeChar(stat model.CharacterStat) json.RawMessage {
	// Two ints always marshal.
	data, _ := json.Marshal(charEntry{H: stat.Hits, M: stat.Misses})
	return data
}

func encodeRecord(rec model.ExerciseRecord) ([]byte, error) {
	return json.Marshal(recordEntry{T: rec.UnixMilli(), A: rec.Accuracy, W: rec.WordsPerMinute})
}

// appendRaw adds one encoded element to a compact JSON array.
func appendRaw(array, elem []byte) []byte {
	if len(array) < 2 {
		array = emptyArray
	}
	body := array[:len(array)-1]
	out := make([]byte, 0, len(array)+len(elem)+1)
	out = append(out, body...)
	if len(body) > 1 {
		out = append(out, ',')
	}
	out = append(out, elem...)
	return append(out, ']')
}

type decoded struct {
	version   string
	chars     map[rune]*model.CharacterStat
	charRaw   map[string]json.RawMessage
	records   []model.ExerciseRecord
	recordRaw []byte
}

// decodeDocument parses and validates a save document.
func decodeDocument(data []byte) (*decoded, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", errSchema)
	}
	// null, {} and foreign objects decode cleanly but carry no version.
	if doc.Version == "" {
		return nil, fmt.Errorf("%w: missing version", errSchema)
	}

	out := &decoded{
		version:   doc.Version,
		chars:     make(map[rune]*model.CharacterStat),
		charRaw:   make(map[string]json.RawMessage),
		recordRaw: emptyArray,
	}

	if len(doc.CharacterData) > 0 && !isNull(doc.CharacterData) {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(doc.CharacterData, &raw); err != nil {
			return nil, fmt.Errorf("%w: characterData: %v", errSchema, err)
		}
		for key, value := range raw {
			if utf8.RuneCountInString(key) != 1 {
				return nil, fmt.Errorf("%w: character key %q", errSchema, key)
			}
			var entry charEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return nil, fmt.Errorf("%w: character %q: %v", errSchema, key, err)
			}
			if entry.H < 0 || entry.M < 0 {
				return nil, fmt.Errorf("%w: character %q has negative counts", errSchema, key)
			}
			r, _ := utf8.DecodeRuneInString(key)
			out.chars[r] = &model.CharacterStat{Hits: entry.H, Misses: entry.M}
			out.charRaw[key] = value
		}
	}

	if len(doc.ExerciseData) > 0 && !isNull(doc.ExerciseData) {
		var entries []recordEntry
		if err := json.Unmarshal(doc.ExerciseData, &entries); err != nil {
			return nil, fmt.Errorf("%w: exerciseData: %v", errSchema, err)
		}
		out.records = make([]model.ExerciseRecord, 0, len(entries))
		for i, entry := range entries {
			if entry.A < 0 || entry.A > 100 || entry.W < 0 {
				return nil, fmt.Errorf("%w: record %d out of range", errSchema, i)
			}
			out.records = append(out.records, model.ExerciseRecord{
				Timestamp:      time.UnixMilli(entry.T).UTC(),
				Accuracy:       entry.A,
				WordsPerMinute: entry.W,
			})
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, doc.ExerciseData); err != nil {
			return nil, fmt.Errorf("%w: exerciseData: %v", errSchema, err)
		}
		out.recordRaw = buf.Bytes()
	}

	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
