package generator

import (
	"math/rand"
	"sort"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/wordlist"
)

func newTestGenerator(t *testing.T, words []string, seed int64) *Generator {
	t.Helper()
	dict, err := wordlist.New(words)
	require.NoError(t, err)
	return NewWithRand(dict, nil, rand.New(rand.NewSource(seed)))
}

func bundledGenerator(t *testing.T, seed int64) (*Generator, *wordlist.Dictionary) {
	t.Helper()
	dict, err := wordlist.Bundled("en")
	require.NoError(t, err)
	return NewWithRand(dict, nil, rand.New(rand.NewSource(seed))), dict
}

func TestGeneratePermutationOfSmallDictionary(t *testing.T) {
	words := []string{"cat", "dog", "fish", "bird"}
	for seed := int64(0); seed < 20; seed++ {
		g := newTestGenerator(t, words, seed)
		g.UseWordCount()
		require.True(t, g.SetWordCount(4))

		got, err := g.Generate()
		require.NoError(t, err)

		sorted := append([]string(nil), got...)
		sort.Strings(sorted)
		assert.Equal(t, []string{"bird", "cat", "dog", "fish"}, sorted)
	}
}

func TestGenerateWordCountWithoutReplacement(t *testing.T) {
	g, _ := bundledGenerator(t, 42)
	g.UseWordCount()
	for _, n := range []int{MinWordCount, 10, MaxWordCount} {
		require.True(t, g.SetWordCount(n))
		for i := 0; i < 50; i++ {
			got, err := g.Generate()
			require.NoError(t, err)
			require.Len(t, got, n)
			// The bundled list has no duplicate entries, so distinct
			// indices imply distinct words.
			seen := map[string]struct{}{}
			for _, w := range got {
				_, dup := seen[w]
				require.False(t, dup, "word %q drawn twice", w)
				seen[w] = struct{}{}
			}
		}
	}
}

func TestGenerateCharacterCountBudget(t *testing.T) {
	g, dict := bundledGenerator(t, 7)
	longest := 0
	for _, w := range dict.Words() {
		if n := utf8.RuneCountInString(w); n > longest {
			longest = n
		}
	}
	g.UseCharacterCount()
	for _, target := range []int{MinCharacterCount, 100, MaxCharacterCount} {
		require.True(t, g.SetCharacterCount(target))
		for i := 0; i < 50; i++ {
			got, err := g.Generate()
			require.NoError(t, err)
			total := 0
			for _, w := range got {
				total += utf8.RuneCountInString(w)
			}
			assert.GreaterOrEqual(t, total, target)
			assert.Less(t, total, target+longest)
		}
	}
}

func TestGenerateInsufficientDictionary(t *testing.T) {
	g := newTestGenerator(t, []string{"cat", "dog", "fish"}, 1)
	g.UseWordCount()
	require.True(t, g.SetWordCount(4))
	_, err := g.Generate()
	require.ErrorIs(t, err, ErrInsufficientDictionary)

	g.UseCharacterCount()
	require.True(t, g.SetCharacterCount(MinCharacterCount))
	_, err = g.Generate()
	require.ErrorIs(t, err, ErrInsufficientDictionary)
}

func TestSettersIgnoreOutOfRange(t *testing.T) {
	g := newTestGenerator(t, []string{"cat"}, 1)
	require.True(t, g.SetWordCount(10))
	assert.False(t, g.SetWordCount(MinWordCount-1))
	assert.False(t, g.SetWordCount(MaxWordCount+1))
	assert.Equal(t, 10, g.WordCount())

	require.True(t, g.SetCharacterCount(50))
	assert.False(t, g.SetCharacterCount(MinCharacterCount-1))
	assert.False(t, g.SetCharacterCount(MaxCharacterCount+1))
	assert.Equal(t, 50, g.CharacterCount())
}

func TestDefaults(t *testing.T) {
	g := newTestGenerator(t, []string{"cat"}, 1)
	assert.Equal(t, model.MethodWordCount, g.Method())
	assert.Equal(t, 18, g.WordCount())
	assert.Equal(t, 104, g.CharacterCount())
}

func TestCustomTextOverride(t *testing.T) {
	g := newTestGenerator(t, []string{"cat"}, 1)
	g.SetCustomText("  the quick\tbrown   fox\n jumps over ")
	got, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "quick", "brown", "fox", "jumps", "over"}, got)
}

func TestCustomTextTooShortFallsBack(t *testing.T) {
	g := newTestGenerator(t, []string{"cat", "dog", "fish", "bird"}, 1)
	require.True(t, g.SetWordCount(4))
	// Exactly sixteen non-space characters is not enough.
	g.SetCustomText("abcd efgh ijkl mnop")
	got, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.NotContains(t, got, "abcd")
}

func TestApplyConfig(t *testing.T) {
	g := newTestGenerator(t, []string{"cat"}, 1)
	g.Apply(model.Config{Method: model.MethodCharacterCount, WordCount: 99, CharacterCount: 64})
	assert.Equal(t, model.MethodCharacterCount, g.Method())
	assert.Equal(t, 18, g.WordCount())
	assert.Equal(t, 64, g.CharacterCount())
}
