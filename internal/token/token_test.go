package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Apple", "apple"},
		{"strips punctuation", "iPhone-13!", "iphone13"},
		{"trims edges", "  hello  ", "hello"},
		{"keeps internal whitespace", "apple  iphone", "apple  iphone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalise(tc.in))
		})
	}
}

func TestTokenise(t *testing.T) {
	assert.Equal(t, []string{"apple", "iphone"}, Tokenise("Apple iPhone"))
	assert.Nil(t, Tokenise("   "))
	assert.Nil(t, Tokenise(""))
}

func TestTokeniseIdempotent(t *testing.T) {
	text := "Apple iPhone 13 Pro Max"
	first := Tokenise(text)
	second := Tokenise(Normalise(text))
	assert.Equal(t, first, second)
}

func TestUniqueTokens(t *testing.T) {
	got := UniqueTokens("apple apple iphone Apple")
	assert.Equal(t, []string{"apple", "iphone"}, got)
}

func TestTrigrams(t *testing.T) {
	// "$$apple$" has 8 runes -> 6 windows, matching spec's S6 example.
	got := Trigrams("apple")
	assert.Len(t, got, 6)
	assert.Contains(t, got, "$$a")
	assert.Contains(t, got, "$ap")
	assert.Contains(t, got, "ple")
	assert.Contains(t, got, "le$")
}

func TestTrigramsEmpty(t *testing.T) {
	assert.Empty(t, Trigrams(""))
}

func TestTrigramCountLaw(t *testing.T) {
	assert.Equal(t, 6, TrigramCount("apple"))
	assert.Equal(t, 2, TrigramCount("a"))
	assert.Equal(t, 0, TrigramCount(""))
	assert.Equal(t, len(Trigrams("apple")), TrigramCount("apple"))
}
