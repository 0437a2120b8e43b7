package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"paris", "is", "the", "capital", "of", "france"}, Words("Paris is the capital of France."))
	assert.Equal(t, []string{"it's", "1999"}, Words("It's 1999!"))
	assert.Empty(t, Words("  ...  "))
}

func TestContent_DropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"paris", "capital", "france"}, Content("Paris is the capital of France."))
}

func TestSetAndOverlap(t *testing.T) {
	a := Set("What is the capital of France?")
	b := Set("Paris is the capital of France. It is known for the Eiffel Tower.")
	assert.Equal(t, 2, Overlap(a, b))
	assert.Equal(t, 2, Overlap(b, a))
	assert.Equal(t, 0, Overlap(a, nil))
}

func TestNormalize(t *testing.T) {
	decomposed := "cafe\u0301"
	assert.Equal(t, "café", Normalize(decomposed))
	assert.Equal(t, Words("café"), Words(decomposed))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("one two\nthree"))
}

func TestHead(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"cut", "hello world", 5, "hello"},
		{"runes", "héllo wörld", 7, "héllo w"},
		{"zero limit keeps all", " abc ", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Head(tt.text, tt.n))
		})
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		text, phrase string
		want         bool
	}{
		{"This is it.", "is", true},
		{"Paris lies on the Seine.", "is", false},
		{"The tower was defined as a landmark.", "defined as", true},
		{"In conclusion, we agree.", "in conclusion", true},
		{"Inconclusive results.", "in conclusion", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsPhrase(tt.text, tt.phrase))
		})
	}
}
