package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and drops punctuation",
			text: "Cats ARE great, pets!",
			want: []string{"cats", "great", "pets"},
		},
		{
			name: "strips numbers and symbols",
			text: "version 2.0 costs $40 (approx)",
			want: []string{"version", "costs", "approx"},
		},
		{
			name: "removes stop words",
			text: "the quick brown fox is over the lazy dog",
			want: []string{"quick", "brown", "fox", "lazy", "dog"},
		},
		{
			name: "collapses mixed whitespace",
			text: "hello\t\nworld  \r\n again",
			want: []string{"hello", "world"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "only stop words",
			text: "the and of is",
			want: nil,
		},
		{
			name: "only symbols",
			text: "123 !@# 456",
			want: nil,
		},
		{
			name: "apostrophes merge into single token",
			text: "don't panic",
			want: []string{"panic"},
		},
		{
			name: "contraction forms are stop words",
			text: "you're sure it's won't working",
			want: []string{"sure", "working"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.text))
		})
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	text := "The SAME input; always yields the same 42 tokens."
	first := Normalize(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Normalize(text))
	}
}
