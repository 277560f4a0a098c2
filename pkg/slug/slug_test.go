package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Historia", "historia"},
		{"accents", "Ciencia Ficción", "ciencia-ficcion"},
		{"existing hyphen", "No-Ficción", "no-ficcion"},
		{"punctuation", "Clásicos!", "clasicos"},
		{"extra whitespace", "  Science   Fiction ", "science-fiction"},
		{"underscores", "science_fiction", "science-fiction"},
		{"already a slug", "ciencia-ficcion", "ciencia-ficcion"},
		{"only symbols", "!@#$", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, Matches("Ciencia Ficción", "ciencia-ficcion"))
	assert.True(t, Matches("Latinoamericano", "LATINOAMERICANO"))
	assert.False(t, Matches("Ficción", "ciencia-ficcion"))
	assert.False(t, Matches("???", "!!!"))
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		s        string
		substr   string
		expected bool
	}{
		{"ascii", "Solaris", "SOLAR", true},
		{"accented upper", "Ficción", "FICCIÓN", true},
		{"accented lower", "ÉMILE ZOLA", "émile", true},
		{"decomposed accent", "Ficción", "FICCIO\u0301N", true},
		{"accents are significant", "Ficción", "ficcion", false},
		{"wildcards are literal", "100 Años", "1_0", false},
		{"percent is literal", "100% Love", "0% l", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ContainsFold(tt.s, tt.substr))
		})
	}
}
