package misc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLimit(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		n        int
		expected string
	}{
		{
			name:     "short string passes through",
			s:        "hello",
			n:        10,
			expected: "hello",
		},
		{
			name:     "exact length passes through",
			s:        strings.Repeat("y", 256),
			n:        256,
			expected: strings.Repeat("y", 256),
		},
		{
			name:     "long message truncated to 256 with ellipsis",
			s:        strings.Repeat("y", 300),
			n:        256,
			expected: strings.Repeat("y", 253) + "...",
		},
		{
			name:     "long title truncated to 64 with ellipsis",
			s:        strings.Repeat("x", 80),
			n:        64,
			expected: strings.Repeat("x", 61) + "...",
		},
		{
			name:     "negative limit",
			s:        "hello",
			n:        -1,
			expected: "",
		},
		{
			name:     "tiny limit cuts without ellipsis",
			s:        "hello",
			n:        2,
			expected: "he",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringLimit(tt.s, tt.n)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len(got), Max(tt.n, 0))
		})
	}
}
