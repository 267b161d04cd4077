package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    Path
		params  map[string]string
		matches bool
	}{
		{
			name:    "binds wildcard segments",
			pattern: "conversations/{cid}/messages/{mid}",
			path:    Path{"conversations", "c1", "messages", "m1"},
			params:  map[string]string{"cid": "c1", "mid": "m1"},
			matches: true,
		},
		{
			name:    "literal segments must be equal",
			pattern: "conversations/{cid}/flags/archived",
			path:    Path{"conversations", "c1", "flags", "borrowingState"},
			matches: false,
		},
		{
			name:    "length mismatch",
			pattern: "books/{bid}/flags/deleted",
			path:    Path{"books", "b1", "deleted"},
			matches: false,
		},
		{
			name:    "no wildcards",
			pattern: "books/b1/flags/deleted",
			path:    Path{"books", "b1", "flags", "deleted"},
			params:  map[string]string{},
			matches: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, ok := NewPattern(tt.pattern).Match(tt.path)
			assert.Equal(t, tt.matches, ok)
			if tt.matches {
				assert.Equal(t, tt.params, params)
			}
		})
	}
}
