package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end int
	}{
		{"", 1, 0},
		{"7", 7, 7},
		{"3:9", 3, 9},
		{"12:", 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start, end, err := parseLineRange(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}

	for _, bad := range []string{"a", ":4", "2:b"} {
		_, _, err := parseLineRange(bad)
		assert.Error(t, err, bad)
	}
}
