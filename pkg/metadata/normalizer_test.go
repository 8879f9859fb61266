package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIssueNumber(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"0017", "17"},
		{"17", "17"},
		{"000", "0"},
		{"0", "0"},
		{"", ""},
		{"007a", "7a"},
		{"1/2", "1/2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeIssueNumber(tt.raw), "raw=%q", tt.raw)
	}
}

func TestParseCoverDate(t *testing.T) {
	parsed, ok := ParseCoverDate("1985-03-01", "yyyy-MM-dd")
	require.True(t, ok)
	assert.Equal(t, time.Date(1985, time.March, 1, 0, 0, 0, 0, time.UTC), parsed)

	parsed, ok = ParseCoverDate("Mar 1985", "MMM yyyy")
	require.True(t, ok)
	assert.Equal(t, 1985, parsed.Year())
	assert.Equal(t, time.March, parsed.Month())

	parsed, ok = ParseCoverDate("03/01/85", "MM/dd/yy")
	require.True(t, ok)
	assert.Equal(t, 1985, parsed.Year())
}

func TestParseCoverDateMalformed(t *testing.T) {
	_, ok := ParseCoverDate("not a date", "yyyy-MM-dd")
	assert.False(t, ok)

	_, ok = ParseCoverDate("1985-13-45", "yyyy-MM-dd")
	assert.False(t, ok)

	_, ok = ParseCoverDate("", "yyyy-MM-dd")
	assert.False(t, ok)

	_, ok = ParseCoverDate("1985-03-01", "")
	assert.False(t, ok)
}
