package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeLayouts(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-10-10T10:10:10Z", want},
		{"2024-10-10T13:10:10+03:00", want},
		{"2024-10-10T10:10:10", want},
		{"2024-10-10 10:10:10", want},
		{"2024-10-10T10:10:10.250000", want.Add(250 * time.Millisecond)},
		{strconv.FormatInt(want.Unix(), 10), want},
	}
	for _, tt := range tests {
		got, ok := ParseTime(tt.in)
		require.True(t, ok, tt.in)
		assert.True(t, got.Equal(tt.want), "%s -> %v", tt.in, got)
		assert.Equal(t, time.UTC, got.Location(), tt.in)
	}
}

func TestParseTimeRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "yesterday", "-5"} {
		_, ok := ParseTime(in)
		assert.False(t, ok, in)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	assert.True(t, ParseTimeDefault("", def).Equal(def))
	assert.True(t, ParseTimeDefault("nope", def).Equal(def))
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "never", Age(now, time.Time{}))
	assert.Equal(t, "5s ago", Age(now, now.Add(-5*time.Second)))
	assert.Equal(t, "2m ago", Age(now, now.Add(-2*time.Minute)))
	assert.Equal(t, "3h ago", Age(now, now.Add(-3*time.Hour)))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"EURUSD", "GC=F"}, SplitList(" EURUSD, GC=F ,EURUSD,,"))
	assert.Nil(t, SplitList(""))
	assert.Equal(t, "abc…", Truncate("abcdef", 4))
	assert.Equal(t, "abc", Truncate("abc", 4))
}
