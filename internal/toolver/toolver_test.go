package toolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"5.2", "5.2", 0},
		{"5.2d", "5.2d", 0},
		// Numeric segments order numerically, not lexicographically:
		// the shell original sorted "5.10" below "5.2".
		{"5.10", "5.2", 1},
		{"5.2", "5.10", -1},
		// Letter suffixes order after the bare segment.
		{"5.2", "5.2d", -1},
		{"5.2f", "5.2d", 1},
		{"5.2d", "5.2f", -1},
		// Mixed lengths.
		{"5", "5.0", 0},
		{"5.2", "5.2.1", -1},
		{"4.3t", "5.0", -1},
		{"5.0e", "4.3t", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Compare(tt.a, tt.b), "Compare(%q, %q)", tt.a, tt.b)
	}
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast("5.2f", "5.2d"))
	assert.True(t, AtLeast("5.2d", "5.2d"))
	assert.False(t, AtLeast("5.1", "5.2d"))
	assert.True(t, AtLeast("5.10", "5.2d"))
}

func TestParseSnpEffBanner(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{"SnpEff\t5.2f\t2024-01-10", "5.2f"},
		{"snpEff version SnpEff 5.1d (build 2022-04-19)", "5.1d"},
		{"no version here", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSnpEffBanner(tt.out), "banner %q", tt.out)
	}
}
