package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 67, ClampScore(67))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(130))
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 82, RoundScore(81.75))
	assert.Equal(t, 81, RoundScore(81.25))
	assert.Equal(t, 50, RoundScore(49.5))
	assert.Equal(t, 0, RoundScore(0))
}

func TestRatioScore(t *testing.T) {
	tests := []struct {
		passed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatioScore(tt.passed, tt.total), "passed=%d total=%d", tt.passed, tt.total)
	}
}
