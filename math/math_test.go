package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrunc(t *testing.T) {
	assert.Equal(t, 2, Trunc(2.5))
	assert.Equal(t, 2, Trunc(2.9))
	assert.Equal(t, -2, Trunc(-2.9))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, ClampInt(-5, 0, 9))
	assert.Equal(t, 9, ClampInt(42, 0, 9))
	assert.Equal(t, 4, ClampInt(4, 0, 9))
}

func TestMinMaxInt(t *testing.T) {
	assert.Equal(t, -3, MinInt(4, -3, 7))
	assert.Equal(t, 7, MaxInt(4, -3, 7))
	assert.Equal(t, -1, MaxInt(-5, -1))
	assert.Equal(t, MaxIntVal, MinInt())
}
