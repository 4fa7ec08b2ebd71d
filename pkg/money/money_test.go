package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(2000), ToCents(decimal.RequireFromString("20.00")))
	assert.Equal(t, int64(1999), ToCents(decimal.RequireFromString("19.99")))
	assert.Equal(t, int64(1), ToCents(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(-150), ToCents(decimal.RequireFromString("-1.50")))
}

func TestMaxAmount(t *testing.T) {
	assert.Equal(t, "10000000.00", MaxAmount.StringFixed(2))
	assert.Equal(t, MaxCents, ToCents(MaxAmount))
	assert.True(t, decimal.RequireFromString("10000000.01").GreaterThan(MaxAmount))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "40.00", Format(4000))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "123.40", Format(12340))
	assert.Equal(t, 12.5, Float(1250))
}

func TestWithinEpsilon(t *testing.T) {
	assert.True(t, WithinEpsilon(100, 101))
	assert.True(t, WithinEpsilon(101, 100))
	assert.False(t, WithinEpsilon(100, 102))
}
