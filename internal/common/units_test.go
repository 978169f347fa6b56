package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"1", 100_000_000},
		{"21", 2_100_000_000},
		{"0.00000001", 1},
		{"0.24981836", 24_981_836},
		{"10000", 1_000_000_000_000},
		{"1.5", 150_000_000},
		{" 1.5 ", 150_000_000},
		// Digits beyond the 8th are truncated, never rounded up.
		{"0.000000019", 1},
		{"1.999999999", 199_999_999},
		// Largest whole-token amount that still fits in uint64 base units.
		{"184467440737", 18_446_744_073_700_000_000},
	}
	for _, c := range cases {
		got, err := ToBaseUnits(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestToBaseUnitsRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", ".", "1.2.3", "abc", "-1", "1,5"} {
		_, err := ToBaseUnits(in)
		assert.Error(t, err, in)
	}
}

func TestToBaseUnitsRejectsOverflow(t *testing.T) {
	// Whole-token inputs past the uint64 range must error instead of
	// wrapping to a tiny amount.
	for _, in := range []string{"184467440738", "18446744073709551615", "99999999999999999999"} {
		_, err := ToBaseUnits(in)
		assert.Error(t, err, in)
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "0.00000000", FromBaseUnits(0))
	assert.Equal(t, "0.00000001", FromBaseUnits(1))
	assert.Equal(t, "1.00000000", FromBaseUnits(100_000_000))
	assert.Equal(t, "9999.99999997", FromBaseUnits(999_999_999_997))
}
