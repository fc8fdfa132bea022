package numfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatFloatDecimalRange(t *testing.T) {
	require.Equal(t, "0", FormatFloat(0))
	require.Equal(t, "999999", FormatFloat(999999))
	require.Equal(t, "-999999", FormatFloat(-999999))
}

func TestFormatFloatHexThresholds(t *testing.T) {
	require.Equal(t, "0x"+"f4240", FormatFloat(1000000))
	require.Equal(t, "-0x"+"f4240", FormatFloat(-1000000))
}

func TestFormatFloatNonInteger(t *testing.T) {
	require.Equal(t, "1.5", FormatFloat(1.5))
}

func TestFormatFloatSpecials(t *testing.T) {
	require.Equal(t, "null", FormatFloat(math.NaN()))
	require.Equal(t, "9223372036854775807", FormatFloat(math.Inf(1)))
	require.Equal(t, "-9223372036854775807", FormatFloat(math.Inf(-1)))
}

func TestParseIntRoundTrip(t *testing.T) {
	n, ok := ParseInt("0xf4240")
	require.True(t, ok)
	require.Equal(t, int64(1000000), n)

	n, ok = ParseInt("-0xf4240")
	require.True(t, ok)
	require.Equal(t, int64(-1000000), n)

	n, ok = ParseInt("42")
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	_, ok = ParseInt("not a number")
	require.False(t, ok)
}

func TestParseFloat(t *testing.T) {
	f, ok := ParseFloat("1.5")
	require.True(t, ok)
	require.InDelta(t, 1.5, f, 1e-9)

	f, ok = ParseFloat("42")
	require.True(t, ok)
	require.Equal(t, float64(42), f)
}
