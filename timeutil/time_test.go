package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMSToSecondsParsesWholeAndFractional(t *testing.T) {
	sec, err := HMSToSeconds("01:02:03")
	require.NoError(t, err)
	assert.Equal(t, 3723.0, sec)

	sec, err = HMSToSeconds("00:00:01.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, sec)

	sec, err = HMSToSeconds("00:00:00.250")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, sec, 1e-9)
}

func TestHMSToSecondsRejectsMalformedInput(t *testing.T) {
	for _, bad := range []string{"1:02:03", "01:02", "not-a-time", "01:02:03.abc"} {
		_, err := HMSToSeconds(bad)
		assert.Error(t, err, bad)
	}
}

func TestSecondsToHMSRoundTripsAndClampsNegative(t *testing.T) {
	assert.Equal(t, "01:02:03.000", SecondsToHMS(3723))
	assert.Equal(t, "00:00:01.500", SecondsToHMS(1.5))
	assert.Equal(t, "00:00:00.000", SecondsToHMS(-5))
}

func TestParseTrackSplitsTypeAndNumber(t *testing.T) {
	typ, num, err := ParseTrack("V1")
	require.NoError(t, err)
	assert.Equal(t, "video", typ)
	assert.Equal(t, 1, num)

	typ, num, err = ParseTrack("a12")
	require.NoError(t, err)
	assert.Equal(t, "audio", typ)
	assert.Equal(t, 12, num)
}

func TestParseTrackRejectsUnknownPrefix(t *testing.T) {
	_, _, err := ParseTrack("X1")
	assert.Error(t, err)
}

func TestParseRationalGuardsZeroDenominator(t *testing.T) {
	assert.Equal(t, 30.0, parseRational("30/1"))
	assert.Equal(t, 0.0, parseRational("30/0"))
	assert.Equal(t, 0.0, parseRational("nonsense"))
}
