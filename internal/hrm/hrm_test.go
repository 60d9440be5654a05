package hrm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeartRateMeasurementUint8(t *testing.T) {
	bpm, err := parseHeartRateMeasurement([]byte{0x00, 72})
	require.NoError(t, err)
	assert.Equal(t, 72, bpm)
}

func TestParseHeartRateMeasurementUint16(t *testing.T) {
	// 0x0172 = 370, a value only expressible in the 16 bit format.
	bpm, err := parseHeartRateMeasurement([]byte{0x01, 0x72, 0x01})
	require.NoError(t, err)
	assert.Equal(t, 370, bpm)
}

func TestParseHeartRateMeasurementIgnoresOtherFlags(t *testing.T) {
	// Energy expended and RR interval flags set, value still uint8.
	bpm, err := parseHeartRateMeasurement([]byte{0x18, 65, 0x10, 0x27})
	require.NoError(t, err)
	assert.Equal(t, 65, bpm)
}

func TestParseHeartRateMeasurementShortBuffers(t *testing.T) {
	_, err := parseHeartRateMeasurement(nil)
	assert.Error(t, err)

	_, err = parseHeartRateMeasurement([]byte{0x00})
	assert.Error(t, err)

	// 16 bit flag with only one value byte.
	_, err = parseHeartRateMeasurement([]byte{0x01, 72})
	assert.Error(t, err)
}
