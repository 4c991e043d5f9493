package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinatePair(t *testing.T) {
	lat, lon, err := ParseCoordinatePair("38.7122,-9.134")
	require.NoError(t, err)
	assert.Equal(t, 38.7122, lat)
	assert.Equal(t, -9.134, lon)

	lat, lon, err = ParseCoordinatePair(" 41.1579 , -8.6291 ")
	require.NoError(t, err)
	assert.Equal(t, 41.1579, lat)
	assert.Equal(t, -8.6291, lon)

	for _, bad := range []string{"", "38.7", "a,b", "38.7,", "91,0", "1,2,3"} {
		_, _, err := ParseCoordinatePair(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatCoordinatePair(t *testing.T) {
	assert.Equal(t, "38.7122,-9.134", FormatCoordinatePair(38.7122, -9.134))
	assert.Equal(t, "0,0", FormatCoordinatePair(0, 0))
}

func TestNormalizeLanguage(t *testing.T) {
	code, ok := NormalizeLanguage("EN")
	assert.True(t, ok)
	assert.Equal(t, "en", code)

	code, ok = NormalizeLanguage(" pt ")
	assert.True(t, ok)
	assert.Equal(t, "pt", code)

	_, ok = NormalizeLanguage("de")
	assert.False(t, ok)
}
