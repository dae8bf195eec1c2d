package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0.5), Clamp(float32(0.1), 0.5, 1.5))
	assert.Equal(t, float32(1.5), Clamp(float32(9), 0.5, 1.5))
	assert.Equal(t, 3, Clamp(3, 1, 5))
}

func TestHexColor(t *testing.T) {
	white := HexColor(0xffffff)
	assert.InDelta(t, 1, white[0], 1e-6)

	grey := HexColor(0x555555)
	assert.InDelta(t, 0.0908, grey[0], 1e-3)
	assert.Equal(t, grey[0], grey[2])

	assert.Equal(t, [3]float32{0, 0, 0}, HexColor(0x000000))
}

func TestParseHexColor(t *testing.T) {
	for _, s := range []string{"#555555", "555555", "0x555555", " #555555 "} {
		v, err := ParseHexColor(s)
		require.NoError(t, err, s)
		assert.Equal(t, uint32(0x555555), v, s)
	}

	_, err := ParseHexColor("#fff")
	assert.Error(t, err)
	_, err = ParseHexColor("#gggggg")
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	code, err := ParseKey("1")
	require.NoError(t, err)
	assert.Equal(t, uint32(Key1), code)

	code, err = ParseKey("r")
	require.NoError(t, err)
	assert.Equal(t, uint32(KeyR), code)
	assert.Equal(t, "R", KeyName(code))

	_, err = ParseKey("F13")
	assert.Error(t, err)
}

func TestSRGBRoundTrip(t *testing.T) {
	for _, c := range []float32{0, 0.002, 0.2, 0.5, 1} {
		assert.InDelta(t, c, LinearToSRGB(SRGBToLinear(c)), 1e-5)
	}
	assert.InDelta(t, 0.5, LinearToSRGB(0.214041), 1e-4)
}
