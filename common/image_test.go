package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPNG(t *testing.T, w, h int) ([]byte, []byte) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 60), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes(), img.Pix
}

func TestDecodeImageBottomUpByDefault(t *testing.T) {
	data, pix := encodeTestPNG(t, 3, 2)

	staging, err := DecodeImage(data)
	require.NoError(t, err)

	assert.Equal(t, uint32(3), staging.Width)
	assert.Equal(t, uint32(2), staging.Height)
	stride := 3 * 4
	assert.Equal(t, pix[stride:], staging.Pixels[:stride], "first output row is the bottom image row")
	assert.Equal(t, pix[:stride], staging.Pixels[stride:])
}

func TestDecodeImageTopDown(t *testing.T) {
	data, pix := encodeTestPNG(t, 4, 5)

	staging, err := DecodeImage(data, WithTopDownRows())
	require.NoError(t, err)

	assert.Equal(t, uint32(4), staging.Width)
	assert.Equal(t, uint32(5), staging.Height)
	assert.Equal(t, pix, staging.Pixels)
}

func TestDecodeImageRejectsInvalidData(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("definitely not a png"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeImage(data)
			require.Error(t, err)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "png", de.Format)
		})
	}
}
