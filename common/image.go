package common

import (
	"bytes"
	"image"
	"image/png"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the RGBA8 pixel data, 4 bytes per pixel, rows packed without padding.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to repeat addressing and linear filtering.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// MaxAnisotropy is the maximum anisotropic filtering level.
	MaxAnisotropy uint16
}

// decodeConfig controls how DecodeImage lays out its output rows.
type decodeConfig struct {
	topDown bool
}

// DecodeOption is a functional option for DecodeImage.
type DecodeOption func(*decodeConfig)

// WithTopDownRows keeps the source row order (first row of Pixels is the top image row). With it,
// texture coordinate (0, 0) samples the top-left pixel instead of the bottom-left one. The engine
// decodes without it.
func WithTopDownRows() DecodeOption {
	return func(c *decodeConfig) {
		c.topDown = true
	}
}

// DecodeImage decodes an encoded PNG into RGBA staging data ready for texture upload.
// By default rows are reversed so the first row of Pixels is the bottom image row, which is the
// layout expected by bottom-left origin texture APIs.
// Reference: https://pkg.go.dev/image/png
//
// Parameters:
//   - data: the encoded PNG bytes
//   - opts: optional layout overrides
//
// Returns:
//   - TextureStagingData: decoded RGBA pixels and dimensions
//   - error: a *DecodeError if data is not a valid PNG
func DecodeImage(data []byte, opts ...DecodeOption) (TextureStagingData, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(data) == 0 {
		return TextureStagingData{}, &DecodeError{Format: "png", Err: errEmptyImage}
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return TextureStagingData{}, &DecodeError{Format: "png", Err: err}
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pixels := rgba.Pix
	if !cfg.topDown {
		pixels = flipRows(rgba.Pix, width*4, height)
	}

	return TextureStagingData{
		Pixels: pixels,
		Width:  uint32(width),
		Height: uint32(height),
	}, nil
}

// flipRows returns a copy of pix with its rows in reverse order.
func flipRows(pix []byte, stride, rows int) []byte {
	out := make([]byte, len(pix))
	for y := 0; y < rows; y++ {
		src := pix[y*stride : (y+1)*stride]
		copy(out[(rows-1-y)*stride:], src)
	}
	return out
}
