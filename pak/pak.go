/*
Package pak implements a decoder and encoder for the raw image and palette
file pair used by Electronic Arts titles of the early 1990s.

An image is exactly 320 by 200 pixels stored as 64000 bytes, one palette
index per pixel, row-major from the top-left corner with no header. The
palette lives in a separate file of exactly 768 bytes holding 256 red, green
and blue triples.
*/
package pak

import "errors"

const (
	// Width is the fixed width of an image.
	Width = 320
	// Height is the fixed height of an image.
	Height = 200
	// NumColors is the number of palette entries.
	NumColors = 256
	// ImageSize is the size in bytes of an image file.
	ImageSize = Width * Height
	// PaletteSize is the size in bytes of a palette file.
	PaletteSize = NumColors * 3
)

var (
	// ErrImageSize is returned when the image isn't 320 by 200 pixels.
	ErrImageSize = errors.New("pak: invalid image size")
	// ErrPaletteSize is returned when the palette isn't 768 bytes.
	ErrPaletteSize = errors.New("pak: invalid palette size")
	// ErrNotEnough is returned when a stream ends early.
	ErrNotEnough = errors.New("pak: not enough data")
	// ErrTooMuch is returned when a stream has trailing data.
	ErrTooMuch = errors.New("pak: too much data")
)

// CheckSizes validates the sizes of an image and palette file before any
// attempt is made to read them.
func CheckSizes(imageSize, paletteSize int64) error {
	if imageSize != ImageSize {
		return ErrImageSize
	}
	if paletteSize != PaletteSize {
		return ErrPaletteSize
	}
	return nil
}
