/*
Package bmp implements a decoder and encoder for 8-bit indexed Windows
bitmaps.

Only the uncompressed, single plane, 8 bits per pixel variant with a 40 byte
BITMAPINFOHEADER is supported. The file is written as a 14 byte file header,
the 40 byte info header, a palette of up to 256 entries of four bytes each
(blue, green, red and a reserved zero byte) and finally the pixel rows. Rows
are padded with zero bytes to a multiple of four bytes and are stored
bottom-to-top unless the height is negative.
*/
package bmp

import (
	"encoding/binary"
	"errors"
)

const (
	// NumColors is the number of palette entries of a decoded image.
	NumColors = 256

	// MaxDimension is the largest accepted width or height.
	MaxDimension = 0xffff

	signature       = "BM"
	fileHeaderLen   = 14
	infoHeaderLen   = 40
	headerLen       = fileHeaderLen + infoHeaderLen
	paletteEntryLen = 4
	paletteLen      = NumColors * paletteEntryLen
	bitsPerPixel    = 8
	pixelsPerMetre  = 3780 // 96 DPI
	maxPixels       = 1 << 26
)

var (
	// ErrInvalidArgument is returned when there is nothing to encode.
	ErrInvalidArgument = errors.New("bmp: invalid argument")
	// ErrFormat is returned when the signature is missing or wrong.
	ErrFormat = errors.New("bmp: not a BMP file")
	// ErrHeader is returned when a required header field has an
	// impossible value.
	ErrHeader = errors.New("bmp: invalid header")
	// ErrUnsupported is returned for valid bitmaps using a bit depth or
	// compression other than 8 bits uncompressed.
	ErrUnsupported = errors.New("bmp: unsupported format")
	// ErrTooLarge is returned when the dimensions exceed the limits.
	ErrTooLarge = errors.New("bmp: image is too large")
)

// header is everything following the two byte signature up to the palette.
type header struct {
	fileSize        uint32
	reserved        uint32
	pixelOffset     uint32
	infoSize        uint32
	width           int32
	height          int32
	planes          uint16
	bitsPerPixel    uint16
	compression     uint32
	imageSize       uint32
	xPixelsPerMetre int32
	yPixelsPerMetre int32
	numColors       uint32
	importantColors uint32
}

// Field offsets relative to the end of the signature.
const (
	offFileSize        = 0
	offReserved        = 4
	offPixelOffset     = 8
	offInfoSize        = 12
	offWidth           = 16
	offHeight          = 20
	offPlanes          = 24
	offBitsPerPixel    = 26
	offCompression     = 28
	offImageSize       = 32
	offXPixelsPerMetre = 36
	offYPixelsPerMetre = 40
	offNumColors       = 44
	offImportantColors = 48
	headerBodyLen      = 52
)

func (h *header) unmarshal(b []byte) {
	le := binary.LittleEndian
	h.fileSize = le.Uint32(b[offFileSize:])
	h.reserved = le.Uint32(b[offReserved:])
	h.pixelOffset = le.Uint32(b[offPixelOffset:])
	h.infoSize = le.Uint32(b[offInfoSize:])
	h.width = int32(le.Uint32(b[offWidth:]))
	h.height = int32(le.Uint32(b[offHeight:]))
	h.planes = le.Uint16(b[offPlanes:])
	h.bitsPerPixel = le.Uint16(b[offBitsPerPixel:])
	h.compression = le.Uint32(b[offCompression:])
	h.imageSize = le.Uint32(b[offImageSize:])
	h.xPixelsPerMetre = int32(le.Uint32(b[offXPixelsPerMetre:]))
	h.yPixelsPerMetre = int32(le.Uint32(b[offYPixelsPerMetre:]))
	h.numColors = le.Uint32(b[offNumColors:])
	h.importantColors = le.Uint32(b[offImportantColors:])
}

func (h *header) marshal(b []byte) {
	le := binary.LittleEndian
	le.PutUint32(b[offFileSize:], h.fileSize)
	le.PutUint32(b[offReserved:], h.reserved)
	le.PutUint32(b[offPixelOffset:], h.pixelOffset)
	le.PutUint32(b[offInfoSize:], h.infoSize)
	le.PutUint32(b[offWidth:], uint32(h.width))
	le.PutUint32(b[offHeight:], uint32(h.height))
	le.PutUint16(b[offPlanes:], h.planes)
	le.PutUint16(b[offBitsPerPixel:], h.bitsPerPixel)
	le.PutUint32(b[offCompression:], h.compression)
	le.PutUint32(b[offImageSize:], h.imageSize)
	le.PutUint32(b[offXPixelsPerMetre:], uint32(h.xPixelsPerMetre))
	le.PutUint32(b[offYPixelsPerMetre:], uint32(h.yPixelsPerMetre))
	le.PutUint32(b[offNumColors:], h.numColors)
	le.PutUint32(b[offImportantColors:], h.importantColors)
}

// Stride returns the number of bytes used to store one row of an 8-bit
// image of the given width, rounded up to a multiple of four.
func Stride(width int) int {
	return (width + 3) &^ 3
}

// storedRow maps image row y, where row 0 is the top of the image, to its
// position in the stored row sequence. The mapping is its own inverse.
func storedRow(y, height int, topDown bool) int {
	if topDown {
		return y
	}
	return height - 1 - y
}

func checkSize(width, height int) error {
	if width > MaxDimension || height > MaxDimension || width*height > maxPixels {
		return ErrTooLarge
	}
	return nil
}
