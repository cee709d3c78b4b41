package bmp

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawBitmap assembles a bitmap from a 2x2 image stored as disk rows
// {3, 4} then {1, 2}, with modify applied to the header first.
func rawBitmap(numColors int, modify func(*header)) []byte {
	h := header{
		infoSize:     infoHeaderLen,
		width:        2,
		height:       2,
		planes:       1,
		bitsPerPixel: bitsPerPixel,
		numColors:    uint32(numColors),
	}
	if modify != nil {
		modify(&h)
	}

	var hdr [headerLen]byte
	copy(hdr[:], signature)
	h.marshal(hdr[len(signature):])

	b := new(bytes.Buffer)
	b.Write(hdr[:])
	for i := 0; i < numColors; i++ {
		b.Write([]byte{byte(i), byte(i + 1), byte(i + 2), 0xaa})
	}
	b.Write([]byte{3, 4, 0xee, 0xee, 1, 2, 0xee, 0xee})
	return b.Bytes()
}

func TestDecodeBottomUp(t *testing.T) {
	m, err := Decode(bytes.NewReader(rawBitmap(NumColors, nil)))
	require.NoError(t, err)

	pm := m.(*image.Paletted)
	assert.Equal(t, image.Rect(0, 0, 2, 2), pm.Rect)
	assert.Equal(t, []byte{1, 2, 3, 4}, pm.Pix)
	assert.Equal(t, color.RGBA{7, 6, 5, 0xff}, pm.Palette[5])
}

func TestDecodeTopDown(t *testing.T) {
	m, err := Decode(bytes.NewReader(rawBitmap(NumColors, func(h *header) {
		h.height = -2
	})))
	require.NoError(t, err)

	pm := m.(*image.Paletted)
	assert.Equal(t, image.Rect(0, 0, 2, 2), pm.Rect)
	assert.Equal(t, []byte{3, 4, 1, 2}, pm.Pix)
}

func TestDecodeTruncatedPalette(t *testing.T) {
	m, err := Decode(bytes.NewReader(rawBitmap(16, nil)))
	require.NoError(t, err)

	pm := m.(*image.Paletted)
	require.Len(t, pm.Palette, NumColors)
	for i := 0; i < 16; i++ {
		assert.Equal(t, color.RGBA{byte(i + 2), byte(i + 1), byte(i), 0xff}, pm.Palette[i])
	}
	for i := 16; i < NumColors; i++ {
		assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, pm.Palette[i])
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, pm.Pix)
}

func TestDecodeIgnoresPixelOffset(t *testing.T) {
	m, err := Decode(bytes.NewReader(rawBitmap(NumColors, func(h *header) {
		h.pixelOffset = 0xdeadbeef
		h.fileSize = 1
	})))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, m.(*image.Paletted).Pix)
}

func TestDecodeErrors(t *testing.T) {
	valid := rawBitmap(NumColors, nil)

	tables := []struct {
		name string
		b    []byte
		err  error
	}{
		{"empty", nil, ErrFormat},
		{"one byte", []byte{'B'}, ErrFormat},
		{"wrong magic", append([]byte("MB"), valid[2:]...), ErrFormat},
		{"short header", valid[:20], io.ErrUnexpectedEOF},
		{"planes", rawBitmap(NumColors, func(h *header) { h.planes = 2 }), ErrHeader},
		{"info size", rawBitmap(NumColors, func(h *header) { h.infoSize = 108 }), ErrHeader},
		{"reserved", rawBitmap(NumColors, func(h *header) { h.reserved = 1 }), ErrHeader},
		{"4 bits", rawBitmap(NumColors, func(h *header) { h.bitsPerPixel = 4 }), ErrUnsupported},
		{"24 bits", rawBitmap(NumColors, func(h *header) { h.bitsPerPixel = 24 }), ErrUnsupported},
		{"rle8", rawBitmap(NumColors, func(h *header) { h.compression = 1 }), ErrUnsupported},
		{"zero width", rawBitmap(NumColors, func(h *header) { h.width = 0 }), ErrHeader},
		{"negative width", rawBitmap(NumColors, func(h *header) { h.width = -2 }), ErrHeader},
		{"zero height", rawBitmap(NumColors, func(h *header) { h.height = 0 }), ErrHeader},
		{"too many colors", rawBitmap(NumColors, func(h *header) { h.numColors = 257 }), ErrHeader},
		{"too wide", rawBitmap(NumColors, func(h *header) { h.width = MaxDimension + 1 }), ErrTooLarge},
		{"too many pixels", rawBitmap(NumColors, func(h *header) {
			h.width = MaxDimension
			h.height = -MaxDimension
		}), ErrTooLarge},
		{"short palette", valid[:headerLen+100], io.ErrUnexpectedEOF},
		{"short pixels", valid[:len(valid)-1], io.ErrUnexpectedEOF},
		{"no pixels", valid[:headerLen+paletteLen], io.ErrUnexpectedEOF},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			m, err := Decode(bytes.NewReader(table.b))
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, table.err), "got %v, want %v", err, table.err)
		})
	}
}

func TestDecodeConfigSkipsPixels(t *testing.T) {
	valid := rawBitmap(16, nil)

	c, err := DecodeConfig(bytes.NewReader(valid[:headerLen+16*paletteEntryLen]))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Len(t, c.ColorModel.(color.Palette), NumColors)
}
