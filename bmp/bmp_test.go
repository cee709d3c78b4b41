package bmp

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStride(t *testing.T) {
	for width := 1; width <= 1024; width++ {
		s := Stride(width)
		assert.GreaterOrEqual(t, s, width)
		assert.Zero(t, s%4)
		assert.Less(t, s-width, 4)
	}
	assert.Equal(t, 320, Stride(320))
	assert.Equal(t, 4, Stride(1))
	assert.Equal(t, 8, Stride(5))
}

func TestStoredRow(t *testing.T) {
	tables := []struct {
		y, height int
		topDown   bool
		want      int
	}{
		{0, 1, false, 0},
		{0, 2, false, 1},
		{1, 2, false, 0},
		{0, 200, false, 199},
		{199, 200, false, 0},
		{0, 200, true, 0},
		{199, 200, true, 199},
	}

	for _, table := range tables {
		assert.Equal(t, table.want, storedRow(table.y, table.height, table.topDown))
		assert.Equal(t, table.y, storedRow(table.want, table.height, table.topDown))
	}
}

func TestHeaderMarshal(t *testing.T) {
	h := header{
		fileSize:        1086,
		pixelOffset:     1078,
		infoSize:        infoHeaderLen,
		width:           2,
		height:          -2,
		planes:          1,
		bitsPerPixel:    bitsPerPixel,
		imageSize:       8,
		xPixelsPerMetre: pixelsPerMetre,
		yPixelsPerMetre: pixelsPerMetre,
		numColors:       NumColors,
	}

	var b [headerBodyLen]byte
	h.marshal(b[:])

	assert.Equal(t, []byte{0x3e, 0x04, 0x00, 0x00}, b[offFileSize:offFileSize+4])
	assert.Equal(t, []byte{0x36, 0x04, 0x00, 0x00}, b[offPixelOffset:offPixelOffset+4])
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, b[offHeight:offHeight+4])
	assert.Equal(t, []byte{0xc4, 0x0e, 0x00, 0x00}, b[offXPixelsPerMetre:offXPixelsPerMetre+4])
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, b[offNumColors:offNumColors+4])

	var got header
	got.unmarshal(b[:])
	assert.Equal(t, h, got)
}

func randomPaletted(r *rand.Rand, width, height int) *image.Paletted {
	p := make(color.Palette, NumColors)
	for i := range p {
		p[i] = color.RGBA{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)), 0xff}
	}
	m := image.NewPaletted(image.Rect(0, 0, width, height), p)
	r.Read(m.Pix)
	return m
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	tables := []struct {
		width, height int
	}{
		{1, 1},
		{2, 2},
		{3, 5},
		{4, 4},
		{5, 3},
		{7, 1},
		{1, 7},
		{320, 200},
		{641, 13},
	}

	for _, table := range tables {
		m := randomPaletted(r, table.width, table.height)

		b := new(bytes.Buffer)
		require.NoError(t, Encode(b, m))
		assert.Equal(t, headerLen+paletteLen+Stride(table.width)*table.height, b.Len())

		got, err := Decode(b)
		require.NoError(t, err)

		pm, ok := got.(*image.Paletted)
		require.True(t, ok)
		assert.Equal(t, m.Rect, pm.Rect)
		assert.Equal(t, m.Pix, pm.Pix)
		assert.Equal(t, m.Palette, pm.Palette)
	}
}

func TestDecodeConfig(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	m := randomPaletted(r, 13, 7)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))

	c, err := DecodeConfig(b)
	require.NoError(t, err)
	assert.Equal(t, 13, c.Width)
	assert.Equal(t, 7, c.Height)
	assert.Equal(t, m.Palette, c.ColorModel)
}

func TestImageDecode(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	m := randomPaletted(r, 9, 9)

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))

	got, format, err := image.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, m.Bounds(), got.Bounds())
}
