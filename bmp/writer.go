package bmp

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) write(b []byte) error {
	n, err := e.w.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}

func (e *encoder) encode(m *image.Paletted) error {
	width, height := m.Rect.Dx(), m.Rect.Dy()
	stride := Stride(width)
	imageSize := stride * height

	h := header{
		pixelOffset:     headerLen + paletteLen,
		infoSize:        infoHeaderLen,
		width:           int32(width),
		height:          int32(height),
		planes:          1,
		bitsPerPixel:    bitsPerPixel,
		imageSize:       uint32(imageSize),
		xPixelsPerMetre: pixelsPerMetre,
		yPixelsPerMetre: pixelsPerMetre,
		numColors:       NumColors,
	}
	h.fileSize = h.pixelOffset + h.imageSize

	var hdr [headerLen]byte
	copy(hdr[:], signature)
	h.marshal(hdr[len(signature):])
	if err := e.write(hdr[:]); err != nil {
		return err
	}

	// Always a full palette, anything missing is black
	var p [paletteLen]byte
	for i, c := range m.Palette {
		r, g, b, _ := c.RGBA()
		p[i*paletteEntryLen+0] = byte(b >> 8)
		p[i*paletteEntryLen+1] = byte(g >> 8)
		p[i*paletteEntryLen+2] = byte(r >> 8)
	}
	if err := e.write(p[:]); err != nil {
		return err
	}

	row := make([]byte, stride)
	for i := 0; i < height; i++ {
		y := storedRow(i, height, false)
		n := copy(row, m.Pix[y*m.Stride:y*m.Stride+width])
		for j := n; j < stride; j++ {
			row[j] = 0
		}
		if err := e.write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes the Image m to w in 8-bit indexed BMP format. Images that
// aren't already paletted with at most 256 colors are quantized first.
func Encode(w io.Writer, m image.Image) error {
	if m == nil {
		return ErrInvalidArgument
	}

	b := m.Bounds()
	if b.Empty() {
		return ErrInvalidArgument
	}
	if err := checkSize(b.Dx(), b.Dy()); err != nil {
		return err
	}

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= NumColors {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}

	if pm == nil || len(pm.Palette) > NumColors {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, NumColors), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	// Adjust image so that top-left corner is at (0, 0)
	if pm.Rect.Min != (image.Point{}) {
		dup := *pm
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		pm = &dup
	}

	e := encoder{w: w}

	return e.encode(pm)
}
