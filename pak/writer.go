package pak

import (
	"image"
	"io"
)

type encoder struct {
	img, pal io.Writer
}

func write(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}

func (e *encoder) encode(m *image.Paletted) error {
	for y := 0; y < Height; y++ {
		if err := write(e.img, m.Pix[y*m.Stride:y*m.Stride+Width]); err != nil {
			return err
		}
	}

	// Always a full palette, anything missing is black
	var tmp [PaletteSize]byte
	for i, c := range m.Palette {
		if i == NumColors {
			break
		}
		r, g, b, _ := c.RGBA()
		tmp[i*3+0] = byte(r >> 8)
		tmp[i*3+1] = byte(g >> 8)
		tmp[i*3+2] = byte(b >> 8)
	}

	return write(e.pal, tmp[:])
}

// Encode writes the pixels of m to img and its palette to pal. The image
// must be exactly 320 by 200 pixels.
func Encode(img, pal io.Writer, m *image.Paletted) error {
	if m == nil || m.Rect.Dx() != Width || m.Rect.Dy() != Height {
		return ErrImageSize
	}

	// Adjust image so that top-left corner is at (0, 0)
	if m.Rect.Min != (image.Point{}) {
		dup := *m
		dup.Rect = dup.Rect.Sub(dup.Rect.Min)
		m = &dup
	}

	e := encoder{img: img, pal: pal}

	return e.encode(m)
}
