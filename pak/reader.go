package pak

import (
	"image"
	"image/color"
	"io"
)

func readFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrNotEnough
		}
		return err
	}

	var tmp [1]byte
	switch _, err := io.ReadFull(r, tmp[:]); err {
	case io.EOF:
		return nil
	case nil:
		return ErrTooMuch
	default:
		return err
	}
}

type decoder struct {
	image   [ImageSize]byte
	palette [PaletteSize]byte
}

func (d *decoder) decode(img, pal io.Reader) (*image.Paletted, error) {
	if err := readFull(img, d.image[:]); err != nil {
		return nil, err
	}

	if err := readFull(pal, d.palette[:]); err != nil {
		return nil, err
	}

	p := make(color.Palette, NumColors)
	for i := range p {
		p[i] = color.RGBA{d.palette[i*3+0], d.palette[i*3+1], d.palette[i*3+2], 0xff}
	}

	m := image.NewPaletted(image.Rect(0, 0, Width, Height), p)
	copy(m.Pix, d.image[:])

	return m, nil
}

// Decode reads an image from img and its palette from pal. Both streams
// must contain exactly the expected number of bytes.
func Decode(img, pal io.Reader) (*image.Paletted, error) {
	d := new(decoder)
	return d.decode(img, pal)
}
