package bmp

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	header  header
	width   int
	height  int
	topDown bool

	image   *image.Paletted
	palette color.Palette

	tmp [headerBodyLen]byte
}

func (d *decoder) readSignature() error {
	if err := readFull(d.r, d.tmp[:len(signature)]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return ErrFormat
	}
	if string(d.tmp[:len(signature)]) != signature {
		return ErrFormat
	}
	return nil
}

func (d *decoder) readHeader() error {
	if err := readFull(d.r, d.tmp[:headerBodyLen]); err != nil {
		return err
	}
	d.header.unmarshal(d.tmp[:headerBodyLen])

	h := &d.header
	switch {
	case h.planes != 1:
		return fmt.Errorf("%w: %d planes", ErrHeader, h.planes)
	case h.infoSize != infoHeaderLen:
		return fmt.Errorf("%w: info header size %d", ErrHeader, h.infoSize)
	case h.reserved != 0:
		return fmt.Errorf("%w: reserved field %#x", ErrHeader, h.reserved)
	}

	switch {
	case h.bitsPerPixel != bitsPerPixel:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, h.bitsPerPixel)
	case h.compression != 0:
		return fmt.Errorf("%w: compression %d", ErrUnsupported, h.compression)
	}

	switch {
	case h.width <= 0:
		return fmt.Errorf("%w: width %d", ErrHeader, h.width)
	case h.height == 0:
		return fmt.Errorf("%w: height 0", ErrHeader)
	case h.numColors > NumColors:
		return fmt.Errorf("%w: %d colors", ErrHeader, h.numColors)
	}

	// A negative height means the rows are stored top-to-bottom
	d.topDown = h.height < 0
	d.width = int(h.width)
	d.height = int(h.height)
	if d.topDown {
		d.height = -d.height
	}

	return checkSize(d.width, d.height)
}

func (d *decoder) readPalette() error {
	n := int(d.header.numColors)
	if n == 0 {
		n = NumColors
	}

	b := make([]byte, n*paletteEntryLen)
	if err := readFull(d.r, b); err != nil {
		return err
	}

	// Entries the file doesn't define are left as opaque black
	d.palette = make(color.Palette, NumColors)
	for i := range d.palette {
		d.palette[i] = color.RGBA{0, 0, 0, 0xff}
	}
	for i := 0; i < n; i++ {
		e := b[i*paletteEntryLen:]
		d.palette[i] = color.RGBA{e[2], e[1], e[0], 0xff}
	}
	return nil
}

func (d *decoder) readPixels() error {
	stride := Stride(d.width)
	row := make([]byte, stride)

	d.image = image.NewPaletted(image.Rect(0, 0, d.width, d.height), d.palette)

	// Rows are read in stream order, no seeking to the pixel offset
	for i := 0; i < d.height; i++ {
		if err := readFull(d.r, row); err != nil {
			return err
		}
		y := storedRow(i, d.height, d.topDown)
		copy(d.image.Pix[y*d.image.Stride:y*d.image.Stride+d.width], row[:d.width])
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readSignature(); err != nil {
		return err
	}

	if err := d.readHeader(); err != nil {
		return err
	}

	if err := d.readPalette(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	return d.readPixels()
}

// Decode reads an 8-bit indexed BMP image from r and returns it as an
// *image.Paletted with a 256 color palette.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a BMP image without
// decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: d.palette,
		Width:      d.width,
		Height:     d.height,
	}, nil
}

func init() {
	image.RegisterFormat("bmp", "BM????\x00\x00\x00\x00", Decode, DecodeConfig)
}
