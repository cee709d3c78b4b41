/*
Package pakbmp converts between the raw 320 by 200 image and palette file
pairs used by early Electronic Arts titles and 8-bit indexed Windows
bitmaps.
*/
package pakbmp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/pakbmp/bmp"
	"github.com/bodgit/pakbmp/pak"
	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
)

var errSameFile = errors.New("output file would overwrite input file")

type Converter struct {
	config    Config
	catalogue *Catalogue
	logger    *log.Logger
}

// New returns a Converter. The catalogue is optional; when present,
// converted bitmaps are recorded and reused.
func New(config Config, catalogue *Catalogue, logger *log.Logger) *Converter {
	return &Converter{
		config:    config,
		catalogue: catalogue,
		logger:    logger,
	}
}

// SwapExtension replaces the extension of file, if any, with ext.
func SwapExtension(file, ext string) string {
	return file[:len(file)-len(filepath.Ext(file))] + ext
}

// writeFile creates file and passes it to fn. If anything fails the file is
// removed so no partial output is left behind.
func writeFile(file string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file)
		}
	}()

	w := bufio.NewWriter(f)
	if err = fn(w); err != nil {
		return err
	}
	return w.Flush()
}

func writeBytes(file string, b []byte) error {
	return writeFile(file, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}

func fileSize(file string) (int64, error) {
	info, err := os.Stat(file)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: not a regular file", file)
	}
	return info.Size(), nil
}

func (c *Converter) checkPair(file, palette string) error {
	si, err := fileSize(file)
	if err != nil {
		return err
	}
	sp, err := fileSize(palette)
	if err != nil {
		return err
	}
	if err := pak.CheckSizes(si, sp); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

func (c *Converter) loadPair(file, palette string) (*image.Paletted, error) {
	fi, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fi.Close()

	fp, err := os.Open(palette)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	return pak.Decode(bufio.NewReader(fi), bufio.NewReader(fp))
}

// PakToBMP converts the image file and its sibling palette file to a bitmap
// alongside them, returning the name of the bitmap.
func (c *Converter) PakToBMP(file string) (string, error) {
	palette := SwapExtension(file, c.config.PaletteExt)
	out := SwapExtension(file, c.config.BitmapExt)
	if out == file || palette == file {
		return "", errSameFile
	}

	c.logger.Printf("Loading image %q with palette %q\n", file, palette)
	if err := c.checkPair(file, palette); err != nil {
		return "", err
	}

	var sum string
	if c.catalogue != nil {
		var err error
		if sum, err = checksumFiles(file, palette); err != nil {
			return "", err
		}

		b, err := c.catalogue.FindBySHA1(sum)
		if err != nil {
			return "", err
		}
		if b != nil {
			c.logger.Printf("Using catalogued bitmap for %q, with SHA1 %q\n", file, sum)
			if err := writeBytes(out, b); err != nil {
				return "", err
			}
			return out, c.catalogue.Add(file, sum, pak.Width, pak.Height, b)
		}
	}

	m, err := c.loadPair(file, palette)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}

	b := new(bytes.Buffer)
	if err := bmp.Encode(b, m); err != nil {
		return "", err
	}

	c.logger.Printf("Saving bitmap %q\n", out)
	if err := writeBytes(out, b.Bytes()); err != nil {
		return "", err
	}

	if c.catalogue != nil {
		if err := c.catalogue.Add(file, sum, pak.Width, pak.Height, b.Bytes()); err != nil {
			return "", err
		}
	}

	return out, nil
}

// BMPToPak converts the bitmap file to an image file and palette file
// alongside it, returning their names.
func (c *Converter) BMPToPak(file string) (string, string, error) {
	c.logger.Printf("Loading bitmap %q\n", file)

	f, err := os.Open(file)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	m, err := bmp.Decode(bufio.NewReader(f))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", file, err)
	}

	return c.savePair(file, m.(*image.Paletted))
}

// Import converts any supported image file to an image file and palette
// file alongside it. The image is scaled and cropped to 320 by 200 pixels
// and reduced to 256 colors as necessary.
func (c *Converter) Import(file string) (string, string, error) {
	c.logger.Printf("Importing %q\n", file)

	f, err := os.Open(file)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	m, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", file, err)
	}
	c.logger.Printf("Decoded %s image %q, %dx%d\n", format, file, m.Bounds().Dx(), m.Bounds().Dy())

	return c.savePair(file, fit(m))
}

// fit scales, crops and quantizes m to a 320 by 200 paletted image.
func fit(m image.Image) *image.Paletted {
	b := image.Rect(0, 0, pak.Width, pak.Height)

	if pm, ok := m.(*image.Paletted); ok && pm.Rect.Size() == b.Size() && len(pm.Palette) <= pak.NumColors {
		return pm
	}

	if m.Bounds().Size() != b.Size() {
		g := gift.New(gift.ResizeToFill(pak.Width, pak.Height, gift.LanczosResampling, gift.CenterAnchor))
		dst := image.NewRGBA(g.Bounds(m.Bounds()))
		g.Draw(dst, m)
		m = dst
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, pak.NumColors), m))
	draw.Draw(pm, b, m, m.Bounds().Min, draw.Src)
	return pm
}

func (c *Converter) savePair(file string, m *image.Paletted) (string, string, error) {
	out := SwapExtension(file, c.config.ImageExt)
	palette := SwapExtension(file, c.config.PaletteExt)
	if out == file || palette == file {
		return "", "", errSameFile
	}

	bi, bp := new(bytes.Buffer), new(bytes.Buffer)
	if err := pak.Encode(bi, bp, m); err != nil {
		return "", "", fmt.Errorf("%s: %w", file, err)
	}

	c.logger.Printf("Saving image %q\n", out)
	if err := writeBytes(out, bi.Bytes()); err != nil {
		return "", "", err
	}

	c.logger.Printf("Saving palette %q\n", palette)
	if err := writeBytes(palette, bp.Bytes()); err != nil {
		os.Remove(out)
		return "", "", err
	}

	return out, palette, nil
}
