package pakbmp

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config controls the file extensions used to find and name sibling files
// and the number of workers used when scanning.
type Config struct {
	ImageExt   string `toml:"image_ext"`
	PaletteExt string `toml:"palette_ext"`
	BitmapExt  string `toml:"bitmap_ext"`
	Workers    int    `toml:"workers"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		ImageExt:   ".PAK",
		PaletteExt: ".PAL",
		BitmapExt:  ".BMP",
		Workers:    4,
	}
}

// LoadConfig reads a TOML configuration file. Any keys not present keep
// their default value.
func LoadConfig(file string) (Config, error) {
	c := DefaultConfig()
	if _, err := toml.DecodeFile(file, &c); err != nil {
		return Config{}, err
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch {
	case c.ImageExt == "" || c.PaletteExt == "" || c.BitmapExt == "":
		return errors.New("config: extensions must not be empty")
	case strings.EqualFold(c.ImageExt, c.PaletteExt) ||
		strings.EqualFold(c.ImageExt, c.BitmapExt) ||
		strings.EqualFold(c.PaletteExt, c.BitmapExt):
		return errors.New("config: extensions must be distinct")
	case c.Workers < 1:
		return errors.New("config: workers must be at least 1")
	}
	return nil
}
