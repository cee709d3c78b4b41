package pakbmp

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	tables := []struct {
		name    string
		content string
		want    Config
		err     bool
	}{
		{"empty", "", DefaultConfig(), false},
		{"partial", "workers = 8\n", Config{".PAK", ".PAL", ".BMP", 8}, false},
		{"full", "image_ext = \".CPS\"\npalette_ext = \".COL\"\nbitmap_ext = \".bmp\"\nworkers = 1\n", Config{".CPS", ".COL", ".bmp", 1}, false},
		{"zero workers", "workers = 0\n", Config{}, true},
		{"clashing", "bitmap_ext = \".pak\"\n", Config{}, true},
		{"empty ext", "palette_ext = \"\"\n", Config{}, true},
		{"invalid", "workers = \"many\"\n", Config{}, true},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			file := filepath.Join(dir, table.name+".toml")
			require.NoError(t, ioutil.WriteFile(file, []byte(table.content), 0644))

			c, err := LoadConfig(file)
			if table.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, table.want, c)
		})
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
