package pakbmp

import (
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// Catalogue records every converted bitmap, keyed by the SHA1 of the source
// image and palette, along with the paths it was converted from.
type Catalogue struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewCatalogue(file string) (*Catalogue, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Scan workers write concurrently, serialise them on one connection
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS bitmap (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, bitmap_id INTEGER NOT NULL, FOREIGN KEY(bitmap_id) REFERENCES bitmap(id))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Catalogue{
		db:  db,
		enc: enc,
		dec: dec,
	}, nil
}

func (c *Catalogue) Close() error {
	c.dec.Close()
	if err := c.enc.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}

func (c *Catalogue) addBitmap(sha1 string, width, height int, bitmap []byte) (int64, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM bitmap WHERE sha1 = ?", sha1).Scan(&id); err {
	case sql.ErrNoRows:
		// Another worker may have inserted the same bitmap in the meantime
		if _, err := c.db.Exec("INSERT OR IGNORE INTO bitmap (sha1, width, height, data) VALUES (?, ?, ?, ?)", sha1, width, height, c.enc.EncodeAll(bitmap, nil)); err != nil {
			return 0, err
		}
		if err := c.db.QueryRow("SELECT id FROM bitmap WHERE sha1 = ?", sha1).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Add records that path was converted to bitmap. The bitmap is stored once
// per SHA1 no matter how many paths share it.
func (c *Catalogue) Add(path, sha1 string, width, height int, bitmap []byte) error {
	id, err := c.addBitmap(sha1, width, height, bitmap)
	if err != nil {
		return err
	}

	if _, err := c.db.Exec("INSERT OR REPLACE INTO source (path, bitmap_id) VALUES (?, ?)", path, id); err != nil {
		return err
	}
	return nil
}

// FindBySHA1 returns the bitmap recorded for sha1, or nil if there isn't
// one.
func (c *Catalogue) FindBySHA1(sha1 string) ([]byte, error) {
	var data []byte
	switch err := c.db.QueryRow("SELECT data FROM bitmap WHERE sha1 = ?", sha1).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return c.dec.DecodeAll(data, nil)
	default:
		return nil, err
	}
}

// Paths returns the sorted paths that were converted to the bitmap recorded
// for sha1.
func (c *Catalogue) Paths(sha1 string) ([]string, error) {
	rows, err := c.db.Query("SELECT s.path FROM source AS s JOIN bitmap AS b ON s.bitmap_id = b.id WHERE b.sha1 = ? ORDER BY s.path", sha1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}
