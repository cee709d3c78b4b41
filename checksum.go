package pakbmp

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// checksumFiles returns the SHA1 of the concatenated contents of files.
func checksumFiles(files ...string) (string, error) {
	h := sha1.New()
	for _, file := range files {
		if err := hashFile(h, file); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%X", h.Sum(nil)), nil
}

func hashFile(w io.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
