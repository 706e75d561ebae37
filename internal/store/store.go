// Package store resolves tile storage keys to decoded images on disk.
package store

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// exts lists the probed file extensions, most likely first.
var exts = []string{".png", ".webp", ".jpg", ".jpeg", ".bmp", ".tiff"}

// Store reads pre-rendered tile images from a directory. Every tile is
// addressed by its storage key (quadrant path, or "root" for depth 0).
// Stateless and safe for concurrent use.
type Store struct {
	dir string
}

// New returns a Store over the given tile directory.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Tile loads and decodes the image for the given storage key, probing the
// supported extensions. A missing tile returns an error wrapping
// fs.ErrNotExist; the renderer treats that as a recoverable gap.
func (s *Store) Tile(key string) (image.Image, error) {
	for _, ext := range exts {
		path := filepath.Join(s.dir, key+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		img, _, err := image.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("decode tile %s: %w", path, err)
		}
		return img, nil
	}

	return nil, fmt.Errorf("tile %q in %s: %w", key, s.dir, fs.ErrNotExist)
}
