/*
Package loader implements image loading from the local filesystem.
*/
package loader

import (
	"context"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
)

// File loads images relative to Dir. Absolute paths are used as is.
type File struct {
	Dir string
}

// Load decodes the image at uri.
func (l File) Load(ctx context.Context, uri string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file := filepath.FromSlash(uri)
	if !filepath.IsAbs(file) {
		file = filepath.Join(l.Dir, file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return m, nil
}
