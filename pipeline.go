package pixelrendr

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io/fs"
	"path"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScanFunc is called with the library key and encoded source of every image
// found by Scan.
type ScanFunc func(key []string, source string) error

var imageExtensions = map[string]struct{}{
	".gif":  {},
	".jpeg": {},
	".jpg":  {},
	".png":  {},
}

func (p *PixelRendr) findImages(ctx context.Context, fsys fs.FS) (<-chan string, <-chan error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- fs.WalkDir(fsys, ".", func(file string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if file != "." && d.Name()[0] == '.' {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				return nil
			}
			if _, ok := imageExtensions[strings.ToLower(path.Ext(file))]; !ok {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})
	}()
	return out, errc
}

func (p *PixelRendr) encodeFile(fsys fs.FS, file string) (string, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}
	return p.Encode(m, nil)
}

// Scan encodes every image in fsys using up to jobs workers. Each result is
// passed to fn under a key made from its path without the extension. Images
// that cannot be decoded are skipped and reported together once the walk has
// finished, an error from fn stops the scan.
func (p *PixelRendr) Scan(ctx context.Context, fsys fs.FS, jobs int, fn ScanFunc) error {
	if jobs < 1 {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	files, walkErr := p.findImages(ctx, fsys)

	var (
		mu      sync.Mutex
		skipped error
	)
	for file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			source, err := p.encodeFile(fsys, file)
			if err != nil {
				p.logger.Warn("skipping image", zap.String("file", file), zap.Error(err))
				mu.Lock()
				skipped = multierr.Append(skipped, fmt.Errorf("%s: %w", file, err))
				mu.Unlock()
				return nil
			}

			key := strings.Split(strings.TrimSuffix(file, path.Ext(file)), "/")
			p.logger.Debug("image encoded", zap.Strings("key", key), zap.Int("length", len(source)))

			mu.Lock()
			defer mu.Unlock()
			return fn(key, source)
		})
	}

	// A failed worker cancels the walk, which says nothing new
	err := g.Wait()
	if werr := <-walkErr; err == nil || !errors.Is(werr, context.Canceled) {
		err = multierr.Append(err, werr)
	}
	return multierr.Append(err, skipped)
}
