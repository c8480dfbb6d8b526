package pixelrendr

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func pngFile(t *testing.T, w, h int, indices ...int) *fstest.MapFile {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, testImage(w, h, indices...)))
	return &fstest.MapFile{Data: buf.Bytes()}
}

func TestScan(t *testing.T) {
	fsys := fstest.MapFS{
		"characters/goomba.png":  pngFile(t, 2, 1, 2, 3),
		"characters/koopa.PNG":   pngFile(t, 1, 1, 1),
		"characters/.hidden.png": pngFile(t, 1, 1, 1),
		".git/config.png":        pngFile(t, 1, 1, 1),
		"solids/brick.png":       pngFile(t, 5, 1, 3, 3, 3, 3, 3),
		"solids/broken.png":      &fstest.MapFile{Data: []byte("not an image")},
		"README.txt":             &fstest.MapFile{Data: []byte("sprites")},
	}

	p := newTestRendr(t, Settings{})

	var mu sync.Mutex
	found := make(map[string]string)
	err := p.Scan(context.Background(), fsys, 4, func(key []string, source string) error {
		mu.Lock()
		defer mu.Unlock()
		found[strings.Join(key, "/")] = source
		return nil
	})
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "solids/broken.png")

	assert.Equal(t, map[string]string{
		"characters/goomba": "p[2,3]01",
		"characters/koopa":  "p[1]0",
		"solids/brick":      "p[3]x05,",
	}, found)
}

func TestScanStops(t *testing.T) {
	fsys := fstest.MapFS{
		"a.png": pngFile(t, 1, 1, 1),
		"b.png": pngFile(t, 1, 1, 2),
	}

	p := newTestRendr(t, Settings{})
	errStop := errors.New("stop")
	err := p.Scan(context.Background(), fsys, 1, func([]string, string) error {
		return errStop
	})
	assert.Equal(t, errStop, err)
}

func TestScanCancelled(t *testing.T) {
	fsys := fstest.MapFS{
		"a.png": pngFile(t, 1, 1, 1),
		"b.png": pngFile(t, 1, 1, 2),
	}

	p := newTestRendr(t, Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Scan(ctx, fsys, 1, func([]string, string) error {
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, multierr.Errors(err), 1)
}
