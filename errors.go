package pixelrendr

import "errors"

var (
	// ErrNotFound is returned when a key does not match anything in the
	// library, or does not lead to a sprite where one is required.
	ErrNotFound = errors.New("pixelrendr: not found")
	// ErrUnknownFilter is returned when a "filter" command names a filter
	// that was not configured.
	ErrUnknownFilter = errors.New("pixelrendr: unknown filter")
	// ErrCycle is returned when "same" or "filter" commands refer back to a
	// sprite that is still being resolved.
	ErrCycle = errors.New("pixelrendr: reference cycle")
	// ErrNoPalette is returned when no usable default palette is configured.
	ErrNoPalette = errors.New("pixelrendr: no palette")
	// ErrNoDimensions is returned when a sprite is decoded without a width.
	ErrNoDimensions = errors.New("pixelrendr: missing sprite dimensions")
	// ErrNoLoader is returned by EncodeURI without an ImageLoader.
	ErrNoLoader = errors.New("pixelrendr: no image loader")
)
