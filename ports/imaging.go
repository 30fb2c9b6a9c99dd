package ports

import (
	"context"
	"image/color"
)

// NamedColor is a background used when compositing transparent images
type NamedColor struct {
	Name  string     `json:"name" yaml:"name"`
	Color color.RGBA `json:"color" yaml:"-"`
}

// ImageCompositor flattens transparent images onto solid backgrounds
type ImageCompositor interface {
	// List returns the source image paths in a directory, sorted
	List(ctx context.Context, dir string) ([]string, error)
	// Composite writes src flattened onto bg to dst
	Composite(ctx context.Context, src, dst string, bg color.RGBA) error
}
