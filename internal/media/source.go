// Package media acquires still frames from camera-like sources and prepares
// them for classification.
package media

import (
	"context"
	"errors"
	"image"
)

// Facing selects which physical camera to open.
type Facing string

// Camera facings.
const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Opposite returns the other facing.
func (f Facing) Opposite() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// ErrAccess is returned when no camera could be opened.
var ErrAccess = errors.New("camera unavailable")

// Source yields frames from an opened camera.
type Source interface {
	Grab(ctx context.Context) (image.Image, error)
	Close() error
}

// Opener opens the source for a facing.
type Opener interface {
	Open(ctx context.Context, facing Facing) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, facing Facing) (Source, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, facing Facing) (Source, error) {
	return f(ctx, facing)
}
