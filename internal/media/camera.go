package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

// ErrNotReady is returned by Grab before Start succeeds.
var ErrNotReady = errors.New("camera not ready")

// Camera owns the active source and its readiness.
type Camera struct {
	opener Opener
	source Source
	err    error
	logger *slog.Logger
	device model.DeviceType
	facing Facing
	mu     sync.Mutex
}

// NewCamera creates a camera for the given device. Phones start on the rear
// camera, computers on the only one they have.
func NewCamera(opener Opener, device model.DeviceType, logger *slog.Logger) *Camera {
	if logger == nil {
		logger = slog.Default()
	}
	facing := FacingUser
	if device == model.DevicePhone {
		facing = FacingEnvironment
	}
	return &Camera{
		opener: opener,
		device: device,
		facing: facing,
		logger: logger,
	}
}

// Start opens the current facing. On a phone a failed rear camera falls back
// to the front camera once; if that fails too the camera is left in the error
// state with a camera.error.access error.
func (c *Camera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(ctx)
}

func (c *Camera) startLocked(ctx context.Context) error {
	_ = c.closeLocked()

	src, err := c.opener.Open(ctx, c.facing)
	if err != nil && c.device == model.DevicePhone && c.facing == FacingEnvironment {
		c.logger.Warn("rear camera unavailable, trying front camera", "error", err)
		c.facing = FacingUser
		src, err = c.opener.Open(ctx, c.facing)
	}
	if err != nil {
		c.err = common.NewLocalizedError("camera.error.access", fmt.Errorf("%w: %w", ErrAccess, err))
		c.logger.Error("camera access failed", "facing", c.facing, "error", err)
		return c.err
	}

	c.source = src
	c.err = nil
	c.logger.Debug("camera started", "facing", c.facing)
	return nil
}

// Switch flips between rear and front camera. Only phones have two.
func (c *Camera) Switch(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != model.DevicePhone {
		return nil
	}
	c.facing = c.facing.Opposite()
	return c.startLocked(ctx)
}

// Grab reads one frame.
func (c *Camera) Grab(ctx context.Context) (image.Image, error) {
	c.mu.Lock()
	src := c.source
	c.mu.Unlock()
	if src == nil {
		return nil, ErrNotReady
	}
	img, err := src.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to grab frame: %w", err)
	}
	return img, nil
}

// Ready reports whether a source is open.
func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source != nil
}

// Err returns the last acquisition error, if any.
func (c *Camera) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Facing returns the active facing.
func (c *Camera) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// Close releases the source.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Camera) closeLocked() error {
	if c.source == nil {
		return nil
	}
	err := c.source.Close()
	c.source = nil
	return err
}
