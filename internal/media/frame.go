package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"
)

// Frame preparation constants.
const (
	MaxDimension = 640
	JPEGQuality  = 80
)

// Downsample scales img so neither side exceeds maxDim, keeping the aspect
// ratio. Images already small enough are returned unchanged.
func Downsample(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	if w > maxDim {
		h = roundDiv(h*maxDim, w)
		w = maxDim
	}
	if h > maxDim {
		w = roundDiv(w*maxDim, h)
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func roundDiv(a, b int) int {
	return (a + b/2) / b
}

// EncodeJPEG encodes img at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareFrame downsamples to MaxDimension and encodes at JPEGQuality.
func PrepareFrame(img image.Image) ([]byte, error) {
	return EncodeJPEG(Downsample(img, MaxDimension), JPEGQuality)
}

// ErrUnsupportedImage is returned when uploaded bytes are not a known image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

// DecodeFrame decodes an uploaded image in any registered format and
// prepares it like a camera frame.
func DecodeFrame(r io.Reader) ([]byte, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return PrepareFrame(img)
}
