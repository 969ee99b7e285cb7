package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/model"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 160, B: 90, A: 255})
		}
	}
	return img
}

func TestDownsample(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{name: "landscape", w: 1280, h: 720, wantW: 640, wantH: 360},
		{name: "portrait", w: 720, h: 1280, wantW: 360, wantH: 640},
		{name: "square", w: 2000, h: 2000, wantW: 640, wantH: 640},
		{name: "already small", w: 320, h: 240, wantW: 320, wantH: 240},
		{name: "exact limit", w: 640, h: 480, wantW: 640, wantH: 480},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Downsample(solid(tt.w, tt.h), MaxDimension)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestPrepareFrame(t *testing.T) {
	data, err := PrepareFrame(solid(1600, 900))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, solid(w, h)))
}

func TestFileSource_CyclesDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "b.png"), 20, 20)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	src, err := OpenFile(dir)
	require.NoError(t, err)

	ctx := context.Background()
	widths := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		img, err := src.Grab(ctx)
		require.NoError(t, err)
		widths = append(widths, img.Bounds().Dx())
	}
	assert.Equal(t, []int{10, 20, 10}, widths)

	_, err = OpenFile(t.TempDir())
	assert.Error(t, err, "empty directory")
}

func TestHTTPSource(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(32, 16)))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	src, err := LocationOpener{Rear: srv.URL}.Open(context.Background(), FacingEnvironment)
	require.NoError(t, err)
	img, err := src.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	require.NoError(t, src.Close())
}

type fakeSource struct{ closed bool }

func (f *fakeSource) Grab(context.Context) (image.Image, error) { return solid(4, 4), nil }
func (f *fakeSource) Close() error                              { f.closed = true; return nil }

func TestCamera_PhoneFallsBackToFrontOnce(t *testing.T) {
	var tried []Facing
	opener := OpenerFunc(func(_ context.Context, facing Facing) (Source, error) {
		tried = append(tried, facing)
		if facing == FacingEnvironment {
			return nil, errors.New("no rear camera")
		}
		return &fakeSource{}, nil
	})

	cam := NewCamera(opener, model.DevicePhone, nil)
	require.NoError(t, cam.Start(context.Background()))
	assert.Equal(t, []Facing{FacingEnvironment, FacingUser}, tried)
	assert.Equal(t, FacingUser, cam.Facing())
	assert.True(t, cam.Ready())
}

func TestCamera_AccessError(t *testing.T) {
	calls := 0
	opener := OpenerFunc(func(context.Context, Facing) (Source, error) {
		calls++
		return nil, errors.New("denied")
	})

	cam := NewCamera(opener, model.DevicePhone, nil)
	err := cam.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, calls, "exactly one fallback attempt")
	assert.ErrorIs(t, err, ErrAccess)
	assert.Equal(t, "camera.error.access", common.UserErrorKey(err, ""))
	assert.False(t, cam.Ready())

	_, err = cam.Grab(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	calls = 0
	desktop := NewCamera(opener, model.DeviceComputer, nil)
	require.Error(t, desktop.Start(context.Background()))
	assert.Equal(t, 1, calls, "computers have no fallback")
}

func TestCamera_Switch(t *testing.T) {
	sources := map[Facing]*fakeSource{}
	opener := OpenerFunc(func(_ context.Context, facing Facing) (Source, error) {
		s := &fakeSource{}
		sources[facing] = s
		return s, nil
	})

	cam := NewCamera(opener, model.DevicePhone, nil)
	require.NoError(t, cam.Start(context.Background()))
	require.NoError(t, cam.Switch(context.Background()))
	assert.Equal(t, FacingUser, cam.Facing())
	assert.True(t, sources[FacingEnvironment].closed)

	require.NoError(t, cam.Close())
	assert.True(t, sources[FacingUser].closed)
}

func TestDecodeFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(1280, 720)))

	data, err := DecodeFrame(&buf)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())

	_, err = DecodeFrame(bytes.NewReader([]byte("not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
