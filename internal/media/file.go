package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true, ".webp": true,
}

// FileSource reads frames from an image file, or cycles through the images
// in a directory so a folder of snapshots behaves like a live feed.
type FileSource struct {
	path  string
	files []string
	next  int
	mu    sync.Mutex
}

// OpenFile opens a file or directory source.
func OpenFile(path string) (*FileSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if !info.IsDir() {
		return &FileSource{path: path, files: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s", path)
	}
	sort.Strings(files)
	return &FileSource{path: path, files: files}, nil
}

// Grab decodes the next image.
func (f *FileSource) Grab(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	name := f.files[f.next]
	f.next = (f.next + 1) % len(f.files)
	f.mu.Unlock()

	return decodeFile(name)
}

// Close implements Source.
func (f *FileSource) Close() error { return nil }

// decodeFile reads a single image from disk.
func decodeFile(name string) (image.Image, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = fh.Close() }()

	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}
