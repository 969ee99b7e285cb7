package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/trash-scanner/internal/config"
)

// LocationOpener maps each facing to a configured location: an image file,
// a directory of images, or an http(s) snapshot URL.
type LocationOpener struct {
	Rear  string
	Front string
}

// Open implements Opener.
func (o LocationOpener) Open(ctx context.Context, facing Facing) (Source, error) {
	loc := o.Front
	if facing == FacingEnvironment {
		loc = o.Rear
	}
	if loc == "" {
		return nil, fmt.Errorf("no %s camera configured", facing)
	}
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return OpenHTTP(ctx, loc, nil)
	}
	return OpenFile(config.ExpandPath(loc))
}
