package facetrack

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/esimov/facetrack/utils"
)

// frameExtensions lists the supported frame file extensions.
var frameExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}

// Result holds the tracking outcome of one frame of a sequence.
type Result struct {
	Index    int
	Path     string
	Frame    image.Image
	Found    bool
	Position image.Point
	Face     image.Rectangle
	State    State
}

// ListFrames walks the dir directory tree and returns the supported image
// files sorted by path, which is expected to follow the frame order.
func ListFrames(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isValidExtension(strings.ToLower(filepath.Ext(d.Name())), frameExtensions) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list the frames of %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// DecodeFrame opens and decodes the image file found at path.
func DecodeFrame(path string) (image.Image, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the frame")
	}
	if !strings.HasPrefix(ctype, "image/") {
		return nil, errors.Wrapf(ErrInvalidFrame, "%s is not an image: %s", filepath.Base(path), ctype)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the frame")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s", filepath.Base(path))
	}
	return img, nil
}

// Replay feeds the frames found at paths to the tracker in order and calls fn
// with the outcome of each. When mock is not nil it is advanced by one frame
// interval after every frame, so the tracker timers follow the video time
// instead of the processing time. Replay stops at the first error returned by
// the tracker or fn, or when ctx is done.
func Replay(ctx context.Context, tracker *Tracker, paths []string, fps float64, mock *clock.Mock, fn func(Result) error) error {
	if mock != nil && fps <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "frame rate must be positive, got %v", fps)
	}
	var interval time.Duration
	if fps > 0 {
		interval = time.Duration(float64(time.Second) / fps)
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := DecodeFrame(path)
		if err != nil {
			return err
		}
		pos, err := tracker.ProcessFrame(img)
		if err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		res := Result{
			Index:    i,
			Path:     path,
			Frame:    img,
			Found:    tracker.IsFaceFound(),
			Position: pos,
			Face:     tracker.Face(),
			State:    tracker.State(),
		}
		if fn != nil {
			if err := fn(res); err != nil {
				return err
			}
		}
		if mock != nil {
			mock.Add(interval)
		}
	}
	return nil
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
