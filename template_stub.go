//go:build !gocv

package facetrack

import (
	"image"

	"github.com/pkg/errors"
)

// MatchOpenCV always fails without the gocv build tag.
func MatchOpenCV(search, templ *image.Gray) (image.Point, float64, error) {
	return image.Point{}, 0, errors.Wrap(ErrBackendUnavailable, "opencv template matching requires the gocv build tag")
}
