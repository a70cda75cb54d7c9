//go:build gocv

package facetrack

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// MatchOpenCV is a Relocalizer running the OpenCV normalized squared difference
// template matching. It is only available when built with the gocv tag.
func MatchOpenCV(search, templ *image.Gray) (image.Point, float64, error) {
	if err := checkTemplate(search, templ); err != nil {
		return image.Point{}, 0, err
	}
	// OpenCV expects packed, origin based buffers.
	search, templ = CropGray(search, search.Bounds()), CropGray(templ, templ.Bounds())

	img, err := gocv.NewMatFromBytes(search.Rect.Dy(), search.Rect.Dx(), gocv.MatTypeCV8U, search.Pix)
	if err != nil {
		return image.Point{}, 0, errors.Wrap(err, "unable to convert the search region")
	}
	defer img.Close()

	tm, err := gocv.NewMatFromBytes(templ.Rect.Dy(), templ.Rect.Dx(), gocv.MatTypeCV8U, templ.Pix)
	if err != nil {
		return image.Point{}, 0, errors.Wrap(err, "unable to convert the template")
	}
	defer tm.Close()

	result, mask := gocv.NewMat(), gocv.NewMat()
	defer result.Close()
	defer mask.Close()

	gocv.MatchTemplate(img, tm, &result, gocv.TmSqdiffNormed, mask)
	minVal, _, minLoc, _ := gocv.MinMaxLoc(result)
	return minLoc, float64(minVal), nil
}

var _ Relocalizer = RelocalizerFunc(MatchOpenCV)
