//go:build gocv

package facetrack

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// HaarDetector is a Detector backed by an OpenCV Haar cascade classifier.
// It is only available when built with the gocv tag.
type HaarDetector struct {
	classifier gocv.CascadeClassifier
	// ScaleFactor is how much the image size is reduced at each image scale
	// when the whole frame is searched.
	ScaleFactor float64
	// ROIScaleFactor replaces ScaleFactor for searches restricted to a region
	// around the tracked face, where a coarser pyramid is enough.
	ROIScaleFactor float64
	// MinNeighbors is how many neighbors each candidate rectangle should have to retain it.
	MinNeighbors int
}

var _ Detector = (*HaarDetector)(nil)

// NewHaarDetector loads the OpenCV cascade classifier found at path.
func NewHaarDetector(path string) (*HaarDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, errors.Wrapf(ErrCascade, "error reading cascade file: %s", path)
	}
	return &HaarDetector{
		classifier:   classifier,
		ScaleFactor:    1.1,
		ROIScaleFactor: 1.3,
		MinNeighbors:   3,
	}, nil
}

// Detect implements the Detector interface.
func (d *HaarDetector) Detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error) {
	scaleFactor := d.scaleFactor(frame.Bounds(), region)
	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return nil, nil
	}
	sub := CropGray(frame, region)

	mat, err := gocv.NewMatFromBytes(sub.Rect.Dy(), sub.Rect.Dx(), gocv.MatTypeCV8U, sub.Pix)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert the frame")
	}
	defer mat.Close()

	return d.classifier.DetectMultiScaleWithParams(mat, scaleFactor, d.MinNeighbors, 0, minSize, maxSize), nil
}

// scaleFactor returns the pyramid scale factor used for searching region.
func (d *HaarDetector) scaleFactor(bounds, region image.Rectangle) float64 {
	if region == bounds || d.ROIScaleFactor <= 1 {
		return d.ScaleFactor
	}
	return d.ROIScaleFactor
}

// Close releases the classifier.
func (d *HaarDetector) Close() error {
	return d.classifier.Close()
}
