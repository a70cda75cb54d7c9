//go:build !gocv

package facetrack

import (
	"image"

	"github.com/pkg/errors"
)

// HaarDetector is a Detector backed by an OpenCV Haar cascade classifier.
// This build does not include OpenCV, rebuild with the gocv tag to enable it.
type HaarDetector struct{}

var _ Detector = (*HaarDetector)(nil)

// NewHaarDetector always fails without the gocv build tag.
func NewHaarDetector(path string) (*HaarDetector, error) {
	return nil, errors.Wrap(ErrBackendUnavailable, "haar cascades require the gocv build tag")
}

// Detect implements the Detector interface.
func (d *HaarDetector) Detect(*image.Gray, image.Rectangle, image.Point, image.Point) ([]image.Rectangle, error) {
	return nil, ErrBackendUnavailable
}

// Close is a no-op.
func (d *HaarDetector) Close() error {
	return nil
}
