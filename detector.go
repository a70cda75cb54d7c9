package facetrack

import (
	"image"
)

// Detector is the region search capability the tracker is built on.
// Implementations run a multi-scale face detection inside region (which is
// always non-empty and contained in the frame) and return the candidate
// rectangles relative to region.Min. Candidate sides should lie between
// minSize and maxSize. Finding nothing is not an error.
type Detector interface {
	Detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error)
}

// DetectorFunc adapts an ordinary function to the Detector interface.
type DetectorFunc func(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error)

// Detect calls f(frame, region, minSize, maxSize).
func (f DetectorFunc) Detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error) {
	return f(frame, region, minSize, maxSize)
}

var _ Detector = DetectorFunc(nil)

type firstOf []Detector

// FirstOf combines several detector backends into one. The backends are
// consulted in order and the first non-empty result is returned. The same
// policy applies to whole frame and region restricted searches.
func FirstOf(detectors ...Detector) Detector {
	return firstOf(detectors)
}

// Detect implements the Detector interface.
func (d firstOf) Detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error) {
	for _, det := range d {
		if det == nil {
			continue
		}
		faces, err := det.Detect(frame, region, minSize, maxSize)
		if err != nil {
			return nil, err
		}
		if len(faces) > 0 {
			return faces, nil
		}
	}
	return nil, nil
}
