package facetrack

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"

	"github.com/esimov/facetrack/utils"
)

// PigoConfig holds the tuning parameters of the pigo cascade.
type PigoConfig struct {
	// ShiftFactor determines to what percentage to move the detection window over its size.
	ShiftFactor float64
	// ScaleFactor defines in percentage the resize value of the detection window when moving to a higher scale.
	ScaleFactor float64
	// IoUThreshold is the intersection over union above which two detections are merged.
	IoUThreshold float64
	// MinQuality drops the clustered detections scoring below it.
	MinQuality float32
	// Angle is the in-plane rotation of the searched faces, in the 0.0-1.0 range.
	Angle float64
}

// DefaultPigoConfig returns the parameters used for video frames.
func DefaultPigoConfig() PigoConfig {
	return PigoConfig{
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
	}
}

// Validate checks the cascade parameters.
func (c PigoConfig) Validate() error {
	if c.ShiftFactor <= 0 || c.ShiftFactor > 1 {
		return errors.Wrapf(ErrInvalidConfig, "shift factor %v out of (0, 1]", c.ShiftFactor)
	}
	if c.ScaleFactor <= 1 {
		return errors.Wrapf(ErrInvalidConfig, "scale factor %v must be greater than 1", c.ScaleFactor)
	}
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "IoU threshold %v out of [0, 1]", c.IoUThreshold)
	}
	if c.Angle < 0 || c.Angle > 1 {
		return errors.Wrapf(ErrInvalidConfig, "angle %v out of [0, 1]", c.Angle)
	}
	return nil
}

// PigoDetector is a pure Go Detector backed by the pigo pixel intensity
// comparison based cascade.
type PigoDetector struct {
	classifier *pigo.Pigo
	cfg        PigoConfig
}

var _ Detector = (*PigoDetector)(nil)

// NewPigoDetector unpacks the binary cascade and returns a ready to use detector.
func NewPigoDetector(cascade []byte, cfg PigoConfig) (*PigoDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := unpackCascade(cascade)
	if err != nil {
		return nil, err
	}
	return &PigoDetector{classifier: classifier, cfg: cfg}, nil
}

// LoadPigoDetector reads the cascade file found at path and unpacks it.
func LoadPigoDetector(path string, cfg PigoConfig) (*PigoDetector, error) {
	cascade, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrCascade, "failed to read cascade file: %v", err)
	}
	return NewPigoDetector(cascade, cfg)
}

// unpackCascade guards the pigo unpacker, which indexes the packet without bound checks.
func unpackCascade(cascade []byte) (classifier *pigo.Pigo, err error) {
	// 8 bytes of preamble followed by the tree depth and the number of trees.
	if len(cascade) < 16 {
		return nil, errors.Wrapf(ErrCascade, "cascade too short: %d bytes", len(cascade))
	}
	if binary.LittleEndian.Uint32(cascade[12:16]) == 0 {
		return nil, errors.Wrap(ErrCascade, "cascade contains no trees")
	}

	defer func() {
		if r := recover(); r != nil {
			classifier = nil
			err = errors.Wrapf(ErrCascade, "corrupt cascade: %v", r)
		}
	}()

	classifier, err = pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, errors.Wrapf(ErrCascade, "error unpacking the cascade file: %v", err)
	}
	return classifier, nil
}

// Detect implements the Detector interface.
func (d *PigoDetector) Detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error) {
	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return nil, nil
	}
	sub := CropGray(frame, region)
	cols, rows := sub.Rect.Dx(), sub.Rect.Dy()

	minSide := utils.Max(utils.Min(minSize.X, minSize.Y), 1)
	maxSide := utils.Min(utils.Max(maxSize.X, maxSize.Y), utils.Min(cols, rows))
	if maxSide < minSide {
		return nil, nil
	}

	cParams := pigo.CascadeParams{
		MinSize:     minSide,
		MaxSize:     maxSide,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: sub.Pix,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := d.classifier.RunCascade(cParams, d.cfg.Angle)

	// Merge the overlapping detections.
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoUThreshold)

	return detectionsToRects(dets, d.cfg.MinQuality, image.Rect(0, 0, cols, rows)), nil
}

// String describes the backend.
func (d *PigoDetector) String() string {
	return fmt.Sprintf("pigo(shift=%.2f, scale=%.2f)", d.cfg.ShiftFactor, d.cfg.ScaleFactor)
}

// detectionsToRects converts the pigo center based detections to rectangles
// clipped to bounds, dropping the ones scoring below minQuality.
func detectionsToRects(dets []pigo.Detection, minQuality float32, bounds image.Rectangle) []image.Rectangle {
	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < minQuality {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col-half+det.Scale, det.Row-half+det.Scale)
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		faces = append(faces, r)
	}
	return faces
}
