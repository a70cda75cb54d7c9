package facetrack

import (
	"image"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"

	"github.com/esimov/facetrack/utils"
)

// WorkingFrame converts img into the grayscale working frame the tracker
// operates on. Frames wider than resizedWidth are downscaled keeping the aspect
// ratio. The returned scale is the ratio between the working and the original
// resolution and is never greater than 1.
func WorkingFrame(img image.Image, resizedWidth int) (*image.Gray, float64, error) {
	if img == nil {
		return nil, 0, errors.Wrap(ErrInvalidFrame, "nil image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, 0, errors.Wrapf(ErrInvalidFrame, "empty image %v", b)
	}
	resizedWidth = utils.Max(resizedWidth, 1)

	scale := float64(utils.Min(resizedWidth, b.Dx())) / float64(b.Dx())
	w, h := int(scale*float64(b.Dx())), int(scale*float64(b.Dy()))
	if w == 0 || h == 0 {
		return nil, 0, errors.Wrapf(ErrInvalidFrame, "image %dx%d collapses at width %d", b.Dx(), b.Dy(), resizedWidth)
	}

	if scale == 1 {
		if gray, ok := img.(*image.Gray); ok {
			return CropGray(gray, b), scale, nil
		}
		return toGray(imaging.Clone(img)), scale, nil
	}
	return toGray(imaging.Resize(img, w, h, imaging.Linear)), scale, nil
}

// toGray converts an origin based image to a packed grayscale image.
func toGray(src *image.NRGBA) *image.Gray {
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	return &image.Gray{
		Pix:    pigo.RgbToGrayscale(src),
		Stride: cols,
		Rect:   image.Rect(0, 0, cols, rows),
	}
}
