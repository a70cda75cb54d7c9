package facetrack

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// CropGray returns a deep copy of the r portion of src. The returned image
// has its origin at (0, 0) and does not share pixels with src.
func CropGray(src *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := src.PixOffset(r.Min.X, y)
		j := dst.PixOffset(0, y-r.Min.Y)
		copy(dst.Pix[j:j+r.Dx()], src.Pix[i:i+r.Dx()])
	}
	return dst
}

// Relocalizer locates a face template inside a search image. The returned
// location is relative to the search image origin and a lower score means a
// better match.
type Relocalizer interface {
	Match(search, templ *image.Gray) (image.Point, float64, error)
}

// RelocalizerFunc adapts an ordinary function to the Relocalizer interface.
type RelocalizerFunc func(search, templ *image.Gray) (image.Point, float64, error)

// Match calls f(search, templ).
func (f RelocalizerFunc) Match(search, templ *image.Gray) (image.Point, float64, error) {
	return f(search, templ)
}

var _ Relocalizer = RelocalizerFunc(nil)

// Match slides templ over search and returns the location where the normalized
// squared difference between the two is the smallest, together with the score
// at that location. A score of 0 is a perfect match. The score is not bounded
// above: a dark template over a bright region scores well over 1.
// The location is relative to the search image origin.
func Match(search, templ *image.Gray) (image.Point, float64, error) {
	if err := checkTemplate(search, templ); err != nil {
		return image.Point{}, 0, err
	}
	sb, tb := search.Bounds(), templ.Bounds()
	tw, th := tb.Dx(), tb.Dy()

	var tSum float64
	for y := 0; y < th; y++ {
		row := templ.Pix[templ.PixOffset(tb.Min.X, tb.Min.Y+y):]
		for x := 0; x < tw; x++ {
			v := float64(row[x])
			tSum += v * v
		}
	}

	rw, rh := sb.Dx()-tw+1, sb.Dy()-th+1
	best, bestScore := image.Point{}, math.Inf(1)

	for ry := 0; ry < rh; ry++ {
		for rx := 0; rx < rw; rx++ {
			var diff, iSum float64
			for y := 0; y < th; y++ {
				srow := search.Pix[search.PixOffset(sb.Min.X+rx, sb.Min.Y+ry+y):]
				trow := templ.Pix[templ.PixOffset(tb.Min.X, tb.Min.Y+y):]
				for x := 0; x < tw; x++ {
					s, t := float64(srow[x]), float64(trow[x])
					diff += (t - s) * (t - s)
					iSum += s * s
				}
			}
			// The first minimum in row-major order wins.
			if score := sqdiffNormed(diff, tSum, iSum); score < bestScore {
				best, bestScore = image.Pt(rx, ry), score
			}
		}
	}
	return best, bestScore, nil
}

// checkTemplate makes sure templ can be slid over search.
func checkTemplate(search, templ *image.Gray) error {
	if search == nil || templ == nil {
		return errors.Wrap(ErrTemplatePrecondition, "nil image")
	}
	sb, tb := search.Bounds(), templ.Bounds()
	tw, th := tb.Dx(), tb.Dy()
	if tw <= 1 || th <= 1 {
		return errors.Wrapf(ErrTemplatePrecondition, "template size %dx%d", tw, th)
	}
	if tw > sb.Dx() || th > sb.Dy() {
		return errors.Wrapf(ErrTemplatePrecondition,
			"template %dx%d does not fit in search region %dx%d", tw, th, sb.Dx(), sb.Dy())
	}
	return nil
}

func sqdiffNormed(diff, tSum, iSum float64) float64 {
	denom := math.Sqrt(tSum * iSum)
	if denom == 0 {
		if diff == 0 {
			return 0
		}
		return 1
	}
	return diff / denom
}
