package facetrack

import (
	"image"
	"math"

	"github.com/esimov/facetrack/utils"
)

// DoubleRectSize returns a rectangle twice the width and height of r, centered
// on r's center and clamped so that it lies fully inside bounds. The side which
// would overflow is shrunk rather than translated, hence the result might be
// smaller than requested, or even empty, near the edges.
func DoubleRectSize(r, bounds image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()

	out := image.Rectangle{
		Min: image.Pt(r.Min.X-w/2, r.Min.Y-h/2),
	}
	out.Max = out.Min.Add(image.Pt(w*2, h*2))

	out.Min.X = utils.Max(out.Min.X, bounds.Min.X)
	out.Min.Y = utils.Max(out.Min.Y, bounds.Min.Y)
	out.Max.X = utils.Clamp(out.Max.X, out.Min.X, bounds.Max.X)
	out.Max.Y = utils.Clamp(out.Max.Y, out.Min.Y, bounds.Max.Y)
	return out
}

// CenterOf returns the integer truncated centroid of r.
func CenterOf(r image.Rectangle) image.Point {
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}

// EuclideanDistance returns the L2 distance between two points.
func EuclideanDistance(p, q image.Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// BiggestRect returns the rectangle with the largest area. The first one wins on ties.
func BiggestRect(rects []image.Rectangle) (image.Rectangle, bool) {
	if len(rects) == 0 {
		return image.Rectangle{}, false
	}
	biggest := rects[0]
	for _, r := range rects[1:] {
		if area(r) > area(biggest) {
			biggest = r
		}
	}
	return biggest, true
}

// FaceTemplateRect returns the center quarter-area of the face rectangle,
// which is the patch used as template for the correlation search.
func FaceTemplateRect(face image.Rectangle) image.Rectangle {
	w, h := face.Dx(), face.Dy()
	origin := face.Min.Add(image.Pt(w/4, h/4))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w/2, h/2))}
}

// ScaleRect maps a rectangle from working resolution back to the caller's
// resolution by dividing each component by scale. Values are truncated.
func ScaleRect(r image.Rectangle, scale float64) image.Rectangle {
	if scale <= 0 {
		return image.Rectangle{}
	}
	x := int(float64(r.Min.X) / scale)
	y := int(float64(r.Min.Y) / scale)
	w := int(float64(r.Dx()) / scale)
	h := int(float64(r.Dy()) / scale)
	return image.Rect(x, y, x+w, y+h)
}

// ScalePoint maps a point from working resolution back to the caller's resolution.
func ScalePoint(p image.Point, scale float64) image.Point {
	if scale <= 0 {
		return image.Point{}
	}
	return image.Pt(int(float64(p.X)/scale), int(float64(p.Y)/scale))
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// isDegenerate reports whether r is too small to be used as a template or search region.
func isDegenerate(r image.Rectangle) bool {
	return r.Dx() <= 1 || r.Dy() <= 1
}
