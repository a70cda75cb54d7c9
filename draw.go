package facetrack

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/esimov/facetrack/utils"
)

const (
	markerLineWidth = 2.0
	markerRadius    = 3.0
)

// stateColors holds the marker RGB components used for each tracking state.
var stateColors = map[State][3]float64{
	Tracking: {0.2, 0.85, 0.3},
	Fallback: {1.0, 0.7, 0.1},
}

// Annotate returns a copy of img with the face rectangle and its center drawn
// over it. Both are expected in img coordinates. Nothing is drawn while searching.
// The returned image has its origin at (0, 0).
func Annotate(img image.Image, face image.Rectangle, pos image.Point, state State) image.Image {
	// Normalize the origin, the drawing context works with zero based coordinates.
	b := img.Bounds()
	dc := gg.NewContextForImage(imaging.Clone(img))

	rgb, ok := stateColors[state]
	if !ok || face.Empty() {
		return dc.Image()
	}
	face = face.Sub(b.Min)
	pos = pos.Sub(b.Min)

	lineWidth := utils.Max(markerLineWidth, float64(utils.Min(face.Dx(), face.Dy()))/50)

	dc.SetRGB(rgb[0], rgb[1], rgb[2])
	dc.SetLineWidth(lineWidth)
	dc.DrawRectangle(float64(face.Min.X), float64(face.Min.Y), float64(face.Dx()), float64(face.Dy()))
	dc.Stroke()

	dc.DrawCircle(float64(pos.X), float64(pos.Y), markerRadius+lineWidth)
	dc.Fill()

	return dc.Image()
}
