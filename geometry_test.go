package facetrack

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometry_DoubleRectSize(t *testing.T) {
	bounds := image.Rect(0, 0, 320, 240)

	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"centered", image.Rect(100, 100, 150, 150), image.Rect(75, 75, 175, 175)},
		{"odd size", image.Rect(100, 100, 131, 121), image.Rect(85, 90, 147, 132)},
		{"top left corner", image.Rect(0, 0, 40, 40), image.Rect(0, 0, 60, 60)},
		{"bottom right corner", image.Rect(290, 210, 320, 240), image.Rect(275, 195, 320, 240)},
		{"outside", image.Rect(400, 400, 410, 410), image.Rect(395, 395, 395, 395)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DoubleRectSize(tt.in, bounds)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, isDegenerate(DoubleRectSize(image.Rect(400, 400, 410, 410), bounds)))
}

func TestGeometry_CenterAndDistance(t *testing.T) {
	assert.Equal(t, image.Pt(125, 125), CenterOf(image.Rect(100, 100, 150, 150)))
	assert.Equal(t, image.Pt(2, 3), CenterOf(image.Rect(0, 0, 5, 7)))

	assert.Equal(t, 5.0, EuclideanDistance(image.Pt(0, 0), image.Pt(3, 4)))
	assert.Equal(t, 0.0, EuclideanDistance(image.Pt(7, 9), image.Pt(7, 9)))
}

func TestGeometry_BiggestRect(t *testing.T) {
	_, ok := BiggestRect(nil)
	assert.False(t, ok)

	first := image.Rect(0, 0, 10, 10)
	second := image.Rect(50, 50, 60, 60)
	biggest := image.Rect(20, 20, 40, 35)

	got, ok := BiggestRect([]image.Rectangle{first, biggest, second})
	assert.True(t, ok)
	assert.Equal(t, biggest, got)

	got, _ = BiggestRect([]image.Rectangle{first, second})
	assert.Equal(t, first, got, "the earliest rectangle should win ties")
}

func TestGeometry_FaceTemplateRect(t *testing.T) {
	assert.Equal(t, image.Rect(112, 112, 137, 137), FaceTemplateRect(image.Rect(100, 100, 150, 150)))
	assert.True(t, isDegenerate(FaceTemplateRect(image.Rect(10, 10, 13, 13))))
	assert.True(t, FaceTemplateRect(image.Rect(0, 0, 1, 1)).Empty())
}

func TestGeometry_ScaleRect(t *testing.T) {
	assert.Equal(t, image.Rect(100, 100, 150, 150), ScaleRect(image.Rect(50, 50, 75, 75), 0.5))
	// Every component is truncated on its own.
	assert.Equal(t, image.Rect(82, 52, 114, 69), ScaleRect(image.Rect(33, 21, 46, 28), 0.4))
	assert.Equal(t, image.Rectangle{}, ScaleRect(image.Rect(1, 1, 2, 2), 0))

	assert.Equal(t, image.Pt(250, 62), ScalePoint(image.Pt(125, 31), 0.5))
	assert.Equal(t, image.Point{}, ScalePoint(image.Pt(1, 1), -1))
}
