package facetrack

import (
	"image"
	"testing"

	"github.com/benbjohnson/clock"
)

func Benchmark_Match(b *testing.B) {
	frame := noiseFrame(100, 100)
	templ := CropGray(frame, image.Rect(37, 37, 62, 62))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, _, err := Match(frame, templ); err != nil {
			b.Fatalf("template matching failed: %v", err)
		}
	}
}

func Benchmark_TrackerFallback(b *testing.B) {
	det := &fakeDetector{faces: []image.Rectangle{image.Rect(100, 100, 150, 150)}}
	mock := clock.NewMock()
	tracker, err := NewTracker(det, DefaultConfig(), WithClock(mock))
	if err != nil {
		b.Fatalf("could not create the tracker: %v", err)
	}
	frame := noiseFrame(320, 240)
	tracker.SetDwellTime(0)
	if _, err := tracker.ProcessFrame(frame); err != nil || !tracker.IsFaceFound() {
		b.Fatalf("face not confirmed: %v", err)
	}
	// The detector misses the face, every frame runs template matching.
	det.faces = nil
	tracker.SetFallbackTimeout(1 << 62)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := tracker.ProcessFrame(frame); err != nil {
			b.Fatalf("error processing the frame: %v", err)
		}
	}
}
