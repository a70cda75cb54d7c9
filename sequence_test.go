package facetrack

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// writeSequence stores n copies of the same frame and returns their paths.
func writeSequence(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	frame := noiseFrame(64, 48)

	var paths []string
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "frame_"+string(rune('a'+i/26))+string(rune('a'+i%26))+".png")
		writePNG(t, path, frame)
		paths = append(paths, path)
	}
	return paths
}

func TestSequence_ListFrames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	for _, name := range []string{"b.png", "a.JPG", "notes.txt", "sub/c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	paths, err := ListFrames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "sub", "c.webp"),
	}, paths)

	_, err = ListFrames(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestSequence_DecodeFrame(t *testing.T) {
	dir := t.TempDir()
	img := noiseFrame(16, 8)

	pngPath := filepath.Join(dir, "frame.png")
	writePNG(t, pngPath, img)
	decoded, err := DecodeFrame(pngPath)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	bmpPath := filepath.Join(dir, "frame.bmp")
	f, err := os.Create(bmpPath)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, img))
	require.NoError(t, f.Close())
	decoded, err = DecodeFrame(bmpPath)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	txtPath := filepath.Join(dir, "frame.jpg")
	require.NoError(t, os.WriteFile(txtPath, []byte("not an image at all"), 0o644))
	_, err = DecodeFrame(txtPath)
	assert.True(t, errors.Is(err, ErrInvalidFrame))

	_, err = DecodeFrame(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestSequence_ReplayShouldFollowVideoTime(t *testing.T) {
	paths := writeSequence(t, 20)
	det := &fakeDetector{faces: []image.Rectangle{image.Rect(20, 10, 40, 30)}}

	mock := clock.NewMock()
	start := mock.Now()
	tracker, err := NewTracker(det, DefaultConfig(), WithClock(mock), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	var results []Result
	err = Replay(context.Background(), tracker, paths, 10, mock, func(res Result) error {
		results = append(results, res)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 20)

	// At 10 fps the dwell time elapses on the 16th frame.
	assert.False(t, results[14].Found)
	assert.Equal(t, NotFound, results[14].Position)
	assert.True(t, results[15].Found)
	assert.Equal(t, image.Pt(30, 20), results[15].Position)
	assert.Equal(t, image.Rect(20, 10, 40, 30), results[15].Face)
	assert.Equal(t, Tracking, results[19].State)
	assert.Equal(t, paths[3], results[3].Path)
	assert.Equal(t, 2*time.Second, mock.Now().Sub(start))
}

func TestSequence_ReplayShouldStop(t *testing.T) {
	paths := writeSequence(t, 3)
	tracker, mock := newTestTracker(t, &fakeDetector{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Replay(ctx, tracker, paths, 30, mock, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	err = Replay(context.Background(), tracker, paths, 0, mock, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	stop := errors.New("stop")
	var calls int
	err = Replay(context.Background(), tracker, paths, 30, nil, func(Result) error {
		calls++
		return stop
	})
	assert.Equal(t, stop, err)
	assert.Equal(t, 1, calls)
}
