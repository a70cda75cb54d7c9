package facetrack

import (
	"image"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/esimov/facetrack/utils"
)

// State is the phase of the tracking state machine.
type State int

const (
	// Searching means no face is confirmed. The whole frame is scanned and the
	// detected candidate has to stay in place for the dwell time to get confirmed.
	Searching State = iota
	// Tracking means a confirmed face is followed by searching around its last location.
	Tracking
	// Fallback means the region search failed and template matching substitutes it.
	Fallback
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Tracking:
		return "tracking"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

// NotFound is the position reported while no face is confirmed.
var NotFound = image.Point{X: -1, Y: -1}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock sets the time source of the dwell and fallback timers.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

// WithRelocalizer sets the template matcher used while the region search fails.
// The pure Go Match is used by default.
func WithRelocalizer(r Relocalizer) Option {
	return func(t *Tracker) {
		t.relocalizer = r
	}
}

// WithLogger sets the logger used for reporting the state transitions.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

// Tracker follows a single face over a sequence of frames. It is not safe for
// concurrent use, frames have to be fed one at a time.
type Tracker struct {
	detector    Detector
	relocalizer Relocalizer
	clock       clock.Clock
	logger      *zap.Logger

	resizedWidth    int
	fallbackTimeout time.Duration
	dwellTime       time.Duration

	state  State
	scale  float64
	origin image.Point
	// Geometry below is expressed in working frame coordinates.
	trackedFace  image.Rectangle
	faceROI      image.Rectangle
	template     *image.Gray
	position     image.Point
	prevPosition image.Point
	hasPrev      bool

	dwellStart    time.Time
	fallbackStart time.Time
	lastTick      time.Time
}

// NewTracker returns a tracker which uses det for locating the faces.
func NewTracker(det Detector, cfg Config, opts ...Option) (*Tracker, error) {
	if det == nil {
		return nil, ErrNoDetector
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tracker{
		detector:        det,
		relocalizer:     RelocalizerFunc(Match),
		clock:           clock.New(),
		logger:          zap.NewNop(),
		resizedWidth:    cfg.ResizedWidth,
		fallbackTimeout: cfg.FallbackTimeout,
		dwellTime:       cfg.DwellTime,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		return nil, errors.Wrap(ErrClockUnavailable, "nil clock")
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.relocalizer == nil {
		t.relocalizer = RelocalizerFunc(Match)
	}
	return t, nil
}

// ProcessFrame runs one step of the tracking state machine over img and returns
// the center of the confirmed face in img coordinates, or NotFound. Losing the
// face is not an error: errors are only returned for invalid frames, detector
// failures and an unreliable clock.
func (t *Tracker) ProcessFrame(img image.Image) (image.Point, error) {
	frame, scale, err := WorkingFrame(img, t.resizedWidth)
	if err != nil {
		return NotFound, err
	}
	now, err := t.now()
	if err != nil {
		return NotFound, err
	}
	t.scale = scale
	t.origin = img.Bounds().Min

	if t.state == Searching {
		err = t.searchFrame(frame, now)
	} else {
		err = t.trackFrame(frame, now)
	}
	if err != nil {
		return NotFound, err
	}
	return t.Position(), nil
}

// searchFrame scans the whole frame and promotes a stable candidate to a tracked face.
func (t *Tracker) searchFrame(frame *image.Gray, now time.Time) error {
	// Faces are expected to be between 1/5 and 2/3 of the frame height.
	h := frame.Bounds().Dy()
	faces, err := t.detect(frame, frame.Bounds(), image.Pt(h/5, h/5), image.Pt(h*2/3, h*2/3))
	if err != nil {
		return err
	}
	if t.dwellStart.IsZero() {
		t.dwellStart = now
	}
	best, ok := BiggestRect(faces)
	if !ok || isDegenerate(best) {
		t.dwellStart = now
		return nil
	}
	t.updateFace(frame, best)

	var dist float64
	if t.hasPrev {
		dist = EuclideanDistance(t.position, t.prevPosition)
	}
	t.prevPosition, t.hasPrev = t.position, true

	if dist > float64(t.faceROI.Dx())/2 {
		t.logger.Debug("candidate moved, restarting dwell timer",
			zap.Stringer("face", best),
			zap.Float64("distance", dist),
		)
		t.dwellStart = now
		return nil
	}
	if elapsed := now.Sub(t.dwellStart); elapsed < t.dwellTime {
		t.logger.Debug("candidate dwelling",
			zap.Stringer("face", best),
			zap.Duration("elapsed", elapsed),
		)
		return nil
	}
	t.setState(Tracking)
	return nil
}

// trackFrame searches around the last known face location and falls back
// to template matching in the same frame when the search fails.
func (t *Tracker) trackFrame(frame *image.Gray, now time.Time) error {
	roi := t.faceROI.Intersect(frame.Bounds())
	if isDegenerate(roi) {
		t.forceReset("degenerate search region", zap.Stringer("roi", roi))
		return nil
	}

	// Search for faces sized within 30% of the tracked one.
	w, h := t.trackedFace.Dx(), t.trackedFace.Dy()
	faces, err := t.detect(frame, roi, image.Pt(w*7/10, h*7/10), image.Pt(w*13/10, h*13/10))
	if err != nil {
		return err
	}
	if len(faces) > 0 {
		best, _ := BiggestRect(faces)
		if isDegenerate(best) {
			t.forceReset("face left the search region", zap.Stringer("face", best))
			return nil
		}
		t.updateFace(frame, best)
		t.fallbackStart = time.Time{}
		t.setState(Tracking)
		return nil
	}

	if t.fallbackStart.IsZero() {
		t.fallbackStart = now
	}
	t.setState(Fallback)
	t.relocalize(frame, roi, now)
	return nil
}

// relocalize locates the face template inside roi.
func (t *Tracker) relocalize(frame *image.Gray, roi image.Rectangle, now time.Time) {
	if d := now.Sub(t.fallbackStart); d > t.fallbackTimeout {
		t.forceReset("fallback timed out", zap.Duration("duration", d))
		return
	}
	if t.template == nil || isDegenerate(t.template.Bounds()) {
		t.forceReset("face template collapsed")
		return
	}

	loc, score, err := t.relocalizer.Match(CropGray(frame, roi), t.template)
	if err != nil {
		t.forceReset("template matching failed", zap.Error(err))
		return
	}
	loc = loc.Add(roi.Min)

	// The template is the center quarter of the face, doubling it restores the face size.
	face := DoubleRectSize(image.Rectangle{Min: loc, Max: loc.Add(t.template.Bounds().Size())}, frame.Bounds())
	t.updateFace(frame, face)

	t.logger.Debug("face relocalized",
		zap.Stringer("face", face),
		zap.Float64("score", score),
	)
}

// detect runs the detector over region and returns the candidates in frame coordinates.
func (t *Tracker) detect(frame *image.Gray, region image.Rectangle, minSize, maxSize image.Point) ([]image.Rectangle, error) {
	rects, err := t.detector.Detect(frame, region, minSize, maxSize)
	if err != nil {
		return nil, errors.Wrap(err, "face detection failed")
	}
	faces := make([]image.Rectangle, 0, len(rects))
	for _, r := range rects {
		r = r.Add(region.Min).Intersect(frame.Bounds())
		if r.Empty() {
			continue
		}
		faces = append(faces, r)
	}
	return faces, nil
}

// updateFace derives the template, the search region and the position from face.
func (t *Tracker) updateFace(frame *image.Gray, face image.Rectangle) {
	t.trackedFace = face
	t.template = CropGray(frame, FaceTemplateRect(face))
	t.faceROI = DoubleRectSize(face, frame.Bounds())
	t.position = CenterOf(face)
}

func (t *Tracker) forceReset(reason string, fields ...zap.Field) {
	t.logger.Debug("forcing reset: "+reason, fields...)
	t.setState(Searching)
	t.clearTracking()
}

func (t *Tracker) setState(s State) {
	if t.state != s {
		t.logger.Info("tracker state changed",
			zap.Stringer("from", t.state),
			zap.Stringer("to", s),
		)
	}
	t.state = s
}

func (t *Tracker) clearTracking() {
	t.state = Searching
	t.trackedFace = image.Rectangle{}
	t.faceROI = image.Rectangle{}
	t.template = nil
	t.position = image.Point{}
	t.prevPosition = image.Point{}
	t.hasPrev = false
	t.dwellStart = time.Time{}
	t.fallbackStart = time.Time{}
}

// now reads the clock and makes sure time does not go backwards.
func (t *Tracker) now() (time.Time, error) {
	now := t.clock.Now()
	if now.IsZero() {
		return time.Time{}, errors.Wrap(ErrClockUnavailable, "clock returned the zero time")
	}
	if now.Before(t.lastTick) {
		return time.Time{}, errors.Wrapf(ErrClockUnavailable, "clock went backwards from %v to %v", t.lastTick, now)
	}
	t.lastTick = now
	return now, nil
}

// Reset drops the tracked face. The tracker behaves like a newly constructed one afterwards.
func (t *Tracker) Reset() {
	t.clearTracking()
	t.scale = 0
	t.origin = image.Point{}
	t.lastTick = time.Time{}
}

// IsFaceFound reports whether a face is confirmed.
func (t *Tracker) IsFaceFound() bool {
	return t.state != Searching
}

// State returns the current phase of the state machine.
func (t *Tracker) State() State {
	return t.state
}

// Scale returns the working to original resolution ratio of the last processed frame.
func (t *Tracker) Scale() float64 {
	return t.scale
}

// Face returns the confirmed face rectangle in the coordinates of the last
// processed frame, its bounds origin included. The rectangle is empty when no
// face is confirmed.
func (t *Tracker) Face() image.Rectangle {
	if !t.IsFaceFound() {
		return image.Rectangle{}
	}
	return ScaleRect(t.trackedFace, t.scale).Add(t.origin)
}

// Position returns the center of the confirmed face in the coordinates of the
// last processed frame, or NotFound.
func (t *Tracker) Position() image.Point {
	if !t.IsFaceFound() {
		return NotFound
	}
	return ScalePoint(t.position, t.scale).Add(t.origin)
}

// SetResizedWidth sets the working frame width. Values below 1 are raised to 1.
func (t *Tracker) SetResizedWidth(width int) {
	t.resizedWidth = utils.Max(width, 1)
}

// ResizedWidth returns the working frame width.
func (t *Tracker) ResizedWidth() int {
	return t.resizedWidth
}

// SetFallbackTimeout sets the maximum template matching duration.
func (t *Tracker) SetFallbackTimeout(d time.Duration) {
	t.fallbackTimeout = utils.Max(d, 0)
}

// FallbackTimeout returns the maximum template matching duration.
func (t *Tracker) FallbackTimeout() time.Duration {
	return t.fallbackTimeout
}

// SetDwellTime sets the time a candidate has to stay stable before being confirmed.
func (t *Tracker) SetDwellTime(d time.Duration) {
	t.dwellTime = utils.Max(d, 0)
}

// DwellTime returns the candidate confirmation delay.
func (t *Tracker) DwellTime() time.Duration {
	return t.dwellTime
}
