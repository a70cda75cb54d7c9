package facetrack

import "github.com/pkg/errors"

var (
	// ErrInvalidFrame is returned when a nil or empty image is passed to the tracker.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrNoDetector is returned when a tracker is constructed without a detector.
	ErrNoDetector = errors.New("no face detector provided")

	// ErrInvalidConfig reports an out of range configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClockUnavailable is returned when the time source cannot be trusted.
	// The dwell and fallback timers depend on it, so it is never silently ignored.
	ErrClockUnavailable = errors.New("clock source unavailable")

	// ErrTemplatePrecondition reports a template that is too small or does not fit the search region.
	ErrTemplatePrecondition = errors.New("template precondition violated")

	// ErrBackendUnavailable is returned when a detector backend was not compiled in.
	ErrBackendUnavailable = errors.New("detector backend unavailable")

	// ErrCascade reports a cascade classifier which could not be read or unpacked.
	ErrCascade = errors.New("cascade classifier error")
)
