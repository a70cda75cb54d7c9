package facetrack

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultResizedWidth is the working frame width used when none is configured.
	DefaultResizedWidth = 320
	// DefaultFallbackTimeout bounds how long template matching may substitute the detector.
	DefaultFallbackTimeout = 2 * time.Second
	// DefaultDwellTime is how long a candidate has to stay in place before it is confirmed.
	DefaultDwellTime = 1500 * time.Millisecond
)

// Config holds the tracker parameters.
type Config struct {
	// ResizedWidth is the target width of the working frames.
	ResizedWidth int
	// FallbackTimeout is the maximum duration of the template matching fallback
	// before the tracker gives up and searches the whole frame again.
	FallbackTimeout time.Duration
	// DwellTime is the time a candidate face has to remain stable before being reported.
	DwellTime time.Duration
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		ResizedWidth:    DefaultResizedWidth,
		FallbackTimeout: DefaultFallbackTimeout,
		DwellTime:       DefaultDwellTime,
	}
}

// Validate reports the first out of range value.
func (c Config) Validate() error {
	if c.ResizedWidth < 1 {
		return errors.Wrapf(ErrInvalidConfig, "resized width must be positive, got %d", c.ResizedWidth)
	}
	if c.FallbackTimeout < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative fallback timeout %v", c.FallbackTimeout)
	}
	if c.DwellTime < 0 {
		return errors.Wrapf(ErrInvalidConfig, "negative dwell time %v", c.DwellTime)
	}
	return nil
}
