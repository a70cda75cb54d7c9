//go:build !gocv

package facetrack

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTemplate_MatchOpenCVUnavailable(t *testing.T) {
	_, _, err := MatchOpenCV(noiseFrame(10, 10), noiseFrame(3, 3))
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}
