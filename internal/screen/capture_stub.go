//go:build !darwin && !linux && !windows

package screen

import (
	"context"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
)

type stubBackend struct{}

func (s *stubBackend) captureRaw(ctx context.Context, path string, region *Region) error {
	return apperrors.New(apperrors.CodeCaptureUnavailable, "screen capture not supported on this platform")
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&stubBackend{})
}
