//go:build !darwin && !linux && !windows

package window

import (
	"context"
	"errors"
	"runtime"
)

type stubBackend struct{}

func newBackend(run runner) backend {
	return &stubBackend{}
}

func (s *stubBackend) activeWindow(ctx context.Context) (Info, error) {
	return Info{}, errors.New("active window lookup not supported on " + runtime.GOOS)
}
