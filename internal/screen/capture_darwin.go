//go:build darwin

package screen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
)

type darwinBackend struct{}

func (d *darwinBackend) captureRaw(ctx context.Context, path string, region *Region) error {
	// -x: no sound, -t png: PNG format, -m: main display only
	args := []string{"-x", "-t", "png", "-m"}
	if region != nil {
		args = append(args, fmt.Sprintf("-R%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height))
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, "screencapture", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeCaptureUnavailable,
			"screencapture failed: %s", stderr.String())
	}
	return nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&darwinBackend{})
}
