//go:build linux

package screen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
)

type linuxBackend struct{}

func (l *linuxBackend) captureRaw(ctx context.Context, path string, region *Region) error {
	// Prefer scrot (supports region capture), fall back to gnome-screenshot.
	var cmd *exec.Cmd
	switch {
	case commandExists("scrot"):
		args := []string{"-o"}
		if region != nil {
			args = append(args, "-a", fmt.Sprintf("%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height))
		}
		args = append(args, path)
		cmd = exec.CommandContext(ctx, "scrot", args...)
	case commandExists("gnome-screenshot"):
		if region != nil {
			return apperrors.New(apperrors.CodeCaptureUnavailable,
				"region capture requires scrot (install scrot)")
		}
		cmd = exec.CommandContext(ctx, "gnome-screenshot", "-f", path)
	default:
		return apperrors.New(apperrors.CodeCaptureUnavailable,
			"no screenshot tool found (install scrot or gnome-screenshot)")
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeCaptureUnavailable,
			"screenshot failed: %s", stderr.String())
	}
	return nil
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&linuxBackend{})
}
