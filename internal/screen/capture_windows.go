//go:build windows

package screen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
)

type windowsBackend struct{}

// psScript captures the virtual screen (or a region) via System.Drawing.
const psScript = `Add-Type -AssemblyName System.Drawing
Add-Type -AssemblyName System.Windows.Forms
$b = New-Object System.Drawing.Bitmap %d, %d
$g = [System.Drawing.Graphics]::FromImage($b)
$g.CopyFromScreen(%d, %d, 0, 0, $b.Size)
$b.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)
$g.Dispose()
$b.Dispose()`

const psFullScript = `Add-Type -AssemblyName System.Drawing
Add-Type -AssemblyName System.Windows.Forms
$bounds = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds
$b = New-Object System.Drawing.Bitmap $bounds.Width, $bounds.Height
$g = [System.Drawing.Graphics]::FromImage($b)
$g.CopyFromScreen($bounds.X, $bounds.Y, 0, 0, $b.Size)
$b.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)
$g.Dispose()
$b.Dispose()`

func (w *windowsBackend) captureRaw(ctx context.Context, path string, region *Region) error {
	var script string
	if region != nil {
		script = fmt.Sprintf(psScript, region.Width, region.Height, region.X, region.Y, path)
	} else {
		script = fmt.Sprintf(psFullScript, path)
	}

	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeCaptureUnavailable,
			"powershell capture failed: %s", stderr.String())
	}
	return nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&windowsBackend{})
}
