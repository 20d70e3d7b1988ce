// Package screen provides platform-agnostic screen capture.
package screen

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // PNG decoder for frame dimensions
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
)

// Region selects a rectangular area of the display. Nil means the full
// primary display.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Frame is one captured screen image. Transient: owned by the caller and
// discarded after text extraction.
type Frame struct {
	PNG        []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// Capturer produces frames on demand. Implementations must be safe for
// concurrent use so on-demand captures never corrupt the loop's captures.
type Capturer interface {
	Capture(ctx context.Context, region *Region) (*Frame, error)
	Close()
}

// backend implements platform-specific raw capture into a file.
type backend interface {
	// captureRaw writes a PNG screenshot to path, honoring region if the
	// platform tool supports it.
	captureRaw(ctx context.Context, path string, region *Region) error
}

// baseCapturer wraps a backend with temp-file plumbing and PNG decoding.
type baseCapturer struct {
	backend
	tempDir string
	seq     atomic.Uint64
	now     func() time.Time
}

func newBase(b backend) *baseCapturer {
	tmpDir, err := os.MkdirTemp("", "assistant-screen-*")
	if err != nil {
		tmpDir = os.TempDir()
	}
	return &baseCapturer{backend: b, tempDir: tmpDir, now: time.Now}
}

func (c *baseCapturer) Capture(ctx context.Context, region *Region) (*Frame, error) {
	// Unique file per call keeps concurrent captures independent.
	path := filepath.Join(c.tempDir, fmt.Sprintf("shot_%d.png", c.seq.Add(1)))
	defer os.Remove(path)

	if err := c.captureRaw(ctx, path, region); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCaptureUnavailable, "read screenshot")
	}

	frame := &Frame{PNG: data, CapturedAt: c.now()}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		frame.Width = cfg.Width
		frame.Height = cfg.Height
	}
	return frame, nil
}

func (c *baseCapturer) Close() {
	if c.tempDir != "" && c.tempDir != os.TempDir() {
		os.RemoveAll(c.tempDir)
	}
}
