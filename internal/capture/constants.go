// Package capture runs the continuous screen capture/OCR pipeline.
package capture

import "time"

// Capture pipeline constants
const (
	// SourceScreen tags transcript entries produced by the loop.
	SourceScreen = "screen"

	// Defaults applied when Options fields are zero.
	DefaultInterval          = 750 * time.Millisecond
	DefaultExtractTimeout    = 10 * time.Second
	DefaultDegradedThreshold = 5
	DefaultMaxHashDistance   = 3

	// Stored error strings are truncated for status reporting.
	maxErrorLen = 200
)
