// Package server provides the REST and WebSocket API
package server

import "time"

// Server configuration constants
const (
	// Text truncation limit for API responses
	TextPreviewLimit = 500

	// Transcript defaults for GET /api/transcript
	TranscriptWindow   = 15 * time.Second
	TranscriptMaxChars = 1200

	// Per-connection WebSocket rate limiting
	RateLimitMessages = 20          // Max messages per connection per window
	RateLimitWindow   = time.Second // Sliding window duration

	// Bound on request bodies; chat messages are small
	maxBodyBytes = 1 << 20
)
