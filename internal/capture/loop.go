package capture

import (
	"bytes"
	"context"
	"image"
	_ "image/png" // PNG decoder
	"log/slog"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
)

// run is the loop body for one generation. It exits when the controller
// is stopped or a newer generation supersedes it.
func (c *Controller) run(gen uint64, interval time.Duration) {
	c.active.Add(1)
	defer c.active.Add(-1)

	ctx := context.Background()
	slog.Debug("capture loop started", "generation", gen, "interval", interval)

	var lastHash *goimagehash.ImageHash
	next := c.clock().Add(interval)
	for {
		if err := c.sleep(ctx, next.Sub(c.clock())); err != nil {
			return
		}

		// Drift-free schedule: next tick derives from the previous
		// scheduled tick. An overrunning iteration skips missed ticks
		// instead of queueing them.
		now := c.clock()
		next = next.Add(interval)
		for !next.After(now) {
			next = next.Add(interval)
		}

		if !c.isCurrent(gen) {
			slog.Debug("capture loop exiting", "generation", gen)
			return
		}
		lastHash = c.iterate(ctx, gen, lastHash)
	}
}

// iterate performs one capture->extract->append pass. Failures are
// recorded and isolated to the iteration; only Stop ends the loop.
func (c *Controller) iterate(ctx context.Context, gen uint64, lastHash *goimagehash.ImageHash) *goimagehash.ImageHash {
	frame, err := c.source.Capture(ctx, nil)
	if err != nil {
		slog.Debug("frame capture error", "error", err)
		c.recordFailure(err)
		return lastHash
	}

	c.mu.Lock()
	c.frames++
	c.mu.Unlock()

	// Skip OCR when the frame is perceptually unchanged.
	if hash := c.perceptionHash(frame.PNG); hash != nil {
		if lastHash != nil {
			if dist, err := lastHash.Distance(hash); err == nil && dist <= c.maxHashDistance {
				c.clearFailures()
				return lastHash
			}
		}
		lastHash = hash
	}

	ectx, cancel := context.WithTimeout(ctx, c.extractTimeout)
	text, err := c.extractor.Extract(ectx, frame)
	cancel()
	if err != nil {
		slog.Debug("ocr error", "error", err)
		c.recordFailure(err)
		return lastHash
	}
	c.clearFailures()

	text = strings.TrimSpace(text)
	if text == "" {
		return lastHash
	}

	// A stop or restart during capture/extract supersedes this result.
	if !c.isCurrent(gen) {
		return lastHash
	}

	if _, appended := c.store.Append(text, SourceScreen, c.clock()); appended {
		c.mu.Lock()
		c.ocrEvents++
		c.mu.Unlock()
	}
	return lastHash
}

// perceptionHash computes a pHash, nil when the frame cannot be decoded
// or hashing is disabled.
func (c *Controller) perceptionHash(png []byte) *goimagehash.ImageHash {
	if c.maxHashDistance < 0 {
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return nil
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil
	}
	return hash
}

// defaultSleep waits d or until ctx is done. Non-positive d returns
// immediately.
func defaultSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
