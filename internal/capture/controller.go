package capture

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Nimavk1313/Personal-Assistant/internal/screen"
	"github.com/Nimavk1313/Personal-Assistant/internal/transcript"
)

// Source produces frames on demand.
type Source interface {
	Capture(ctx context.Context, region *screen.Region) (*screen.Frame, error)
}

// Extractor converts frames to text.
type Extractor interface {
	Available() bool
	Extract(ctx context.Context, frame *screen.Frame) (string, error)
}

// Options configure a Controller.
type Options struct {
	Source    Source
	Extractor Extractor
	Store     *transcript.Store

	Interval          time.Duration
	ExtractTimeout    time.Duration
	DegradedThreshold int
	// MaxHashDistance is the perceptual-hash Hamming distance under which
	// a frame is considered unchanged and OCR is skipped. Negative
	// disables frame hashing.
	MaxHashDistance int

	// Clock and Sleep are injectable for deterministic tests.
	Clock func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Controller owns the capture loop lifecycle: idempotent start/stop,
// generation-counted background runs, and status reporting. A stopped
// generation's in-flight results are discarded, never appended.
type Controller struct {
	source    Source
	extractor Extractor
	store     *transcript.Store

	defaultInterval   time.Duration
	extractTimeout    time.Duration
	degradedThreshold int
	maxHashDistance   int

	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	// toggleMu serializes Toggle so two near-simultaneous callers (API
	// handler and hotkey) act as one user action.
	toggleMu sync.Mutex

	mu          sync.Mutex
	running     bool
	generation  uint64
	interval    time.Duration
	frames      uint64
	ocrEvents   uint64
	consecFails int
	lastErr     string

	active atomic.Int32 // live loop goroutines
}

// Status is a point-in-time view of the controller.
type Status struct {
	Running   bool          `json:"running"`
	Interval  time.Duration `json:"-"`
	Entries   int           `json:"entries_count"`
	Frames    uint64        `json:"frames_processed"`
	OCREvents uint64        `json:"ocr_events"`
	OCRReady  bool          `json:"ocr_ready"`
	Degraded  bool          `json:"degraded"`
	LastError string        `json:"last_error,omitempty"`
}

// OnceResult is the outcome of a single on-demand capture.
type OnceResult struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewController creates a controller in the Stopped state.
func NewController(opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = DefaultExtractTimeout
	}
	if opts.DegradedThreshold <= 0 {
		opts.DegradedThreshold = DefaultDegradedThreshold
	}
	if opts.MaxHashDistance == 0 {
		opts.MaxHashDistance = DefaultMaxHashDistance
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = defaultSleep
	}
	return &Controller{
		source:            opts.Source,
		extractor:         opts.Extractor,
		store:             opts.Store,
		defaultInterval:   opts.Interval,
		extractTimeout:    opts.ExtractTimeout,
		degradedThreshold: opts.DegradedThreshold,
		maxHashDistance:   opts.MaxHashDistance,
		clock:             opts.Clock,
		sleep:             opts.Sleep,
		interval:          opts.Interval,
	}
}

// Start transitions to Running. A no-op when already running. Zero
// interval uses the configured default.
func (c *Controller) Start(interval time.Duration) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked(interval)
	return c.statusLocked()
}

// Stop transitions to Stopped. A no-op when already stopped. The loop
// goroutine observes the change at its next scheduling point; in-flight
// capture/extract calls finish and their results are discarded.
func (c *Controller) Stop() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return c.statusLocked()
}

// Toggle flips the running state inside a single critical section. A call
// arriving while another toggle is in flight does not flip again: it waits
// and reports the state the first caller produced, so a double-fired
// trigger performs exactly one transition.
func (c *Controller) Toggle() Status {
	if c.toggleMu.TryLock() {
		defer c.toggleMu.Unlock()
		return c.toggleLocked()
	}
	c.toggleMu.Lock()
	defer c.toggleMu.Unlock()
	return c.Status()
}

// toggleLocked performs the flip. Caller holds toggleMu.
func (c *Controller) toggleLocked() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.stopLocked()
	} else {
		c.startLocked(0)
	}
	return c.statusLocked()
}

func (c *Controller) startLocked(interval time.Duration) {
	if c.running {
		return
	}
	if interval <= 0 {
		interval = c.defaultInterval
	}
	c.generation++
	c.interval = interval
	c.running = true
	c.consecFails = 0
	c.lastErr = ""
	go c.run(c.generation, interval)
}

func (c *Controller) stopLocked() {
	c.running = false
}

// Status returns the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{
		Running:   c.running,
		Interval:  c.interval,
		Entries:   c.store.Len(),
		Frames:    c.frames,
		OCREvents: c.ocrEvents,
		OCRReady:  c.extractor.Available(),
		Degraded:  c.running && c.consecFails >= c.degradedThreshold,
		LastError: c.lastErr,
	}
}

// Running reports whether the loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// ActiveLoops returns the number of live loop goroutines.
func (c *Controller) ActiveLoops() int {
	return int(c.active.Load())
}

// Store exposes the transcript buffer for readers.
func (c *Controller) Store() *transcript.Store {
	return c.store
}

// CaptureOnce performs a synchronous single capture bypassing the loop.
// Failures propagate to the caller; the transcript is not touched.
func (c *Controller) CaptureOnce(ctx context.Context, region *screen.Region) (OnceResult, error) {
	frame, err := c.source.Capture(ctx, region)
	if err != nil {
		return OnceResult{}, err
	}

	ectx, cancel := context.WithTimeout(ctx, c.extractTimeout)
	defer cancel()
	text, err := c.extractor.Extract(ectx, frame)
	if err != nil {
		return OnceResult{}, err
	}
	return OnceResult{Text: text, Timestamp: frame.CapturedAt}, nil
}

// isCurrent reports whether generation gen is still the active run.
func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.generation == gen
}

func (c *Controller) recordFailure(err error) {
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	c.mu.Lock()
	c.consecFails++
	c.lastErr = msg
	c.mu.Unlock()
}

func (c *Controller) clearFailures() {
	c.mu.Lock()
	c.consecFails = 0
	c.mu.Unlock()
}
