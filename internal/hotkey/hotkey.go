// Package hotkey registers global keyboard shortcuts for the capture
// lifecycle. Registration is best effort: on headless systems or when
// another process owns a combination, the affected shortcut is logged
// and skipped.
package hotkey

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"
	"golang.design/x/hotkey"

	"github.com/Nimavk1313/Personal-Assistant/internal/capture"
)

const (
	notifyTitle = "Personal Assistant"

	// captureOnceTimeout bounds the capture+OCR of the clipboard shortcut.
	captureOnceTimeout = 15 * time.Second
)

// Daemon listens for global hotkeys:
//
//	Ctrl+Alt+R  toggle live capture
//	Ctrl+Alt+C  single capture, OCR text to clipboard
type Daemon struct {
	controller *capture.Controller

	mu         sync.Mutex
	registered []*hotkey.Hotkey
	stop       chan struct{}

	// notify and copy are swapped in tests.
	notify func(title, message string)
	copy   func(text string) error
}

// NewDaemon creates a daemon bound to the capture controller.
func NewDaemon(controller *capture.Controller) *Daemon {
	return &Daemon{
		controller: controller,
		notify: func(title, message string) {
			if err := beeep.Notify(title, message, ""); err != nil {
				slog.Debug("notification failed", "error", err)
			}
		},
		copy: clipboard.WriteAll,
	}
}

// Start registers the shortcuts and begins listening. It returns the
// number of shortcuts successfully registered.
func (d *Daemon) Start() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return len(d.registered)
	}
	d.stop = make(chan struct{})

	bindings := []struct {
		name string
		keys []hotkey.Modifier
		key  hotkey.Key
		fn   func()
	}{
		{"toggle live capture", toggleMods(), hotkey.KeyR, d.onToggle},
		{"copy screen text", toggleMods(), hotkey.KeyC, d.onCopy},
	}

	for _, b := range bindings {
		hk := hotkey.New(b.keys, b.key)
		if err := hk.Register(); err != nil {
			slog.Warn("hotkey registration failed", "binding", b.name, "error", err)
			continue
		}
		d.registered = append(d.registered, hk)
		go d.listen(hk, b.fn)
		slog.Info("hotkey registered", "binding", b.name)
	}
	return len(d.registered)
}

// Stop unregisters every shortcut and stops the listeners.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop == nil {
		return
	}
	close(d.stop)
	d.stop = nil

	for _, hk := range d.registered {
		if err := hk.Unregister(); err != nil {
			slog.Debug("hotkey unregister failed", "error", err)
		}
	}
	d.registered = nil
}

func (d *Daemon) listen(hk *hotkey.Hotkey, fn func()) {
	d.mu.Lock()
	stop := d.stop
	d.mu.Unlock()

	for {
		select {
		case <-stop:
			return
		case <-hk.Keydown():
			fn()
		}
	}
}

func (d *Daemon) onToggle() {
	status := d.controller.Toggle()
	if status.Running {
		d.notify(notifyTitle, "Live capture on")
	} else {
		d.notify(notifyTitle, "Live capture off")
	}
}

func (d *Daemon) onCopy() {
	ctx, cancel := context.WithTimeout(context.Background(), captureOnceTimeout)
	defer cancel()

	once, err := d.controller.CaptureOnce(ctx, nil)
	if err != nil {
		slog.Warn("hotkey capture failed", "error", err)
		d.notify(notifyTitle, "Screen capture failed")
		return
	}
	if err := d.copy(once.Text); err != nil {
		slog.Warn("clipboard write failed", "error", err)
		return
	}
	d.notify(notifyTitle, "Screen text copied to clipboard")
}
