// Package window reports information about the active desktop window.
// Each platform shells out to its native tooling, so lookups can fail
// on headless machines; callers treat the info as best effort.
package window

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Info describes a desktop window.
type Info struct {
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
	PID         int    `json:"pid,omitempty"`
}

// Format renders the info as a context line for the LLM. Windows
// without a title format as empty.
func (i Info) Format() string {
	if i.Title == "" {
		return ""
	}
	s := "Active window: " + i.Title
	if i.ProcessName != "" {
		s += fmt.Sprintf(" (process: %s)", i.ProcessName)
	}
	return s
}

// runner executes a command and returns its trimmed stdout.
type runner func(ctx context.Context, name string, args ...string) (string, error)

// backend is the platform lookup. Implementations receive a runner so
// tests can fake the underlying tools.
type backend interface {
	activeWindow(ctx context.Context) (Info, error)
}

// Manager answers active window queries.
type Manager struct {
	backend backend
}

// NewManager creates a manager using the platform backend.
func NewManager() *Manager {
	return &Manager{backend: newBackend(runCommand)}
}

// Active returns the currently focused window.
func (m *Manager) Active(ctx context.Context) (Info, error) {
	return m.backend.activeWindow(ctx)
}

// FormattedActive returns the focused window as a context line, or an
// empty string when the lookup fails.
func (m *Manager) FormattedActive(ctx context.Context) string {
	info, err := m.Active(ctx)
	if err != nil {
		return ""
	}
	return info.Format()
}

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(out)), nil
}
