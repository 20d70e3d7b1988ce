package window

import (
	"context"
	"errors"
	"testing"
)

type fakeBackend struct {
	info Info
	err  error
}

func (f *fakeBackend) activeWindow(ctx context.Context) (Info, error) {
	return f.info, f.err
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"full", Info{Title: "editor", ProcessName: "code", PID: 42}, "Active window: editor (process: code)"},
		{"title only", Info{Title: "editor"}, "Active window: editor"},
		{"no title", Info{ProcessName: "code"}, ""},
		{"empty", Info{}, ""},
	}

	for _, tt := range tests {
		if got := tt.info.Format(); got != tt.want {
			t.Errorf("%s: Format() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormattedActive(t *testing.T) {
	m := &Manager{backend: &fakeBackend{info: Info{Title: "terminal", ProcessName: "bash"}}}
	if got := m.FormattedActive(context.Background()); got != "Active window: terminal (process: bash)" {
		t.Errorf("FormattedActive() = %q", got)
	}
}

func TestFormattedActiveSwallowsError(t *testing.T) {
	m := &Manager{backend: &fakeBackend{err: errors.New("headless")}}
	if got := m.FormattedActive(context.Background()); got != "" {
		t.Errorf("FormattedActive() = %q, want empty on error", got)
	}
}

func TestActivePropagatesError(t *testing.T) {
	m := &Manager{backend: &fakeBackend{err: errors.New("headless")}}
	if _, err := m.Active(context.Background()); err == nil {
		t.Error("Active() should propagate the lookup error")
	}
}
