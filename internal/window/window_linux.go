//go:build linux

package window

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type linuxBackend struct {
	run runner

	// readComm reads a process name, swapped in tests.
	readComm func(pid int) string
}

func newBackend(run runner) backend {
	return &linuxBackend{run: run, readComm: readProcComm}
}

func (l *linuxBackend) activeWindow(ctx context.Context) (Info, error) {
	id, err := l.run(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return Info{}, fmt.Errorf("no active window: %w", err)
	}

	info := Info{}
	if title, err := l.run(ctx, "xdotool", "getwindowname", id); err == nil {
		info.Title = title
	}
	if pidStr, err := l.run(ctx, "xdotool", "getwindowpid", id); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(pidStr)); err == nil {
			info.PID = pid
			info.ProcessName = l.readComm(pid)
		}
	}
	return info, nil
}

func readProcComm(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
