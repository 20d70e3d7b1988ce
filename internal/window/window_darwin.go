//go:build darwin

package window

import (
	"context"
	"strconv"
	"strings"
)

// frontmostScript reports the frontmost process and its front window
// title as three lines: name, pid, title. The title line can be absent
// for windowless apps.
const frontmostScript = `tell application "System Events"
	set frontApp to first application process whose frontmost is true
	set appName to name of frontApp
	set appPid to unix id of frontApp
	set windowTitle to ""
	try
		set windowTitle to title of front window of frontApp
	end try
	return appName & linefeed & appPid & linefeed & windowTitle
end tell`

type darwinBackend struct {
	run runner
}

func newBackend(run runner) backend {
	return &darwinBackend{run: run}
}

func (d *darwinBackend) activeWindow(ctx context.Context) (Info, error) {
	out, err := d.run(ctx, "osascript", "-e", frontmostScript)
	if err != nil {
		return Info{}, err
	}

	lines := strings.SplitN(out, "\n", 3)
	info := Info{ProcessName: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		info.PID, _ = strconv.Atoi(strings.TrimSpace(lines[1]))
	}
	if len(lines) > 2 {
		info.Title = strings.TrimSpace(lines[2])
	}
	if info.Title == "" {
		info.Title = info.ProcessName
	}
	return info, nil
}
