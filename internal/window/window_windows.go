//go:build windows

package window

import (
	"context"
	"strconv"
	"strings"
)

// foregroundScript prints the foreground window as three lines:
// title, pid, process name.
const foregroundScript = `
Add-Type @"
using System;
using System.Runtime.InteropServices;
using System.Text;
public class Win32 {
  [DllImport("user32.dll")] public static extern IntPtr GetForegroundWindow();
  [DllImport("user32.dll")] public static extern int GetWindowText(IntPtr hWnd, StringBuilder text, int count);
  [DllImport("user32.dll")] public static extern uint GetWindowThreadProcessId(IntPtr hWnd, out uint pid);
}
"@
$hwnd = [Win32]::GetForegroundWindow()
$sb = New-Object System.Text.StringBuilder 512
[Win32]::GetWindowText($hwnd, $sb, 512) | Out-Null
$procId = 0
[Win32]::GetWindowThreadProcessId($hwnd, [ref]$procId) | Out-Null
$name = ""
if ($procId -ne 0) {
  $p = Get-Process -Id $procId -ErrorAction SilentlyContinue
  if ($p) { $name = $p.ProcessName }
}
Write-Output $sb.ToString()
Write-Output $procId
Write-Output $name
`

type windowsBackend struct {
	run runner
}

func newBackend(run runner) backend {
	return &windowsBackend{run: run}
}

func (w *windowsBackend) activeWindow(ctx context.Context) (Info, error) {
	out, err := w.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", foregroundScript)
	if err != nil {
		return Info{}, err
	}

	lines := strings.SplitN(out, "\n", 3)
	info := Info{Title: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		info.PID, _ = strconv.Atoi(strings.TrimSpace(lines[1]))
	}
	if len(lines) > 2 {
		info.ProcessName = strings.TrimSpace(lines[2])
	}
	return info, nil
}
