//go:build darwin

package hotkey

import "golang.design/x/hotkey"

// toggleMods returns the modifier chord. Option stands in for Alt on
// macOS keyboards.
func toggleMods() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption}
}
