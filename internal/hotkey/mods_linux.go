//go:build linux

package hotkey

import "golang.design/x/hotkey"

func toggleMods() []hotkey.Modifier {
	// Mod1 is the X11 name for the Alt modifier.
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}
}
