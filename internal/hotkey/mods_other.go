//go:build !darwin && !linux

package hotkey

import "golang.design/x/hotkey"

func toggleMods() []hotkey.Modifier {
	return []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModAlt}
}
