//go:build windows

package keystate

import "golang.org/x/sys/windows"

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procGetKeyState = user32.NewProc("GetKeyState")
)

// windowsProvider queries user32 GetKeyState. The returned SHORT carries
// the pressed bit in 0x8000 and the toggled bit in 0x0001; both collapse
// into the single-byte mask the engine consumes.
type windowsProvider struct{}

func systemProvider() Provider {
	return windowsProvider{}
}

func (windowsProvider) KeyState(virtualKey int) byte {
	r, _, _ := procGetKeyState.Call(uintptr(virtualKey))
	state := int16(r)

	var mask byte
	if state&0x0001 != 0 {
		mask |= MaskToggled
	}
	if uint16(state)&0x8000 != 0 {
		mask |= MaskPressed
	}
	return mask
}
