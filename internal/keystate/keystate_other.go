//go:build !windows

package keystate

// systemProvider has no OS backing outside Windows; every key reads as
// released and untoggled, which disables state divergence detection but
// keeps the engine fully functional for replay and testing.
func systemProvider() Provider {
	return ProviderFunc(func(int) byte { return 0 })
}
