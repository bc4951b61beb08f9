// Package keystate exposes the true hardware state of individual keys as
// reported by the operating system.
//
// The engine queries this interface during modifier synchronization and
// never caches a result beyond one pass: the whole point is to observe
// state the event stream may have missed (focus loss, multiple keyboards,
// intercepted input).
//
// Platform support:
//   - Windows: user32 GetKeyState
//   - other platforms: a neutral stub; replay and tests use Simulated
package keystate

import "sync"

// State bits returned by Provider.KeyState.
const (
	// MaskToggled is set while a toggle key (caps lock, num lock, scroll
	// lock) is latched on.
	MaskToggled byte = 0x01

	// MaskPressed is set while the key is physically held.
	MaskPressed byte = 0x80
)

// Provider reports the true state of a virtual key.
type Provider interface {
	// KeyState returns the state bitmask for a virtual key code:
	// MaskToggled and MaskPressed as applicable, zero otherwise.
	KeyState(virtualKey int) byte
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(virtualKey int) byte

// KeyState implements Provider.
func (f ProviderFunc) KeyState(virtualKey int) byte { return f(virtualKey) }

// System returns the Provider backed by the operating system.
func System() Provider {
	return systemProvider()
}

// Simulated is a Provider with settable state, used by tests and the
// replay input source.
type Simulated struct {
	mu    sync.RWMutex
	state map[int]byte
}

// NewSimulated creates a Simulated provider with every key released and
// untoggled.
func NewSimulated() *Simulated {
	return &Simulated{state: make(map[int]byte)}
}

// KeyState implements Provider.
func (s *Simulated) KeyState(virtualKey int) byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[virtualKey]
}

// SetPressed sets or clears the pressed bit for a virtual key.
func (s *Simulated) SetPressed(virtualKey int, pressed bool) {
	s.setBit(virtualKey, MaskPressed, pressed)
}

// SetToggled sets or clears the toggled bit for a virtual key.
func (s *Simulated) SetToggled(virtualKey int, toggled bool) {
	s.setBit(virtualKey, MaskToggled, toggled)
}

func (s *Simulated) setBit(virtualKey int, mask byte, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.state[virtualKey] |= mask
	} else {
		s.state[virtualKey] &^= mask
	}
}
