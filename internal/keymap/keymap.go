// Package keymap holds the static lookup tables that give raw platform key
// codes their cross-platform identities.
//
// The tables are plain data, injected into the resolver at construction so
// tests can substitute fixtures. A built-in default covers the standard
// layout; external table files in TOML, JSON, or YAML can replace or extend
// it (JSON files are checked against an embedded schema before use).
package keymap

import "keybridge/internal/keycode"

// Keymap bundles the three lookup tables consumed by keycode.Resolver.
type Keymap struct {
	// Physical maps normalized scan codes to physical key ids.
	Physical map[uint16]uint64

	// Logical maps virtual key codes to logical key ids.
	Logical map[int]uint64

	// ScanLogical maps normalized scan codes to logical key ids for keys
	// whose virtual codes are zero or ambiguous, such as the numeric
	// keypad. Consulted before Logical.
	ScanLogical map[uint16]uint64
}

// Resolver builds a key identity resolver over these tables.
func (m *Keymap) Resolver() *keycode.Resolver {
	return keycode.NewResolver(m.Physical, m.Logical, m.ScanLogical)
}

// Merge overlays other onto m, with entries in other winning. Used when an
// external table file supplements the built-in default.
func (m *Keymap) Merge(other *Keymap) {
	for k, v := range other.Physical {
		m.Physical[k] = v
	}
	for k, v := range other.Logical {
		m.Logical[k] = v
	}
	for k, v := range other.ScanLogical {
		m.ScanLogical[k] = v
	}
}

// Clone returns a deep copy of the keymap.
func (m *Keymap) Clone() *Keymap {
	c := &Keymap{
		Physical:    make(map[uint16]uint64, len(m.Physical)),
		Logical:     make(map[int]uint64, len(m.Logical)),
		ScanLogical: make(map[uint16]uint64, len(m.ScanLogical)),
	}
	for k, v := range m.Physical {
		c.Physical[k] = v
	}
	for k, v := range m.Logical {
		c.Logical[k] = v
	}
	for k, v := range m.ScanLogical {
		c.ScanLogical[k] = v
	}
	return c
}
