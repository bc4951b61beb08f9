package keycode

// Resolver maps raw platform key codes to stable identifiers using
// immutable lookup tables supplied at construction. Resolution never
// fails: codes missing from the tables fall back to synthesized
// identifiers in a well-known plane.
type Resolver struct {
	physical    map[uint16]uint64
	logical     map[int]uint64
	scanLogical map[uint16]uint64
}

// NewResolver builds a Resolver over the given tables. The maps are
// retained, not copied; callers must not mutate them afterwards.
//
//   - physical: normalized scan code -> physical id
//   - logical: virtual key code -> logical id
//   - scanLogical: normalized scan code -> logical id, consulted before the
//     virtual key table for keys whose virtual codes are zero or ambiguous
//     (the numeric keypad shares virtual codes with the navigation block).
func NewResolver(physical map[uint16]uint64, logical map[int]uint64, scanLogical map[uint16]uint64) *Resolver {
	return &Resolver{
		physical:    physical,
		logical:     logical,
		scanLogical: scanLogical,
	}
}

// Physical resolves a (scan code, extended) pair to a physical key id.
// Unknown scan codes are tagged into the platform plane so that the same
// hardware position still yields the same identifier within a session.
func (r *Resolver) Physical(scanCode int, extended bool) uint64 {
	code := NormalizeScanCode(scanCode, extended)
	if id, ok := r.physical[code]; ok {
		return id
	}
	return TagPlane(uint64(scanCode), PlatformPlane)
}

// Logical resolves a (virtual key, extended, scan code) triple to a logical
// key id.
//
// Order: the IME sentinel short-circuits everything, then the scan-code
// override table, then the virtual key table. Printable codes that miss the
// tables are case-folded into the Unicode plane; everything else is folded
// into the platform plane.
func (r *Resolver) Logical(virtualKey int, extended bool, scanCode int) uint64 {
	if virtualKey == VKProcessKey {
		return VKProcessKey
	}

	if id, ok := r.scanLogical[NormalizeScanCode(scanCode, extended)]; ok {
		return id
	}

	if id, ok := r.logical[virtualKey]; ok {
		return id
	}

	if IsPrintableEascii(virtualKey) {
		return TagPlane(FoldCase(uint64(virtualKey)), UnicodePlane)
	}

	return TagPlane(FoldCase(uint64(virtualKey)), PlatformPlane)
}
