// Package keycode defines the platform-independent key identity model.
//
// Every key is described by two 64-bit identifiers:
//   - a physical id naming the hardware key position, layout-independent,
//     derived from the keyboard scan code;
//   - a logical id naming the meaning of the press, which may depend on
//     layout and shift state, derived from the virtual key code.
//
// Identifiers are partitioned into planes. The low 36 bits carry the value;
// the bits above select the namespace the value was taken from (Unicode code
// points, HID usage codes, or raw platform codes that had no table entry).
package keycode

// Identifier planes. An id is (value & ValueMask) | plane.
const (
	// ValueMask selects the value bits of an identifier.
	ValueMask uint64 = 0x000ffffffff

	// UnicodePlane tags identifiers derived from Unicode code points.
	UnicodePlane uint64 = 0x00000000000

	// PlatformPlane tags identifiers synthesized from raw platform codes
	// that have no entry in the static tables.
	PlatformPlane uint64 = 0x01700000000
)

// Windows virtual key codes the engine must recognize by name.
const (
	VKBack      = 0x08
	VKTab       = 0x09
	VKReturn    = 0x0d
	VKCapital   = 0x14
	VKEscape    = 0x1b
	VKSpace     = 0x20
	VKPrior     = 0x21
	VKNext      = 0x22
	VKEnd       = 0x23
	VKHome      = 0x24
	VKLeft      = 0x25
	VKUp        = 0x26
	VKRight     = 0x27
	VKDown      = 0x28
	VKInsert    = 0x2d
	VKDelete    = 0x2e
	VKLWin      = 0x5b
	VKRWin      = 0x5c
	VKNumLock   = 0x90
	VKScroll    = 0x91
	VKLShift    = 0xa0
	VKRShift    = 0xa1
	VKLControl  = 0xa2
	VKRControl  = 0xa3
	VKLMenu     = 0xa4
	VKRMenu     = 0xa5
	VKF1        = 0x70
	VKF12       = 0x7b

	// VKProcessKey reports a key press that has been claimed by an input
	// method. It doubles as the reserved IME sentinel logical id: events
	// resolving to it never reach the host.
	VKProcessKey = 0xe5
)

// Logical ids for keys that are not simple printable characters. Values
// follow the cross-platform key id convention shared with the default
// tables in package keymap.
const (
	LogicalBackspace    uint64 = 0x100000008
	LogicalTab          uint64 = 0x100000009
	LogicalEnter        uint64 = 0x10000000d
	LogicalEscape       uint64 = 0x10000001b
	LogicalDelete       uint64 = 0x10000007f
	LogicalCapsLock     uint64 = 0x100000104
	LogicalNumLock      uint64 = 0x10000010a
	LogicalScrollLock   uint64 = 0x10000010c
	LogicalArrowDown    uint64 = 0x100000301
	LogicalArrowLeft    uint64 = 0x100000302
	LogicalArrowRight   uint64 = 0x100000303
	LogicalArrowUp      uint64 = 0x100000304
	LogicalEnd          uint64 = 0x100000305
	LogicalHome         uint64 = 0x100000306
	LogicalPageDown     uint64 = 0x100000307
	LogicalPageUp       uint64 = 0x100000308
	LogicalInsert       uint64 = 0x100000407
	LogicalControlLeft  uint64 = 0x200000100
	LogicalControlRight uint64 = 0x200000101
	LogicalShiftLeft    uint64 = 0x200000102
	LogicalShiftRight   uint64 = 0x200000103
	LogicalAltLeft      uint64 = 0x200000104
	LogicalAltRight     uint64 = 0x200000105
	LogicalMetaLeft     uint64 = 0x200000106
	LogicalMetaRight    uint64 = 0x200000107
)

// Physical ids for the critical keys, HID usage page 0x07.
const (
	PhysicalCapsLock     uint64 = 0x00070039
	PhysicalScrollLock   uint64 = 0x00070047
	PhysicalNumLock      uint64 = 0x00070053
	PhysicalControlLeft  uint64 = 0x000700e0
	PhysicalShiftLeft    uint64 = 0x000700e1
	PhysicalControlRight uint64 = 0x000700e4
	PhysicalShiftRight   uint64 = 0x000700e5
)

// NormalizeScanCode folds a raw (scan code, extended flag) pair into the
// single code used as a table key: the low byte of the scan code with
// 0xe000 set when the extended flag is on, so PageUp arrives as 0xe049.
func NormalizeScanCode(scanCode int, extended bool) uint16 {
	code := uint16(scanCode & 0xff)
	if extended {
		code |= 0xe000
	}
	return code
}

// TagPlane places a value into an identifier plane.
func TagPlane(value, plane uint64) uint64 {
	return (value & ValueMask) | plane
}

// IsPrintableEascii reports whether a code unit is printable in ASCII or the
// Latin-1 supplement.
func IsPrintableEascii(codeUnit int) bool {
	return (codeUnit >= 0x20 && codeUnit <= 0x7f) ||
		(codeUnit >= 0x80 && codeUnit <= 0xff)
}

// FoldCase maps upper-case letters to lower case in the ASCII and Latin-1
// supplement ranges and returns every other value unchanged. Independent of
// locale: logical ids must not vary with the user's language settings.
func FoldCase(n uint64) uint64 {
	const (
		upperA      = 0x41
		upperZ      = 0x5a
		lowerA      = 0x61
		upperAGrave = 0xc0
		upperThorn  = 0xde
		lowerAGrave = 0xe0
	)
	if n >= upperA && n <= upperZ {
		return n - upperA + lowerA
	}
	if n >= upperAGrave && n <= upperThorn {
		return n - upperAGrave + lowerAGrave
	}
	return n
}
