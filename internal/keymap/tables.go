package keymap

import "keybridge/internal/keycode"

// Default returns the built-in tables for the standard PC layout.
//
// Physical ids are HID usage page 0x07 codes; logical ids follow the
// cross-platform key id convention (see package keycode). Letter, digit,
// and punctuation logical ids are intentionally absent: those virtual key
// codes resolve through the printable fallback in the resolver.
func Default() *Keymap {
	return &Keymap{
		Physical:    defaultPhysical(),
		Logical:     defaultLogical(),
		ScanLogical: defaultScanLogical(),
	}
}

func defaultPhysical() map[uint16]uint64 {
	return map[uint16]uint64{
		// Alphanumeric block, QWERTY rows.
		0x001e: 0x00070004, // KeyA
		0x0030: 0x00070005, // KeyB
		0x002e: 0x00070006, // KeyC
		0x0020: 0x00070007, // KeyD
		0x0012: 0x00070008, // KeyE
		0x0021: 0x00070009, // KeyF
		0x0022: 0x0007000a, // KeyG
		0x0023: 0x0007000b, // KeyH
		0x0017: 0x0007000c, // KeyI
		0x0024: 0x0007000d, // KeyJ
		0x0025: 0x0007000e, // KeyK
		0x0026: 0x0007000f, // KeyL
		0x0032: 0x00070010, // KeyM
		0x0031: 0x00070011, // KeyN
		0x0018: 0x00070012, // KeyO
		0x0019: 0x00070013, // KeyP
		0x0010: 0x00070014, // KeyQ
		0x0013: 0x00070015, // KeyR
		0x001f: 0x00070016, // KeyS
		0x0014: 0x00070017, // KeyT
		0x0016: 0x00070018, // KeyU
		0x002f: 0x00070019, // KeyV
		0x0011: 0x0007001a, // KeyW
		0x002d: 0x0007001b, // KeyX
		0x0015: 0x0007001c, // KeyY
		0x002c: 0x0007001d, // KeyZ

		0x0002: 0x0007001e, // Digit1
		0x0003: 0x0007001f, // Digit2
		0x0004: 0x00070020, // Digit3
		0x0005: 0x00070021, // Digit4
		0x0006: 0x00070022, // Digit5
		0x0007: 0x00070023, // Digit6
		0x0008: 0x00070024, // Digit7
		0x0009: 0x00070025, // Digit8
		0x000a: 0x00070026, // Digit9
		0x000b: 0x00070027, // Digit0

		0x001c: 0x00070028, // Enter
		0x0001: 0x00070029, // Escape
		0x000e: 0x0007002a, // Backspace
		0x000f: 0x0007002b, // Tab
		0x0039: 0x0007002c, // Space
		0x000c: 0x0007002d, // Minus
		0x000d: 0x0007002e, // Equal
		0x001a: 0x0007002f, // BracketLeft
		0x001b: 0x00070030, // BracketRight
		0x002b: 0x00070031, // Backslash
		0x0027: 0x00070033, // Semicolon
		0x0028: 0x00070034, // Quote
		0x0029: 0x00070035, // Backquote
		0x0033: 0x00070036, // Comma
		0x0034: 0x00070037, // Period
		0x0035: 0x00070038, // Slash

		0x003a: 0x00070039, // CapsLock
		0x003b: 0x0007003a, // F1
		0x003c: 0x0007003b, // F2
		0x003d: 0x0007003c, // F3
		0x003e: 0x0007003d, // F4
		0x003f: 0x0007003e, // F5
		0x0040: 0x0007003f, // F6
		0x0041: 0x00070040, // F7
		0x0042: 0x00070041, // F8
		0x0043: 0x00070042, // F9
		0x0044: 0x00070043, // F10
		0x0057: 0x00070044, // F11
		0x0058: 0x00070045, // F12
		0x0046: 0x00070047, // ScrollLock

		// Navigation block (extended scan codes).
		0xe052: 0x00070049, // Insert
		0xe047: 0x0007004a, // Home
		0xe049: 0x0007004b, // PageUp
		0xe053: 0x0007004c, // Delete
		0xe04f: 0x0007004d, // End
		0xe051: 0x0007004e, // PageDown
		0xe04d: 0x0007004f, // ArrowRight
		0xe04b: 0x00070050, // ArrowLeft
		0xe050: 0x00070051, // ArrowDown
		0xe048: 0x00070052, // ArrowUp

		// Numeric keypad.
		0xe045: 0x00070053, // NumLock
		0xe035: 0x00070054, // NumpadDivide
		0x0037: 0x00070055, // NumpadMultiply
		0x004a: 0x00070056, // NumpadSubtract
		0x004e: 0x00070057, // NumpadAdd
		0xe01c: 0x00070058, // NumpadEnter
		0x004f: 0x00070059, // Numpad1
		0x0050: 0x0007005a, // Numpad2
		0x0051: 0x0007005b, // Numpad3
		0x004b: 0x0007005c, // Numpad4
		0x004c: 0x0007005d, // Numpad5
		0x004d: 0x0007005e, // Numpad6
		0x0047: 0x0007005f, // Numpad7
		0x0048: 0x00070060, // Numpad8
		0x0049: 0x00070061, // Numpad9
		0x0052: 0x00070062, // Numpad0
		0x0053: 0x00070063, // NumpadDecimal

		// Modifiers.
		0x001d: keycode.PhysicalControlLeft,
		0x002a: keycode.PhysicalShiftLeft,
		0x0038: 0x000700e2, // AltLeft
		0xe05b: 0x000700e3, // MetaLeft
		0xe01d: keycode.PhysicalControlRight,
		0x0036: keycode.PhysicalShiftRight,
		0xe038: 0x000700e6, // AltRight
		0xe05c: 0x000700e7, // MetaRight
	}
}

func defaultLogical() map[int]uint64 {
	return map[int]uint64{
		keycode.VKBack:     keycode.LogicalBackspace,
		keycode.VKTab:      keycode.LogicalTab,
		keycode.VKReturn:   keycode.LogicalEnter,
		keycode.VKEscape:   keycode.LogicalEscape,
		keycode.VKCapital:  keycode.LogicalCapsLock,
		keycode.VKPrior:    keycode.LogicalPageUp,
		keycode.VKNext:     keycode.LogicalPageDown,
		keycode.VKEnd:      keycode.LogicalEnd,
		keycode.VKHome:     keycode.LogicalHome,
		keycode.VKLeft:     keycode.LogicalArrowLeft,
		keycode.VKUp:       keycode.LogicalArrowUp,
		keycode.VKRight:    keycode.LogicalArrowRight,
		keycode.VKDown:     keycode.LogicalArrowDown,
		keycode.VKInsert:   keycode.LogicalInsert,
		keycode.VKDelete:   keycode.LogicalDelete,
		keycode.VKLWin:     keycode.LogicalMetaLeft,
		keycode.VKRWin:     keycode.LogicalMetaRight,
		keycode.VKNumLock:  keycode.LogicalNumLock,
		keycode.VKScroll:   keycode.LogicalScrollLock,
		keycode.VKLShift:   keycode.LogicalShiftLeft,
		keycode.VKRShift:   keycode.LogicalShiftRight,
		keycode.VKLControl: keycode.LogicalControlLeft,
		keycode.VKRControl: keycode.LogicalControlRight,
		keycode.VKLMenu:    keycode.LogicalAltLeft,
		keycode.VKRMenu:    keycode.LogicalAltRight,

		// Function row: F1..F12 are contiguous in both code spaces.
		0x70: 0x100000801,
		0x71: 0x100000802,
		0x72: 0x100000803,
		0x73: 0x100000804,
		0x74: 0x100000805,
		0x75: 0x100000806,
		0x76: 0x100000807,
		0x77: 0x100000808,
		0x78: 0x100000809,
		0x79: 0x10000080a,
		0x7a: 0x10000080b,
		0x7b: 0x10000080c,
	}
}

// defaultScanLogical resolves the numeric keypad by scan code. With NumLock
// off, Windows reports these keys with navigation virtual codes (Numpad1
// arrives as VK_END), so the virtual key table alone cannot tell the pad
// apart from the navigation block.
func defaultScanLogical() map[uint16]uint64 {
	return map[uint16]uint64{
		0x004f: 0x200000231, // Numpad1
		0x0050: 0x200000232, // Numpad2
		0x0051: 0x200000233, // Numpad3
		0x004b: 0x200000234, // Numpad4
		0x004c: 0x200000235, // Numpad5
		0x004d: 0x200000236, // Numpad6
		0x0047: 0x200000237, // Numpad7
		0x0048: 0x200000238, // Numpad8
		0x0049: 0x200000239, // Numpad9
		0x0052: 0x200000230, // Numpad0
		0x0053: 0x20000022e, // NumpadDecimal
		0x0037: 0x20000022a, // NumpadMultiply
		0x004e: 0x20000022b, // NumpadAdd
		0x004a: 0x20000022d, // NumpadSubtract
		0xe035: 0x20000022f, // NumpadDivide
		0xe01c: 0x20000020d, // NumpadEnter
	}
}
