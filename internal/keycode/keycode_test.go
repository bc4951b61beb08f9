package keycode

import "testing"

func TestNormalizeScanCode(t *testing.T) {
	tests := []struct {
		name     string
		scan     int
		extended bool
		want     uint16
	}{
		{"plain key", 0x1e, false, 0x001e},
		{"extended key", 0x49, true, 0xe049},
		{"high bits discarded", 0x021e, false, 0x001e},
		{"extended high bits discarded", 0xe049, true, 0xe049},
		{"zero", 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScanCode(tt.scan, tt.extended); got != tt.want {
				t.Errorf("NormalizeScanCode(%#x, %v) = %#x, want %#x",
					tt.scan, tt.extended, got, tt.want)
			}
		})
	}
}

func TestTagPlane(t *testing.T) {
	if got := TagPlane(0x61, UnicodePlane); got != 0x61 {
		t.Errorf("unicode plane: got %#x, want 0x61", got)
	}
	if got := TagPlane(0x1e, PlatformPlane); got != 0x01700000000|0x1e {
		t.Errorf("platform plane: got %#x", got)
	}
	// Values wider than the value mask are truncated, never allowed to
	// corrupt the plane bits.
	if got := TagPlane(0xffffffffffff, PlatformPlane); got != PlatformPlane|ValueMask {
		t.Errorf("oversized value: got %#x", got)
	}
}

func TestFoldCase(t *testing.T) {
	tests := []struct {
		in, want uint64
	}{
		{'A', 'a'},
		{'Z', 'z'},
		{'a', 'a'},
		{'0', '0'},
		{0xc0, 0xe0}, // À -> à
		{0xde, 0xfe}, // Þ -> þ
		{0xdf, 0xdf}, // ß has no upper-case form here
		{0x100, 0x100},
	}

	for _, tt := range tests {
		if got := FoldCase(tt.in); got != tt.want {
			t.Errorf("FoldCase(%#x) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestIsPrintableEascii(t *testing.T) {
	printable := []int{0x20, 0x41, 0x7f, 0x80, 0xff}
	for _, c := range printable {
		if !IsPrintableEascii(c) {
			t.Errorf("IsPrintableEascii(%#x) = false, want true", c)
		}
	}
	for _, c := range []int{0x00, 0x1f, 0x100, -1} {
		if IsPrintableEascii(c) {
			t.Errorf("IsPrintableEascii(%#x) = true, want false", c)
		}
	}
}
