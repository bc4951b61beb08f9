package engine

import (
	"bytes"
	"testing"
)

// tagDead sets the platform dead-key bit on a character. Built at runtime
// because the tagged value does not fit a rune constant.
func tagDead(r rune) rune {
	v := uint32(r) | 0x80000000
	return rune(v)
}

func TestStripDeadKey(t *testing.T) {
	tests := []struct {
		name string
		in   rune
		want rune
	}{
		{"plain character untouched", '^', '^'},
		{"dead key flag removed", tagDead('^'), '^'},
		{"zero stays zero", 0, 0},
		{"flagged grave accent", tagDead('`'), '`'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripDeadKey(tt.in); got != tt.want {
				t.Errorf("StripDeadKey(%#x) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodeCharacter(t *testing.T) {
	tests := []struct {
		name string
		in   rune
		want []byte
	}{
		{"no character", 0, nil},
		{"ascii", 'A', []byte{0x41}},
		{"latin-1", 'é', []byte{0xc3, 0xa9}},
		{"emoji", 0x1f600, []byte{0xf0, 0x9f, 0x98, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encodeCharacter(tt.in)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("encodeCharacter(%#x) = % x, want % x", tt.in, got, tt.want)
			}
			if len(got) >= MaxCharacterBytes {
				t.Errorf("encoding leaves no room for the wire terminator: %d bytes", len(got))
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{ActionDown, ActionUp, ActionSysDown, ActionSysUp} {
		got, err := ParseAction(a.String())
		if err != nil {
			t.Fatalf("ParseAction(%q) failed: %v", a.String(), err)
		}
		if got != a {
			t.Errorf("ParseAction(%q) = %v, want %v", a.String(), got, a)
		}
	}
	if _, err := ParseAction("bogus"); err == nil {
		t.Error("ParseAction must reject unknown actions")
	}
}
