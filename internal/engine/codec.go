package engine

import "unicode/utf8"

// deadKeyMask is the bit platforms use to tag a decoded character as a
// dead key (a key that modifies the next character instead of producing
// one itself).
const deadKeyMask uint32 = 0x80000000

// MaxCharacterBytes is the size of the wire character field, including
// its NUL terminator. A UTF-8 encoded code point never exceeds four
// bytes, so the payload always fits.
const MaxCharacterBytes = 8

// StripDeadKey is the default dead-key resolution: it clears the dead-key
// tag bit so the underlying character reaches the host. Hosts with a real
// composition pipeline install their own resolver instead.
func StripDeadKey(ch rune) rune {
	return rune(uint32(ch) &^ deadKeyMask)
}

// encodeCharacter converts a decoded code point to its short-lived UTF-8
// byte representation. The zero code point encodes to an empty payload.
func encodeCharacter(ch rune) []byte {
	if ch == 0 {
		return nil
	}
	return utf8.AppendRune(make([]byte, 0, utf8.UTFMax), ch)
}
