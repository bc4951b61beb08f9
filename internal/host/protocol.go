// Package host delivers normalized key events to the host event consumer
// and routes its asynchronous acknowledgments back to the engine.
//
// Two dispatchers are provided: a writer-backed one that emits events as
// JSON lines and self-acknowledges (for replay and piping into tools),
// and a stream dispatcher speaking a small framed binary protocol over a
// byte stream, with acknowledgment messages flowing back on the same
// connection.
package host

import (
	"encoding/binary"
	"fmt"
	"io"

	"keybridge/internal/engine"
)

// Protocol constants.
const (
	// ProtocolMagic identifies keybridge frames ("KBIP").
	ProtocolMagic = 0x4b424950

	// ProtocolVersion is the current wire protocol version.
	ProtocolVersion = 1
)

// MessageType identifies the type of a frame.
type MessageType uint16

const (
	// MsgEvent carries a key event from engine to host.
	MsgEvent MessageType = 0x0001
	// MsgAck carries a host acknowledgment back to the engine.
	MsgAck MessageType = 0x0002
)

// HeaderSize is the size of the frame header in bytes.
const HeaderSize = 12

// Header is the fixed-size frame header.
type Header struct {
	Magic   uint32
	Version uint8
	Flags   uint8
	Type    MessageType
	Length  uint32
}

// Write writes the header to a writer.
func (h *Header) Write(w io.Writer) error {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.BigEndian.PutUint16(buf[6:8], uint16(h.Type))
	binary.BigEndian.PutUint32(buf[8:12], h.Length)
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads and validates a frame header.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	h := &Header{
		Magic:   binary.BigEndian.Uint32(buf[0:4]),
		Version: buf[4],
		Flags:   buf[5],
		Type:    MessageType(binary.BigEndian.Uint16(buf[6:8])),
		Length:  binary.BigEndian.Uint32(buf[8:12]),
	}

	if h.Magic != ProtocolMagic {
		return nil, fmt.Errorf("invalid magic number: %x", h.Magic)
	}
	if h.Version > ProtocolVersion {
		return nil, fmt.Errorf("unsupported protocol version: %d", h.Version)
	}
	return h, nil
}

// eventPayloadSize is the fixed size of an encoded event payload: a size
// marker, the timestamp, type and synthesized bytes, the two identifiers,
// the response token, and the NUL-terminated character field.
const eventPayloadSize = 4 + 8 + 1 + 1 + 8 + 8 + 8 + engine.MaxCharacterBytes

// EncodeEvent encodes an event and its response token into a payload.
// The character field is NUL-terminated and truncation is impossible:
// UTF-8 needs at most four bytes for any code point.
func EncodeEvent(ev engine.Event, token engine.ResponseToken) []byte {
	buf := make([]byte, eventPayloadSize)
	binary.BigEndian.PutUint32(buf[0:4], eventPayloadSize)
	binary.BigEndian.PutUint64(buf[4:12], uint64(ev.Timestamp))
	buf[12] = byte(ev.Type)
	if ev.Synthesized {
		buf[13] = 1
	}
	binary.BigEndian.PutUint64(buf[14:22], ev.Physical)
	binary.BigEndian.PutUint64(buf[22:30], ev.Logical)
	binary.BigEndian.PutUint64(buf[30:38], uint64(token))
	copy(buf[38:38+engine.MaxCharacterBytes-1], ev.Character)
	return buf
}

// DecodeEvent decodes an event payload.
func DecodeEvent(payload []byte) (engine.Event, engine.ResponseToken, error) {
	if len(payload) != eventPayloadSize {
		return engine.Event{}, 0, fmt.Errorf("event payload size %d, want %d", len(payload), eventPayloadSize)
	}
	if size := binary.BigEndian.Uint32(payload[0:4]); size != eventPayloadSize {
		return engine.Event{}, 0, fmt.Errorf("event size marker %d, want %d", size, eventPayloadSize)
	}

	ev := engine.Event{
		Timestamp:   int64(binary.BigEndian.Uint64(payload[4:12])),
		Type:        engine.EventType(payload[12]),
		Synthesized: payload[13] == 1,
		Physical:    binary.BigEndian.Uint64(payload[14:22]),
		Logical:     binary.BigEndian.Uint64(payload[22:30]),
	}
	token := engine.ResponseToken(binary.BigEndian.Uint64(payload[30:38]))

	character := payload[38:]
	for i, b := range character {
		if b == 0 {
			character = character[:i]
			break
		}
	}
	if len(character) > 0 {
		ev.Character = append([]byte(nil), character...)
	}
	return ev, token, nil
}

// EncodeAck encodes a host acknowledgment payload.
func EncodeAck(token engine.ResponseToken, handled bool) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[0:8], uint64(token))
	if handled {
		buf[8] = 1
	}
	return buf
}

// DecodeAck decodes a host acknowledgment payload.
func DecodeAck(payload []byte) (engine.ResponseToken, bool, error) {
	if len(payload) != 9 {
		return 0, false, fmt.Errorf("ack payload size %d, want 9", len(payload))
	}
	return engine.ResponseToken(binary.BigEndian.Uint64(payload[0:8])), payload[8] == 1, nil
}

// WriteFrame writes one complete frame.
func WriteFrame(w io.Writer, msgType MessageType, payload []byte) error {
	h := Header{
		Magic:   ProtocolMagic,
		Version: ProtocolVersion,
		Type:    msgType,
		Length:  uint32(len(payload)),
	}
	if err := h.Write(w); err != nil {
		return err
	}
	if len(payload) > 0 {
		_, err := w.Write(payload)
		return err
	}
	return nil
}

// maxPayload bounds frame payloads; nothing keybridge sends comes close.
const maxPayload = 1 << 16

// ReadFrame reads one complete frame.
func ReadFrame(r io.Reader) (*Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if h.Length > maxPayload {
		return nil, nil, fmt.Errorf("payload too large: %d bytes", h.Length)
	}
	var payload []byte
	if h.Length > 0 {
		payload = make([]byte, h.Length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, err
		}
	}
	return h, payload, nil
}
