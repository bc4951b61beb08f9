package host

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"keybridge/internal/engine"
	"keybridge/internal/logging"
)

// ErrClosed is returned after the stream dispatcher has shut down.
var ErrClosed = errors.New("host stream closed")

// StreamDispatcher delivers events over a byte-stream connection using
// the framed protocol and feeds acknowledgment frames from the host back
// into the engine.
//
// Writes happen on the caller's goroutine (the engine's processing pass);
// a single reader goroutine drains acknowledgments. A write failure drops
// the event: dispatched events are not retractable and not retried, and
// the host's acknowledgment simply never arrives for them.
type StreamDispatcher struct {
	writeMu sync.Mutex
	conn    net.Conn
	ack     Acknowledger
	log     *logging.Logger
	closed  atomic.Bool
	started atomic.Bool
	done    chan struct{}
}

// Dial connects to the host event consumer. Typical networks are "unix"
// with a socket path and "tcp" with a host:port.
func Dial(network, address string) (*StreamDispatcher, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("dial host: %w", err)
	}
	return NewStreamDispatcher(conn), nil
}

// NewStreamDispatcher wraps an established connection.
func NewStreamDispatcher(conn net.Conn) *StreamDispatcher {
	return &StreamDispatcher{
		conn: conn,
		log:  logging.Default().WithComponent("host"),
		done: make(chan struct{}),
	}
}

// Start wires the engine and begins draining acknowledgments.
func (d *StreamDispatcher) Start(ack Acknowledger) {
	if d.started.Swap(true) {
		return
	}
	d.ack = ack
	go d.readLoop()
}

// Dispatch implements engine.Dispatcher.
func (d *StreamDispatcher) Dispatch(ev engine.Event, token engine.ResponseToken) {
	if d.closed.Load() {
		return
	}

	d.writeMu.Lock()
	err := WriteFrame(d.conn, MsgEvent, EncodeEvent(ev, token))
	d.writeMu.Unlock()

	if err != nil {
		d.log.Error("write event frame", "error", err, "token", uint64(token))
	}
}

func (d *StreamDispatcher) readLoop() {
	defer close(d.done)

	for {
		h, payload, err := ReadFrame(d.conn)
		if err != nil {
			if !d.closed.Load() {
				d.log.Warn("host connection lost", "error", err)
			}
			return
		}

		switch h.Type {
		case MsgAck:
			token, handled, err := DecodeAck(payload)
			if err != nil {
				d.log.Warn("bad acknowledgment frame", "error", err)
				continue
			}
			if d.ack != nil {
				d.ack.Resolve(token, handled)
			}
		default:
			d.log.Warn("unexpected frame from host", "type", uint16(h.Type))
		}
	}
}

// Close shuts the connection down. Pending acknowledgments that have not
// arrived will never be delivered.
func (d *StreamDispatcher) Close() error {
	if d.closed.Swap(true) {
		return ErrClosed
	}
	err := d.conn.Close()
	if d.started.Load() {
		<-d.done
	}
	return err
}
