package host

import (
	"encoding/json"
	"io"
	"sync"

	"keybridge/internal/engine"
	"keybridge/internal/logging"
)

// Acknowledger receives host verdicts for dispatched events. Satisfied by
// *engine.Engine.
type Acknowledger interface {
	Resolve(token engine.ResponseToken, handled bool)
}

// wireEvent is the JSON shape of an event emitted by WriterDispatcher.
type wireEvent struct {
	Timestamp   int64  `json:"timestamp_us"`
	Type        string `json:"type"`
	Physical    uint64 `json:"physical"`
	Logical     uint64 `json:"logical"`
	Character   string `json:"character,omitempty"`
	Synthesized bool   `json:"synthesized,omitempty"`
	Token       uint64 `json:"token,omitempty"`
}

// WriterDispatcher emits events as JSON lines and acknowledges every
// tracked event immediately as handled. It stands in for a host that
// consumes everything, which is what replay runs and pipelines want.
type WriterDispatcher struct {
	mu  sync.Mutex
	w   io.Writer
	ack Acknowledger
	log *logging.Logger
}

// NewWriterDispatcher creates a WriterDispatcher writing to w.
func NewWriterDispatcher(w io.Writer) *WriterDispatcher {
	return &WriterDispatcher{
		w:   w,
		log: logging.Default().WithComponent("host"),
	}
}

// SetAcknowledger wires the engine the dispatcher acknowledges into.
// Must be called before the first tracked dispatch.
func (d *WriterDispatcher) SetAcknowledger(ack Acknowledger) {
	d.mu.Lock()
	d.ack = ack
	d.mu.Unlock()
}

// Dispatch implements engine.Dispatcher.
func (d *WriterDispatcher) Dispatch(ev engine.Event, token engine.ResponseToken) {
	d.mu.Lock()
	we := wireEvent{
		Timestamp:   ev.Timestamp,
		Type:        ev.Type.String(),
		Physical:    ev.Physical,
		Logical:     ev.Logical,
		Character:   string(ev.Character),
		Synthesized: ev.Synthesized,
		Token:       uint64(token),
	}
	if err := json.NewEncoder(d.w).Encode(we); err != nil {
		d.log.Error("write event", "error", err)
	}
	ack := d.ack
	d.mu.Unlock()

	if token != 0 && ack != nil {
		ack.Resolve(token, true)
	}
}
