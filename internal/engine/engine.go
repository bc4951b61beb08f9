// Package engine translates raw platform keyboard input into the
// normalized key-event model consumed by the host, and keeps the host's
// view of modifier state consistent with the true hardware state.
//
// One Engine processes one raw input at a time: classification, modifier
// synchronization, and dispatch complete before the next input is
// accepted. Dispatch to the host is asynchronous only in that
// acknowledgments arrive later through Resolve; the engine never blocks
// waiting for one, and tables are mutated at dispatch time, never at
// acknowledgment time.
package engine

import (
	"errors"
	"sync"
	"time"

	"keybridge/internal/keycode"
	"keybridge/internal/keystate"
	"keybridge/internal/logging"
	"keybridge/internal/metrics"
)

// Options configures a new Engine.
type Options struct {
	// Resolver maps raw platform codes to key identifiers. Required.
	Resolver *keycode.Resolver

	// State reports true OS key state for modifier synchronization.
	// Required.
	State keystate.Provider

	// Dispatcher delivers events to the host. Required.
	Dispatcher Dispatcher

	// SyncModifiers enables the critical-key synchronization passes.
	// When off, divergence between recorded and true modifier state is
	// left for the host to display incorrectly.
	SyncModifiers bool

	// ResolveDeadKey maps a decoded character through dead-key
	// resolution before encoding. Defaults to StripDeadKey.
	ResolveDeadKey func(rune) rune

	// Clock returns the capture timestamp in microseconds. Defaults to
	// a monotonic clock starting at engine construction.
	Clock func() int64

	// Logger receives engine diagnostics. Defaults to the global logger.
	Logger *logging.Logger

	// Metrics receives engine counters. Optional.
	Metrics *metrics.EngineMetrics
}

// criticalKey tracks one modifier or toggle key whose OS-reported true
// state must stay consistent with the event stream. Identity fields are
// populated lazily on first observation of the key in the input stream;
// physical == 0 means the key has not been seen yet.
type criticalKey struct {
	physical     uint64
	logical      uint64
	toggledOn    bool
	checkPressed bool
	checkToggled bool
}

// Engine is the key-identity resolution and state-synchronization core.
type Engine struct {
	mu sync.Mutex

	resolver       *keycode.Resolver
	state          keystate.Provider
	dispatcher     Dispatcher
	syncModifiers  bool
	resolveDeadKey func(rune) rune
	clock          func() int64
	log            *logging.Logger
	metrics        *metrics.EngineMetrics

	// pressing maps physical key id to the logical id in effect when the
	// key was last pressed. An entry exists iff the key is considered
	// down.
	pressing map[uint64]uint64

	// critical holds the fixed registry of modifier/toggle keys, keyed
	// by virtual key code. criticalOrder fixes iteration order so
	// synthesized events are deterministic.
	critical      map[int]*criticalKey
	criticalOrder []int

	// pending correlates dispatched events with caller callbacks until
	// the host acknowledges. Guarded by its own mutex so Resolve can be
	// called from a dispatch path without deadlocking.
	pendingMu sync.Mutex
	pending   map[ResponseToken]Callback
	lastToken uint64

	// sentAny records whether any event went out while processing the
	// current raw input.
	sentAny bool
}

// New creates an Engine. The critical-key registry is fixed here: left and
// right shift and control are pressed-checked; caps lock, scroll lock, and
// num lock are pressed- and toggle-checked, with their toggle state read
// once from the true OS state.
func New(opts Options) (*Engine, error) {
	if opts.Resolver == nil {
		return nil, errors.New("engine: resolver is required")
	}
	if opts.State == nil {
		return nil, errors.New("engine: key state provider is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("engine: dispatcher is required")
	}

	e := &Engine{
		resolver:       opts.Resolver,
		state:          opts.State,
		dispatcher:     opts.Dispatcher,
		syncModifiers:  opts.SyncModifiers,
		resolveDeadKey: opts.ResolveDeadKey,
		clock:          opts.Clock,
		log:            opts.Logger,
		metrics:        opts.Metrics,
		pressing:       make(map[uint64]uint64),
		critical:       make(map[int]*criticalKey),
		pending:        make(map[ResponseToken]Callback),
		lastToken:      1,
	}

	if e.resolveDeadKey == nil {
		e.resolveDeadKey = StripDeadKey
	}
	if e.clock == nil {
		start := time.Now()
		e.clock = func() int64 { return time.Since(start).Microseconds() }
	}
	if e.log == nil {
		e.log = logging.Default().WithComponent("engine")
	}

	e.initCriticalKeys()
	return e, nil
}

func (e *Engine) initCriticalKeys() {
	keys := []struct {
		virtualKey   int
		checkPressed bool
		checkToggled bool
	}{
		{keycode.VKLShift, true, false},
		{keycode.VKRShift, true, false},
		{keycode.VKLControl, true, false},
		{keycode.VKRControl, true, false},
		{keycode.VKCapital, true, true},
		{keycode.VKScroll, true, true},
		{keycode.VKNumLock, true, true},
	}

	for _, k := range keys {
		ck := &criticalKey{
			checkPressed: k.checkPressed || k.checkToggled,
			checkToggled: k.checkToggled,
		}
		if k.checkToggled {
			ck.toggledOn = e.state.KeyState(k.virtualKey)&keystate.MaskToggled != 0
		}
		e.critical[k.virtualKey] = ck
		e.criticalOrder = append(e.criticalOrder, k.virtualKey)
	}
}

// ProcessKey translates one raw platform key input. The callback receives
// the host's handled verdict exactly once: immediately when the input is
// absorbed, otherwise when the host acknowledges the dispatched event.
//
// If processing dispatches nothing at all, a neutral zero-identifier event
// is sent fire-and-forget so the host's delivery channel observes
// liveness for every raw input.
func (e *Engine) ProcessKey(virtualKey, scanCode int, action Action, character rune, extended, wasDown bool, callback Callback) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sentAny = false
	e.processKey(virtualKey, scanCode, action, character, extended, wasDown, callback)
	if !e.sentAny {
		if e.metrics != nil {
			e.metrics.NeutralTotal.Inc()
		}
		e.send(Event{Timestamp: e.clock(), Type: EventDown}, 0)
	}
	if e.metrics != nil {
		e.metrics.KeysPressed.Set(int64(len(e.pressing)))
	}
}

func (e *Engine) processKey(virtualKey, scanCode int, action Action, character rune, extended, wasDown bool, callback Callback) {
	physical := e.resolver.Physical(scanCode, extended)
	logical := e.resolver.Logical(virtualKey, extended, scanCode)
	lastLogical, hadRecord := e.pressing[physical]

	character = e.resolveDeadKey(character)

	// Classify against the press-state table. resultLogical is the
	// logical id the event carries; eventualRecord is what the table
	// entry must become afterwards (zero removes it).
	var eventType EventType
	var resultLogical, eventualRecord uint64

	if action.IsDown() {
		switch {
		case hadRecord && wasDown:
			// Normal platform auto-repeat. The logical id recorded at
			// the original press stays in effect even if re-resolving
			// now would differ (shift changed under a held key).
			eventType = EventRepeat
			resultLogical = lastLogical
			eventualRecord = lastLogical
		case hadRecord:
			// A second down with no intervening up: the up event was
			// lost to a focus change, or multiple keyboards share this
			// physical key. Absorb it.
			e.absorb("duplicate down", virtualKey, physical, action, callback)
			return
		default:
			eventType = EventDown
			resultLogical = logical
			eventualRecord = logical
		}
	} else {
		if !hadRecord {
			// Release of a key never recorded down; same causes as the
			// duplicate down. Absorb it.
			e.absorb("stale release", virtualKey, physical, action, callback)
			return
		}
		// Up events carry the logical id recorded at press time, and
		// never a character.
		eventType = EventUp
		resultLogical = lastLogical
		eventualRecord = 0
	}

	if resultLogical == keycode.VKProcessKey {
		// The press belongs to an input method. Filtering must test the
		// result logical id: the up event of an IME-absorbed press
		// carries the original pre-IME logical id and must not reach
		// the host as a live key either.
		e.absorb("input method key", virtualKey, physical, action, callback)
		return
	}

	e.updateLastSeenCritical(virtualKey, physical, resultLogical)
	if e.syncModifiers {
		// Toggle sync first: it may itself press keys that the pressed
		// sync would otherwise try to reconcile a second time.
		e.syncToggledStates(virtualKey, eventType == EventDown)
		e.syncPressedStates(virtualKey, eventType != EventRepeat)
	}

	if eventualRecord != 0 {
		e.pressing[physical] = eventualRecord
	} else {
		if _, ok := e.pressing[physical]; !ok {
			panic("engine: pressing record vanished during synchronization")
		}
		delete(e.pressing, physical)
	}

	ev := Event{
		Timestamp: e.clock(),
		Type:      eventType,
		Physical:  physical,
		Logical:   resultLogical,
	}
	if eventType != EventUp {
		ev.Character = encodeCharacter(character)
	}

	token := e.nextToken(callback)

	if e.metrics != nil {
		e.metrics.EventsTotal.Inc()
		if eventType == EventRepeat {
			e.metrics.RepeatsTotal.Inc()
		}
	}
	e.log.Debug("key event",
		"type", eventType.String(),
		"action", action.String(),
		"physical", physical,
		"logical", resultLogical,
		"token", uint64(token))

	e.send(ev, token)
}

// absorb finishes a raw input without dispatching an event for it: the
// caller is told the input was handled, and only the neutral liveness
// event will go out.
func (e *Engine) absorb(reason string, virtualKey int, physical uint64, action Action, callback Callback) {
	if e.metrics != nil {
		e.metrics.AbsorbedTotal.Inc()
	}
	e.log.Debug("input absorbed",
		"reason", reason,
		"virtual_key", virtualKey,
		"physical", physical,
		"action", action.String())
	callback(true)
}

// nextToken registers the callback in the pending-response ledger and
// returns its correlation token. Tokens are strictly increasing and never
// reused within an engine's lifetime.
func (e *Engine) nextToken(callback Callback) ResponseToken {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()

	e.lastToken++
	token := ResponseToken(e.lastToken)
	e.pending[token] = callback
	if e.metrics != nil {
		e.metrics.PendingResponses.Set(int64(len(e.pending)))
	}
	return token
}

// Resolve delivers the host's acknowledgment for a previously dispatched
// event. The ledger entry is retired and the original caller's callback
// invoked, exactly once. Unknown tokens are ignored: either the host
// acknowledged twice or fabricated a token, and neither may disturb the
// ledger.
//
// There is no timeout: an acknowledgment that never arrives leaves its
// entry pending until the engine is discarded. Entries are small and
// bounded by concurrent in-flight events, and processing never blocks on
// them.
func (e *Engine) Resolve(token ResponseToken, handled bool) {
	e.pendingMu.Lock()
	callback, ok := e.pending[token]
	if ok {
		delete(e.pending, token)
		if e.metrics != nil {
			e.metrics.PendingResponses.Set(int64(len(e.pending)))
			e.metrics.AcksTotal.Inc()
		}
	}
	e.pendingMu.Unlock()

	if !ok {
		e.log.Warn("acknowledgment for unknown token", "token", uint64(token))
		return
	}
	callback(handled)
}

// PendingResponses returns the number of dispatched events still awaiting
// host acknowledgment.
func (e *Engine) PendingResponses() int {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	return len(e.pending)
}

// IsPressed reports whether a physical key is currently recorded down, and
// with which logical identity.
func (e *Engine) IsPressed(physical uint64) (uint64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	logical, ok := e.pressing[physical]
	return logical, ok
}

func (e *Engine) send(ev Event, token ResponseToken) {
	e.sentAny = true
	if ev.Synthesized && e.metrics != nil {
		e.metrics.SynthesizedTotal.Inc()
	}
	e.dispatcher.Dispatch(ev, token)
}
