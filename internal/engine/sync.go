package engine

import "keybridge/internal/keystate"

// updateLastSeenCritical refreshes the registry's record of a critical
// key's identity. Identities arrive lazily: the registry learns a key's
// physical and logical ids the first time that virtual key shows up in
// the stream.
func (e *Engine) updateLastSeenCritical(virtualKey int, physical, logical uint64) {
	if ck, ok := e.critical[virtualKey]; ok {
		ck.physical = physical
		ck.logical = logical
	}
}

// syncToggledStates reconciles the tracked toggle state of every critical
// key with the true OS state, before the primary event goes out.
//
// Toggle state only changes on a down event, so when the key being
// processed is the critical key itself and the primary event is a down,
// the tracked value is flipped first in anticipation. If tracked and true
// state still disagree, the key is released (only if recorded pressed)
// and then pressed again: the host derives toggle state from observing a
// press, so reconciliation must always end with the key recorded pressed.
// Correcting the pressed state afterwards is syncPressedStates' job.
func (e *Engine) syncToggledStates(thisVirtualKey int, isDownEvent bool) {
	for _, vk := range e.criticalOrder {
		ck := e.critical[vk]
		if ck.physical == 0 || !ck.checkToggled {
			// Never seen, or toggle tracking not enabled for this key.
			continue
		}

		trueToggled := e.state.KeyState(vk)&keystate.MaskToggled != 0
		if vk == thisVirtualKey && isDownEvent {
			ck.toggledOn = !ck.toggledOn
		}
		if ck.toggledOn != trueToggled {
			if _, pressed := e.pressing[ck.physical]; pressed {
				e.send(e.synthesize(EventUp, ck.physical, ck.logical), 0)
			}
			e.pressing[ck.physical] = ck.logical
			e.send(e.synthesize(EventDown, ck.physical, ck.logical), 0)
			e.log.Debug("toggle state synchronized",
				"virtual_key", vk,
				"toggled", trueToggled)
		}
		ck.toggledOn = trueToggled
	}
}

// syncPressedStates reconciles the recorded pressed state of every
// critical key with the true OS state.
//
// When the key being processed is the critical key itself and the primary
// event is about to change its pressed state (any non-repeat), the
// expectation is inverted so the comparison is against the post-event
// state, which the primary event itself will establish.
func (e *Engine) syncPressedStates(thisVirtualKey int, pressedStateWillChange bool) {
	for _, vk := range e.criticalOrder {
		ck := e.critical[vk]
		if ck.physical == 0 || !ck.checkPressed {
			continue
		}

		_, recordedPressed := e.pressing[ck.physical]
		shouldPressed := e.state.KeyState(vk)&keystate.MaskPressed != 0
		if vk == thisVirtualKey && pressedStateWillChange {
			shouldPressed = !shouldPressed
		}
		if recordedPressed != shouldPressed {
			if recordedPressed {
				delete(e.pressing, ck.physical)
				e.send(e.synthesize(EventUp, ck.physical, ck.logical), 0)
			} else {
				e.pressing[ck.physical] = ck.logical
				e.send(e.synthesize(EventDown, ck.physical, ck.logical), 0)
			}
			e.log.Debug("pressed state synchronized",
				"virtual_key", vk,
				"pressed", shouldPressed)
		}
	}
}

// synthesize builds a reconciliation event. Synthesized events never carry
// a character and are dispatched fire-and-forget.
func (e *Engine) synthesize(t EventType, physical, logical uint64) Event {
	return Event{
		Timestamp:   e.clock(),
		Type:        t,
		Physical:    physical,
		Logical:     logical,
		Synthesized: true,
	}
}
