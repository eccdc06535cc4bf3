package token

import (
	"github.com/ethereum/go-ethereum/common"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
)

const (
	// EventTypeMinterUpdated is emitted whenever the factory rotates a token's minter.
	EventTypeMinterUpdated = "token.minter.updated"
	// EventTypePhaseChanged is emitted whenever the factory advances a token's phase.
	EventTypePhaseChanged = "token.phase.changed"
)

type eventEnvelope struct {
	evt *coretypes.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// WrapEvent adapts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *coretypes.Event) coreevents.Event { return eventEnvelope{evt: evt} }

// MinterUpdatedEvent captures a minter rotation.
func MinterUpdatedEvent(token common.Address, old, updated common.Address) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeMinterUpdated,
		Attributes: map[string]string{
			"token": token.Hex(),
			"old":   old.Hex(),
			"new":   updated.Hex(),
		},
	}
}

// PhaseChangedEvent captures a phase transition.
func PhaseChangedEvent(token common.Address, old, updated Phase) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypePhaseChanged,
		Attributes: map[string]string{
			"token": token.Hex(),
			"old":   old.String(),
			"new":   updated.String(),
		},
	}
}
