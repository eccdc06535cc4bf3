package factory

import (
	"github.com/ethereum/go-ethereum/common"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/personid"
)

// EventTypeSoulTokenCreated is emitted once per successful CreateSoulToken.
const EventTypeSoulTokenCreated = "factory.soultoken.created"

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

// SoulTokenCreatedEvent captures a new person's Token/Curve deployment.
func SoulTokenCreatedEvent(personID personid.ID, tokenAddr, curveAddr, creator common.Address, name, symbol string) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeSoulTokenCreated,
		Attributes: map[string]string{
			"personId": personID.String(),
			"token":    tokenAddr.Hex(),
			"curve":    curveAddr.Hex(),
			"creator":  creator.Hex(),
			"name":     name,
			"symbol":   symbol,
		},
	}
}
