package curve

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
)

const (
	// EventTypeBuy is emitted on a successful buy.
	EventTypeBuy = "curve.buy"
	// EventTypeSell is emitted on a successful sell.
	EventTypeSell = "curve.sell"
	// EventTypeGraduationTriggered is emitted when the curve deactivates.
	EventTypeGraduationTriggered = "curve.graduation.triggered"
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

// BuyEvent captures a completed buy.
func BuyEvent(buyer common.Address, coinIn, tokensOut, fee, newPrice *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeBuy,
		Attributes: map[string]string{
			"buyer":     buyer.Hex(),
			"coinIn":    coinIn.String(),
			"tokensOut": tokensOut.String(),
			"fee":       fee.String(),
			"newPrice":  newPrice.String(),
		},
	}
}

// SellEvent captures a completed sell.
func SellEvent(seller common.Address, tokensIn, coinOut, fee, newPrice *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeSell,
		Attributes: map[string]string{
			"seller":    seller.Hex(),
			"tokensIn":  tokensIn.String(),
			"coinOut":   coinOut.String(),
			"fee":       fee.String(),
			"newPrice":  newPrice.String(),
		},
	}
}

// GraduationTriggeredEvent captures a curve crossing its graduation threshold.
func GraduationTriggeredEvent(reserve *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeGraduationTriggered,
		Attributes: map[string]string{
			"reserve": reserve.String(),
		},
	}
}
