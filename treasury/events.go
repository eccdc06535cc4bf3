package treasury

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
)

const (
	// EventTypeFeesReceived is emitted whenever a curve forwards trade fees.
	EventTypeFeesReceived = "treasury.fees.received"
	// EventTypeCreatorWithdraw is emitted when a creator drains their balance.
	EventTypeCreatorWithdraw = "treasury.creator.withdraw"
	// EventTypeProtocolWithdraw is emitted when the owner drains the protocol balance.
	EventTypeProtocolWithdraw = "treasury.protocol.withdraw"
	// EventTypeProtocolWalletUpdated is emitted when the protocol wallet is rotated.
	EventTypeProtocolWalletUpdated = "treasury.wallet.updated"
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

// FeesReceivedEvent captures one fee split arriving from a curve.
func FeesReceivedEvent(creator common.Address, creatorFee, protocolFee, stakerFee *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeFeesReceived,
		Attributes: map[string]string{
			"creator":     creator.Hex(),
			"creatorFee":  creatorFee.String(),
			"protocolFee": protocolFee.String(),
			"stakerFee":   stakerFee.String(),
		},
	}
}

// CreatorWithdrawEvent captures a creator draining their balance.
func CreatorWithdrawEvent(creator common.Address, amount *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeCreatorWithdraw,
		Attributes: map[string]string{
			"creator": creator.Hex(),
			"amount":  amount.String(),
		},
	}
}

// ProtocolWithdrawEvent captures the owner draining the protocol balance.
func ProtocolWithdrawEvent(wallet common.Address, amount *big.Int) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeProtocolWithdraw,
		Attributes: map[string]string{
			"wallet": wallet.Hex(),
			"amount": amount.String(),
		},
	}
}

// ProtocolWalletUpdatedEvent captures a protocol wallet rotation.
func ProtocolWalletUpdatedEvent(old, updated common.Address) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeProtocolWalletUpdated,
		Attributes: map[string]string{
			"old": old.Hex(),
			"new": updated.Hex(),
		},
	}
}
