// Package token implements the per-person fungible unit described in
// spec.md §3/§4.2: standard balance/allowance bookkeeping plus the
// minter/factory-gated mint, burn, and phase transitions a tokenized
// person's bonding curve relies on.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
)

// Phase enumerates the lifecycle stage of a person's token.
type Phase uint8

const (
	// PhaseBonding is the initial phase: trading happens exclusively against
	// the bonding curve.
	PhaseBonding Phase = iota
	// PhaseAMM is entered irreversibly at graduation.
	PhaseAMM
	// PhaseOrderBook is a further downstream phase this core does not drive
	// transitions into itself (reserved for the Sprint-5 handoff).
	PhaseOrderBook
)

// String renders the phase for logging and events.
func (p Phase) String() string {
	switch p {
	case PhaseBonding:
		return "bonding"
	case PhaseAMM:
		return "amm"
	case PhaseOrderBook:
		return "orderbook"
	default:
		return "unknown"
	}
}

// Decimals is the fixed base-unit precision every soul token shares.
const Decimals = 18

// Meta is the persisted, mostly-immutable record describing one person's
// token: identity, governance wiring, and lifecycle state. Balances and
// allowances are stored separately (one record per holder/pair) so a
// transfer never needs to rewrite this record.
type Meta struct {
	PersonID    personid.ID    `json:"personId"`
	Address     common.Address `json:"address"`
	Factory     common.Address `json:"factory"`
	Minter      common.Address `json:"minter"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Phase       Phase          `json:"phase"`
	Graduated   bool           `json:"graduated"`
	TotalSupply *big.Int       `json:"totalSupply"`
	PermitNonce uint64         `json:"permitNonce"`
}

// Clone returns a deep copy of m so callers can mutate it without aliasing
// the copy a storage backend returned.
func (m *Meta) Clone() *Meta {
	if m == nil {
		return nil
	}
	clone := *m
	if m.TotalSupply != nil {
		clone.TotalSupply = new(big.Int).Set(m.TotalSupply)
	}
	return &clone
}
