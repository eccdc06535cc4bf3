// Package curve implements the Bancor-style bonding curve described in
// spec.md §3/§4.3: one curve per person, minting and burning that person's
// token against a virtually-seeded coin reserve, graduating to inactive once
// the reserve crosses a threshold. Grounded on native/creator's accounting
// style (math.go kept separate from engine.go) adapted from a shares/vault
// model to a continuous bonding-curve reserve.
package curve

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
)

// InitialReserveCoins is the virtual seed reserve, in whole coin units,
// present even when no real value has been deposited. Guarantees the Bancor
// formula is defined at zero real reserve.
const InitialReserveCoins = 10

// InitialSupplyTokens is the virtual seed supply, in whole token units,
// added to a token's real total_supply to form effective_supply.
const InitialSupplyTokens = 100_000

// Fee split, in basis points of 1/10_000. FeeCreatorBps + FeeProtocolBps +
// FeeStakerBps = FeeBps; the staker share absorbs rounding.
const (
	FeeBps         = 100
	FeeCreatorBps  = 50
	FeeProtocolBps = 30
	FeeStakerBps   = 20
)

// State is the persisted record for one person's curve.
type State struct {
	PersonID            personid.ID    `json:"personId"`
	Address             common.Address `json:"address"`
	Token               common.Address `json:"token"`
	Creator             common.Address `json:"creator"`
	ReserveBalance      *big.Int       `json:"reserveBalance"`
	GraduationThreshold *big.Int       `json:"graduationThreshold"`
	Active              bool           `json:"active"`
}

// Clone deep-copies the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	if s.ReserveBalance != nil {
		clone.ReserveBalance = new(big.Int).Set(s.ReserveBalance)
	}
	if s.GraduationThreshold != nil {
		clone.GraduationThreshold = new(big.Int).Set(s.GraduationThreshold)
	}
	return &clone
}

// effectiveSupply returns total_supply + InitialSupplyTokens (scaled to the
// token's 18-decimal base units).
func effectiveSupply(totalSupply *big.Int) *big.Int {
	virtual := new(big.Int).Mul(big.NewInt(InitialSupplyTokens), weiPerToken)
	if totalSupply == nil {
		return virtual
	}
	return new(big.Int).Add(totalSupply, virtual)
}

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// InitialReserve returns the virtual seed reserve in coin base units.
func InitialReserve() *big.Int {
	return new(big.Int).Mul(big.NewInt(InitialReserveCoins), weiPerToken)
}
