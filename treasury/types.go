// Package treasury implements the fee-collection and payout ledger described
// in spec.md §3/§4.7: curves forward trade fees here, creators withdraw their
// accrued share, and the protocol drains its own pending balance to a
// configured wallet. Grounded on native/creator's payout-vault/ledger split
// (engine.go's ClaimPayouts), adapted from a claim-against-a-shared-vault
// model to a per-fee-type balance the Treasury itself holds.
package treasury

import "math/big"

// Ledger is the persisted accounting record. There is exactly one Ledger
// for the whole Treasury (not one per creator): creator balances are a map
// keyed by address, everything else is a handful of running counters.
//
// ProtocolPending and ProtocolCumulative resolve spec.md §4.7's noted
// ambiguity around total_protocol_fees serving a dual meaning: they are
// tracked as two separate counters. ProtocolPending is the withdrawable
// balance, zeroed by ProtocolWithdraw; ProtocolCumulative only ever grows
// and exists purely for observability (it is never read by any operation).
type Ledger struct {
	CreatorBalances    map[string]*big.Int `json:"creatorBalances"`
	TotalCreatorFees   *big.Int            `json:"totalCreatorFees"`
	ProtocolPending    *big.Int            `json:"protocolPending"`
	ProtocolCumulative *big.Int            `json:"protocolCumulative"`
	StakerPool         *big.Int            `json:"stakerPool"`
	ProtocolWallet     [20]byte            `json:"protocolWallet"`
}

// NewLedger returns a zeroed ledger ready for use.
func NewLedger() *Ledger {
	return &Ledger{
		CreatorBalances:    make(map[string]*big.Int),
		TotalCreatorFees:   big.NewInt(0),
		ProtocolPending:    big.NewInt(0),
		ProtocolCumulative: big.NewInt(0),
		StakerPool:         big.NewInt(0),
	}
}

// Clone deep-copies the ledger so callers can't mutate a storage backend's
// cached copy out from under it.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return NewLedger()
	}
	clone := &Ledger{
		CreatorBalances:    make(map[string]*big.Int, len(l.CreatorBalances)),
		TotalCreatorFees:   cloneBig(l.TotalCreatorFees),
		ProtocolPending:    cloneBig(l.ProtocolPending),
		ProtocolCumulative: cloneBig(l.ProtocolCumulative),
		StakerPool:         cloneBig(l.StakerPool),
		ProtocolWallet:     l.ProtocolWallet,
	}
	for k, v := range l.CreatorBalances {
		clone.CreatorBalances[k] = cloneBig(v)
	}
	return clone
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
