// Package router implements the trade-mediation layer described in
// spec.md §4.5: routes buy/sell calls to the bonding curve pre-graduation,
// mechanically ferrying minted tokens and received coin between the curve
// and the caller, and stands ready to route to a post-graduation market
// once the Sprint-5 AMM integration lands (spec.md §9).
package router

import "math/big"

// Source names which downstream venue produced a Quote.
type Source string

const (
	// SourceCurve is the only live source before a token graduates.
	SourceCurve Source = "curve"
	// SourceAMM is reserved for the post-graduation market; no quote is
	// ever returned with this source today.
	SourceAMM Source = "amm"
)

// Quote is the read-only result of QuoteBuy/QuoteSell, generalized the way
// native/swap.OracleAggregator aggregates across multiple price sources —
// here there is only ever one live source pre-graduation, but Source keeps
// the shape forward-compatible with the AMM handoff.
type Quote struct {
	AmountOut *big.Int
	Fee       *big.Int
	Source    Source
}
