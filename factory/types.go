// Package factory implements the registry and deterministic deployment
// described in spec.md §4.4: given a person_id, it provisions the Token and
// Curve pair at addresses derived purely from (factory address, person_id),
// wires the Curve in as the token's minter, and records the pair in an
// append-only registry.
package factory

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
)

// roleTagToken and roleTagCurve salt the deterministic address derivation so
// a person's Token and Curve addresses never collide despite sharing the
// same (factory, person_id) input.
const (
	roleTagToken = "soulcore:token"
	roleTagCurve = "soulcore:curve"
)

// Pair is the persisted record of one person's deployed Token/Curve addresses.
type Pair struct {
	PersonID personid.ID    `json:"personId"`
	Token    common.Address `json:"token"`
	Curve    common.Address `json:"curve"`
	Creator  common.Address `json:"creator"`
}

// Clone returns a shallow copy of the pair (all fields are value types).
func (p *Pair) Clone() *Pair {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
