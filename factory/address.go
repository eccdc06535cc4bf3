package factory

import (
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/nilecore/soulcore/personid"
)

// deriveAddress computes a CREATE2-style deterministic address from the
// factory's own address, the person_id, and a role tag distinguishing Token
// from Curve deployments. There is no deployed bytecode in this model, so
// the usual "creation code hash" term is replaced by a fixed role tag:
//
//	addr = Keccak256(0xff ++ factory ++ personIDBytes ++ Keccak256(roleTag))[12:]
//
// This is a pure function of its inputs: calling it twice for the same
// person_id and role always yields the same address, matching the
// spec's "salted address derivation" requirement without needing a state
// read.
func deriveAddress(factoryAddr common.Address, personID personid.ID, roleTag string) common.Address {
	idBytes := personID.Bytes()
	roleHash := ethcrypto.Keccak256([]byte(roleTag))

	buf := make([]byte, 0, 1+common.AddressLength+len(idBytes)+len(roleHash))
	buf = append(buf, 0xff)
	buf = append(buf, factoryAddr.Bytes()...)
	buf = append(buf, idBytes[:]...)
	buf = append(buf, roleHash...)

	digest := ethcrypto.Keccak256(buf)
	return common.BytesToAddress(digest[12:])
}

// DeriveTokenAddress returns the deterministic address a Token deployed for
// personID by the factory at factoryAddr would have.
func DeriveTokenAddress(factoryAddr common.Address, personID personid.ID) common.Address {
	return deriveAddress(factoryAddr, personID, roleTagToken)
}

// DeriveCurveAddress returns the deterministic address a Curve deployed for
// personID by the factory at factoryAddr would have.
func DeriveCurveAddress(factoryAddr common.Address, personID personid.ID) common.Address {
	return deriveAddress(factoryAddr, personID, roleTagCurve)
}
