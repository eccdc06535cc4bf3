package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/store"
)

// Storage is the store.KV-backed implementation of the engine's state
// interface, namespacing every key under "token" the way native/reputation's
// storage.go namespaces its keys under "reputation/".
type Storage struct {
	kv *store.KV
}

// NewStorage wraps kv for use by Engine.
func NewStorage(kv *store.KV) *Storage {
	return &Storage{kv: kv}
}

func (s *Storage) MetaGet(id personid.ID) (*Meta, bool, error) {
	var meta Meta
	ok, err := s.kv.Get(&meta, "meta", id.String())
	if err != nil || !ok {
		return nil, ok, err
	}
	return &meta, true, nil
}

func (s *Storage) MetaPut(meta *Meta) error {
	return s.kv.Put(meta, "meta", meta.PersonID.String())
}

func (s *Storage) BalanceGet(id personid.ID, holder common.Address) (*big.Int, error) {
	var amount string
	ok, err := s.kv.Get(&amount, "balance", id.String(), store.HexBytes(holder[:]))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (s *Storage) BalancePut(id personid.ID, holder common.Address, balance *big.Int) error {
	return s.kv.Put(balance.String(), "balance", id.String(), store.HexBytes(holder[:]))
}

func (s *Storage) AllowanceGet(id personid.ID, owner, spender common.Address) (*big.Int, error) {
	var amount string
	ok, err := s.kv.Get(&amount, "allowance", id.String(), store.HexBytes(owner[:]), store.HexBytes(spender[:]))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (s *Storage) AllowancePut(id personid.ID, owner, spender common.Address, amount *big.Int) error {
	return s.kv.Put(amount.String(), "allowance", id.String(), store.HexBytes(owner[:]), store.HexBytes(spender[:]))
}
