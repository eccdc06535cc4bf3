package factory

import (
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/store"
)

// Storage is the store.KV-backed implementation of the registry's state
// interface: the person_id -> Pair table plus the append-only
// deployed_person_ids order, mirroring native/reputation's namespaced
// key-per-record convention.
type Storage struct {
	kv *store.KV
}

// NewStorage wraps kv for use by Engine.
func NewStorage(kv *store.KV) *Storage {
	return &Storage{kv: kv}
}

func pairKey(id personid.ID) string { return id.String() }

func (s *Storage) PairGet(id personid.ID) (*Pair, bool, error) {
	var pair Pair
	ok, err := s.kv.Get(&pair, "pair", pairKey(id))
	if err != nil || !ok {
		return nil, ok, err
	}
	return &pair, true, nil
}

func (s *Storage) PairPut(p *Pair) error {
	return s.kv.Put(p, "pair", pairKey(p.PersonID))
}

// AppendPersonID appends id to the ordered deployment list, maintaining the
// list under a single key the way a small append-only slice would live in
// a struct field rather than per-element records.
func (s *Storage) AppendPersonID(id personid.ID) error {
	ids, err := s.personIDs()
	if err != nil {
		return err
	}
	ids = append(ids, id)
	return s.kv.Put(ids, "deployedPersonIds")
}

func (s *Storage) personIDs() ([]personid.ID, error) {
	var ids []personid.ID
	ok, err := s.kv.Get(&ids, "deployedPersonIds")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return ids, nil
}

// TotalTokens returns the length of the ordered deployment list.
func (s *Storage) TotalTokens() (uint64, error) {
	ids, err := s.personIDs()
	if err != nil {
		return 0, err
	}
	return uint64(len(ids)), nil
}
