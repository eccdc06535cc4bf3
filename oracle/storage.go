package oracle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/store"
)

// Storage is the store.KV-backed implementation of the engine's state
// interface, namespacing agents, reports, and the has-voted table under
// "oracle" the way native/reputation namespaces its own records.
type Storage struct {
	kv *store.KV
}

// NewStorage wraps kv for use by Engine.
func NewStorage(kv *store.KV) *Storage {
	return &Storage{kv: kv}
}

func agentKey(agent common.Address) string { return store.HexBytes(agent[:]) }

func (s *Storage) AgentIsAuthorized(agent common.Address) (bool, error) {
	var authorized bool
	ok, err := s.kv.Get(&authorized, "agent", agentKey(agent))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return authorized, nil
}

func (s *Storage) AgentSet(agent common.Address, authorized bool) error {
	wasAuthorized, err := s.AgentIsAuthorized(agent)
	if err != nil {
		return err
	}
	if err := s.kv.Put(authorized, "agent", agentKey(agent)); err != nil {
		return err
	}
	if authorized == wasAuthorized {
		return nil
	}
	count, err := s.agentCountRaw()
	if err != nil {
		return err
	}
	if authorized {
		count++
	} else if count > 0 {
		count--
	}
	return s.kv.Put(count, "agentCount")
}

func (s *Storage) agentCountRaw() (uint32, error) {
	var count uint32
	ok, err := s.kv.Get(&count, "agentCount")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return count, nil
}

func (s *Storage) AgentCount() (uint32, error) {
	return s.agentCountRaw()
}

func (s *Storage) NextReportSeq() (uint64, error) {
	var seq uint64
	ok, err := s.kv.Get(&seq, "reportSeq")
	if err != nil {
		return 0, err
	}
	if !ok {
		seq = 0
	}
	next := seq + 1
	if err := s.kv.Put(next, "reportSeq"); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Storage) ReportGet(id [32]byte) (*Report, bool, error) {
	var report Report
	ok, err := s.kv.Get(&report, "report", store.HexBytes(id[:]))
	if err != nil || !ok {
		return nil, ok, err
	}
	return &report, true, nil
}

func (s *Storage) ReportPut(r *Report) error {
	return s.kv.Put(r, "report", store.HexBytes(r.ID[:]))
}

func (s *Storage) HasVotedGet(id [32]byte, agent common.Address) (bool, error) {
	var voted bool
	ok, err := s.kv.Get(&voted, "hasVoted", store.HexBytes(id[:]), agentKey(agent))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return voted, nil
}

func (s *Storage) HasVotedSet(id [32]byte, agent common.Address, voted bool) error {
	return s.kv.Put(voted, "hasVoted", store.HexBytes(id[:]), agentKey(agent))
}
