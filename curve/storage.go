package curve

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/store"
)

// Storage is the store.KV-backed implementation of the engine's state
// interface, namespacing every record under "curve" keyed by person id.
type Storage struct {
	kv   *store.KV
	send func(dest common.Address, amount *big.Int) error
}

// NewStorage wraps kv for use by Engine. send performs the native coin
// payout owed to a seller; callers bind this to the host chain's ledger.
func NewStorage(kv *store.KV, send func(dest common.Address, amount *big.Int) error) *Storage {
	return &Storage{kv: kv, send: send}
}

func (s *Storage) CurveGet(id personid.ID) (*State, bool, error) {
	var wire wireState
	ok, err := s.kv.Get(&wire, "curve", id.String())
	if err != nil || !ok {
		return nil, ok, err
	}
	return wire.toState(), true, nil
}

func (s *Storage) CurvePut(st *State) error {
	return s.kv.Put(fromState(st), "curve", st.PersonID.String())
}

func (s *Storage) Send(dest common.Address, amount *big.Int) error {
	if s.send == nil {
		return nil
	}
	return s.send(dest, amount)
}

// wireState serializes big.Int fields as decimal strings, matching the
// convention treasury/storage.go and token/storage.go use.
type wireState struct {
	PersonID            personid.ID    `json:"personId"`
	Address             common.Address `json:"address"`
	Token               common.Address `json:"token"`
	Creator             common.Address `json:"creator"`
	ReserveBalance      string         `json:"reserveBalance"`
	GraduationThreshold string         `json:"graduationThreshold"`
	Active              bool           `json:"active"`
}

func fromState(st *State) wireState {
	return wireState{
		PersonID:            st.PersonID,
		Address:             st.Address,
		Token:               st.Token,
		Creator:             st.Creator,
		ReserveBalance:      bigString(st.ReserveBalance),
		GraduationThreshold: bigString(st.GraduationThreshold),
		Active:              st.Active,
	}
}

func (w wireState) toState() *State {
	return &State{
		PersonID:            w.PersonID,
		Address:             w.Address,
		Token:               w.Token,
		Creator:             w.Creator,
		ReserveBalance:      parseBig(w.ReserveBalance),
		GraduationThreshold: parseBig(w.GraduationThreshold),
		Active:              w.Active,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseBig(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return value
}
