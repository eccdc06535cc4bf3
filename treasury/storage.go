package treasury

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/store"
)

// Storage is the store.KV-backed implementation of the engine's state
// interface. The whole ledger lives under a single key, mirroring
// native/creator's PayoutLedger record but collapsed to one instance.
type Storage struct {
	kv   *store.KV
	send func(dest common.Address, amount *big.Int) error
}

// NewStorage wraps kv for use by Engine. send performs the actual native
// coin transfer out of the treasury; callers typically bind this to the
// host chain's account ledger.
func NewStorage(kv *store.KV, send func(dest common.Address, amount *big.Int) error) *Storage {
	return &Storage{kv: kv, send: send}
}

func (s *Storage) LedgerGet() (*Ledger, error) {
	var raw wireLedger
	ok, err := s.kv.Get(&raw, "ledger")
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewLedger(), nil
	}
	return raw.toLedger(), nil
}

func (s *Storage) LedgerPut(ledger *Ledger) error {
	return s.kv.Put(fromLedger(ledger), "ledger")
}

func (s *Storage) Send(dest common.Address, amount *big.Int) error {
	if s.send == nil {
		return nil
	}
	return s.send(dest, amount)
}

// wireLedger is the JSON-safe representation of Ledger: big.Int fields are
// serialized as decimal strings the same way token/storage.go stores
// balances, since big.Int's default JSON encoding is a bare integer literal
// that some JSON decoders mangle at large magnitudes.
type wireLedger struct {
	CreatorBalances    map[string]string `json:"creatorBalances"`
	TotalCreatorFees   string            `json:"totalCreatorFees"`
	ProtocolPending    string            `json:"protocolPending"`
	ProtocolCumulative string            `json:"protocolCumulative"`
	StakerPool         string            `json:"stakerPool"`
	ProtocolWallet     common.Address    `json:"protocolWallet"`
}

func fromLedger(l *Ledger) wireLedger {
	w := wireLedger{
		CreatorBalances:    make(map[string]string, len(l.CreatorBalances)),
		TotalCreatorFees:   bigString(l.TotalCreatorFees),
		ProtocolPending:    bigString(l.ProtocolPending),
		ProtocolCumulative: bigString(l.ProtocolCumulative),
		StakerPool:         bigString(l.StakerPool),
		ProtocolWallet:     l.ProtocolWallet,
	}
	for k, v := range l.CreatorBalances {
		w.CreatorBalances[k] = bigString(v)
	}
	return w
}

func (w wireLedger) toLedger() *Ledger {
	l := &Ledger{
		CreatorBalances:    make(map[string]*big.Int, len(w.CreatorBalances)),
		TotalCreatorFees:   parseBig(w.TotalCreatorFees),
		ProtocolPending:    parseBig(w.ProtocolPending),
		ProtocolCumulative: parseBig(w.ProtocolCumulative),
		StakerPool:         parseBig(w.StakerPool),
		ProtocolWallet:     w.ProtocolWallet,
	}
	for k, v := range w.CreatorBalances {
		l.CreatorBalances[k] = parseBig(v)
	}
	return l
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
