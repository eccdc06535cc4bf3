// Package bank implements the native-coin wallet ledger the soulcore CLI
// binds into every component's Send hook, adapted from the teacher's
// validator-stake slashing ledger to plain debit/credit coin accounting: no
// reputational scoring here, just balances moving between addresses.
package bank

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientFunds is returned when a debit exceeds the holder's balance.
var ErrInsufficientFunds = errors.New("bank: insufficient funds")

// Ledger is an in-memory native-coin balance sheet, safe for concurrent use.
// Components (Curve, Treasury, Router) never read it directly as authoritative
// trade state — each keeps its own ledger per spec.md §5 — but every native
// coin transfer they perform out of their own reserve lands here.
type Ledger struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[common.Address]*big.Int)}
}

// Credit funds addr, minting from outside the ledger (used to seed a
// wallet, e.g. before a buyer's first buy).
func (l *Ledger) Credit(addr common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = new(big.Int).Add(l.balanceLocked(addr), amount)
}

// Debit removes amount from addr's balance, failing ErrInsufficientFunds if
// the balance would go negative.
func (l *Ledger) Debit(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balanceLocked(addr)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	l.balances[addr] = new(big.Int).Sub(bal, amount)
	return nil
}

// Balance returns addr's current balance (zero if never credited).
func (l *Ledger) Balance(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceLocked(addr))
}

func (l *Ledger) balanceLocked(addr common.Address) *big.Int {
	if bal, ok := l.balances[addr]; ok {
		return bal
	}
	return big.NewInt(0)
}

// Send satisfies the Send(dest, amount) hook every component (Curve,
// Treasury, Router) wires in to settle a payout: it credits dest directly,
// since the paying component has already debited the amount from its own
// internal reserve accounting before calling out.
func (l *Ledger) Send(dest common.Address, amount *big.Int) error {
	l.Credit(dest, amount)
	return nil
}
