// Package reentrancy implements the classic boolean-flag non-reentrant guard
// for components that have no language-level primitive for it: Curve.Buy,
// Curve.Sell, Treasury.CreatorWithdraw, Treasury.ProtocolWithdraw, and
// Router.Buy/Sell all hold one of these.
package reentrancy

import (
	"errors"
	"sync"
)

// ErrReentrant is returned when a guarded call is attempted while another
// guarded call on the same Guard is already in flight.
var ErrReentrant = errors.New("reentrancy: reentrant call blocked")

// Guard is a mutex-protected boolean lock. A zero-value Guard is ready to use.
type Guard struct {
	mu     sync.Mutex
	locked bool
}

// Enter sets the guard, failing with ErrReentrant if it is already set.
func (g *Guard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return ErrReentrant
	}
	g.locked = true
	return nil
}

// Exit releases the guard. It is safe to call even if Enter was never called.
func (g *Guard) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = false
}
