package reentrancy

import "testing"

func TestGuardBlocksReentry(t *testing.T) {
	var g Guard
	if err := g.Enter(); err != nil {
		t.Fatalf("first Enter: %v", err)
	}
	if err := g.Enter(); err != ErrReentrant {
		t.Fatalf("second Enter = %v, want ErrReentrant", err)
	}
	g.Exit()
	if err := g.Enter(); err != nil {
		t.Fatalf("Enter after Exit: %v", err)
	}
	g.Exit()
}
