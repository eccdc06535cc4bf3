package treasury

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/core/errors"
)

type mockState struct {
	ledger *Ledger
	sent   map[string]*big.Int
	fail   bool
}

func newMockState() *mockState {
	return &mockState{ledger: NewLedger(), sent: make(map[string]*big.Int)}
}

func (m *mockState) LedgerGet() (*Ledger, error) { return m.ledger.Clone(), nil }

func (m *mockState) LedgerPut(ledger *Ledger) error {
	m.ledger = ledger.Clone()
	return nil
}

func (m *mockState) Send(dest common.Address, amount *big.Int) error {
	if m.fail {
		return errFakeSendFailure
	}
	existing, ok := m.sent[dest.Hex()]
	if !ok {
		existing = big.NewInt(0)
	}
	m.sent[dest.Hex()] = new(big.Int).Add(existing, amount)
	return nil
}

var errFakeSendFailure = errFake("treasury test: send failed")

type errFake string

func (e errFake) Error() string { return string(e) }

var (
	ownerAddr   = common.HexToAddress("0x0000000000000000000000000000000000000a")
	creatorAddr = common.HexToAddress("0x0000000000000000000000000000000000000b")
	walletAddr  = common.HexToAddress("0x0000000000000000000000000000000000000c")
)

func TestReceiveFeesCreditsAllThreeBuckets(t *testing.T) {
	e := NewEngine(newMockState(), ownerAddr)
	if err := e.ReceiveFees(creatorAddr, big.NewInt(50), big.NewInt(30), big.NewInt(20)); err != nil {
		t.Fatalf("ReceiveFees: %v", err)
	}
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.CreatorBalances[creatorAddr.Hex()].Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("creator balance = %s, want 50", snap.CreatorBalances[creatorAddr.Hex()])
	}
	if snap.ProtocolPending.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("protocol pending = %s, want 30", snap.ProtocolPending)
	}
	if snap.ProtocolCumulative.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("protocol cumulative = %s, want 30", snap.ProtocolCumulative)
	}
	if snap.StakerPool.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("staker pool = %s, want 20", snap.StakerPool)
	}
}

func TestCreatorWithdrawDrainsBalance(t *testing.T) {
	st := newMockState()
	e := NewEngine(st, ownerAddr)
	if err := e.ReceiveFees(creatorAddr, big.NewInt(50), big.NewInt(0), big.NewInt(0)); err != nil {
		t.Fatalf("ReceiveFees: %v", err)
	}
	if err := e.CreatorWithdraw(creatorAddr); err != nil {
		t.Fatalf("CreatorWithdraw: %v", err)
	}
	if st.sent[creatorAddr.Hex()].Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("sent = %s, want 50", st.sent[creatorAddr.Hex()])
	}
	if err := e.CreatorWithdraw(creatorAddr); err != errors.ErrInsufficientBalance {
		t.Fatalf("second withdraw = %v, want ErrInsufficientBalance", err)
	}
}

func TestCreatorWithdrawFailedSendLeavesBalanceDrained(t *testing.T) {
	st := newMockState()
	st.fail = true
	e := NewEngine(st, ownerAddr)
	if err := e.ReceiveFees(creatorAddr, big.NewInt(50), big.NewInt(0), big.NewInt(0)); err != nil {
		t.Fatalf("ReceiveFees: %v", err)
	}
	if err := e.CreatorWithdraw(creatorAddr); err != errors.ErrTransferFailed {
		t.Fatalf("CreatorWithdraw = %v, want ErrTransferFailed", err)
	}
}

func TestProtocolWithdrawOwnerOnly(t *testing.T) {
	st := newMockState()
	e := NewEngine(st, ownerAddr)
	if err := e.ReceiveFees(creatorAddr, big.NewInt(0), big.NewInt(40), big.NewInt(0)); err != nil {
		t.Fatalf("ReceiveFees: %v", err)
	}
	if err := e.SetProtocolWallet(creatorAddr, walletAddr); err != errors.ErrNotAuthorized {
		t.Fatalf("SetProtocolWallet by non-owner = %v, want ErrNotAuthorized", err)
	}
	if err := e.SetProtocolWallet(ownerAddr, walletAddr); err != nil {
		t.Fatalf("SetProtocolWallet: %v", err)
	}
	if err := e.ProtocolWithdraw(creatorAddr); err != errors.ErrNotAuthorized {
		t.Fatalf("ProtocolWithdraw by non-owner = %v, want ErrNotAuthorized", err)
	}
	if err := e.ProtocolWithdraw(ownerAddr); err != nil {
		t.Fatalf("ProtocolWithdraw: %v", err)
	}
	if st.sent[walletAddr.Hex()].Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("sent to wallet = %s, want 40", st.sent[walletAddr.Hex()])
	}
	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.ProtocolPending.Sign() != 0 {
		t.Fatalf("protocol pending after withdraw = %s, want 0", snap.ProtocolPending)
	}
	if snap.ProtocolCumulative.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("protocol cumulative after withdraw = %s, want unchanged 40", snap.ProtocolCumulative)
	}
}

func TestSetProtocolWalletRejectsZeroAddress(t *testing.T) {
	e := NewEngine(newMockState(), ownerAddr)
	if err := e.SetProtocolWallet(ownerAddr, common.Address{}); err != errors.ErrZeroAddress {
		t.Fatalf("SetProtocolWallet(zero) = %v, want ErrZeroAddress", err)
	}
}

func TestProtocolWithdrawWithoutWalletConfigured(t *testing.T) {
	st := newMockState()
	e := NewEngine(st, ownerAddr)
	if err := e.ReceiveFees(creatorAddr, big.NewInt(0), big.NewInt(10), big.NewInt(0)); err != nil {
		t.Fatalf("ReceiveFees: %v", err)
	}
	if err := e.ProtocolWithdraw(ownerAddr); err != errors.ErrZeroAddress {
		t.Fatalf("ProtocolWithdraw without wallet = %v, want ErrZeroAddress", err)
	}
}
