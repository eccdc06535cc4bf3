package curve

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/token"
)

type mockCurveState struct {
	curves map[personid.ID]*State
	sent   map[string]*big.Int
	send   func(dest common.Address, amount *big.Int) error
}

func newMockCurveState() *mockCurveState {
	return &mockCurveState{curves: make(map[personid.ID]*State), sent: make(map[string]*big.Int)}
}

func (m *mockCurveState) CurveGet(id personid.ID) (*State, bool, error) {
	st, ok := m.curves[id]
	if !ok {
		return nil, false, nil
	}
	return st.Clone(), true, nil
}

func (m *mockCurveState) CurvePut(st *State) error {
	m.curves[st.PersonID] = st.Clone()
	return nil
}

func (m *mockCurveState) Send(dest common.Address, amount *big.Int) error {
	if m.send != nil {
		return m.send(dest, amount)
	}
	existing, ok := m.sent[dest.Hex()]
	if !ok {
		existing = big.NewInt(0)
	}
	m.sent[dest.Hex()] = new(big.Int).Add(existing, amount)
	return nil
}

type mockTokenEngine struct {
	metas map[personid.ID]*token.Meta
}

func newMockTokenEngine() *mockTokenEngine {
	return &mockTokenEngine{metas: make(map[personid.ID]*token.Meta)}
}

func (m *mockTokenEngine) ensure(id personid.ID) *token.Meta {
	meta, ok := m.metas[id]
	if !ok {
		meta = &token.Meta{PersonID: id, TotalSupply: big.NewInt(0)}
		m.metas[id] = meta
	}
	return meta
}

func (m *mockTokenEngine) Mint(caller common.Address, personID personid.ID, to common.Address, amount *big.Int) error {
	meta := m.ensure(personID)
	meta.TotalSupply = new(big.Int).Add(meta.TotalSupply, amount)
	return nil
}

func (m *mockTokenEngine) Burn(caller common.Address, personID personid.ID, from common.Address, amount *big.Int) error {
	meta := m.ensure(personID)
	if meta.TotalSupply.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientTokens
	}
	meta.TotalSupply = new(big.Int).Sub(meta.TotalSupply, amount)
	return nil
}

func (m *mockTokenEngine) Meta(personID personid.ID) (*token.Meta, error) {
	return m.ensure(personID).Clone(), nil
}

type mockFeeReceiver struct {
	fail     bool
	received int
}

func (m *mockFeeReceiver) ReceiveFees(creator common.Address, creatorFee, protocolFee, stakerFee *big.Int) error {
	if m.fail {
		return errors.New("curve test: treasury unavailable")
	}
	m.received++
	return nil
}

var (
	curveOwnAddr = common.HexToAddress("0x00000000000000000000000000000000000c01")
	tokenAddr    = common.HexToAddress("0x00000000000000000000000000000000000701")
	creatorAddr2 = common.HexToAddress("0x00000000000000000000000000000000000c02")
	buyerAddr    = common.HexToAddress("0x00000000000000000000000000000000000b01")
)

func newTestCurveEngine(t *testing.T, threshold *big.Int) (*Engine, *mockCurveState, *mockTokenEngine, *mockFeeReceiver, personid.ID) {
	t.Helper()
	st := newMockCurveState()
	tok := newMockTokenEngine()
	fees := &mockFeeReceiver{}
	e := NewEngine(st, tok, fees)
	pid := personid.New()
	if err := e.CreateCurve(pid, curveOwnAddr, tokenAddr, creatorAddr2, threshold); err != nil {
		t.Fatalf("CreateCurve: %v", err)
	}
	return e, st, tok, fees, pid
}

func TestBuyMintsTokensAndGrowsReserve(t *testing.T) {
	e, _, _, _, pid := newTestCurveEngine(t, coins(1_000_000))
	before, err := e.State(pid)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	tokensOut, err := e.Buy(buyerAddr, pid, coins(1), big.NewInt(0))
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if tokensOut.Sign() <= 0 {
		t.Fatalf("tokensOut = %s, want > 0", tokensOut)
	}
	after, err := e.State(pid)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if after.ReserveBalance.Cmp(before.ReserveBalance) <= 0 {
		t.Fatalf("reserve did not grow: before=%s after=%s", before.ReserveBalance, after.ReserveBalance)
	}
}

func TestBuyRejectsOnInactiveCurve(t *testing.T) {
	e, st, _, _, pid := newTestCurveEngine(t, coins(1_000_000))
	curveState, _, _ := st.CurveGet(pid)
	curveState.Active = false
	if err := st.CurvePut(curveState); err != nil {
		t.Fatalf("CurvePut: %v", err)
	}
	if _, err := e.Buy(buyerAddr, pid, coins(1), big.NewInt(0)); err != coreerrors.ErrCurveNotActive {
		t.Fatalf("Buy on inactive curve = %v, want ErrCurveNotActive", err)
	}
}

func TestBuySlippageExceeded(t *testing.T) {
	e, _, _, _, pid := newTestCurveEngine(t, coins(1_000_000))
	impossible := coins(1_000_000_000)
	if _, err := e.Buy(buyerAddr, pid, coins(1), impossible); err != coreerrors.ErrSlippageExceeded {
		t.Fatalf("Buy with impossible min = %v, want ErrSlippageExceeded", err)
	}
}

func TestGraduationTriggersWhenThresholdCrossed(t *testing.T) {
	e, _, _, _, pid := newTestCurveEngine(t, coins(12))
	if _, err := e.Buy(buyerAddr, pid, coins(5), big.NewInt(0)); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	st, err := e.State(pid)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Active {
		t.Fatalf("expected curve to graduate once reserve crosses threshold, reserve=%s", st.ReserveBalance)
	}
	if _, err := e.Buy(buyerAddr, pid, coins(1), big.NewInt(0)); err != coreerrors.ErrCurveNotActive {
		t.Fatalf("Buy after graduation = %v, want ErrCurveNotActive", err)
	}
}

func TestBuyThenSellHalf(t *testing.T) {
	e, _, tok, _, pid := newTestCurveEngine(t, coins(1_000_000))
	tokensOut, err := e.Buy(buyerAddr, pid, coins(1), big.NewInt(0))
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	half := new(big.Int).Div(tokensOut, big.NewInt(2))
	coinOut, err := e.Sell(buyerAddr, pid, half, big.NewInt(0))
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if coinOut.Sign() <= 0 {
		t.Fatalf("coinOut = %s, want > 0", coinOut)
	}
	if coinOut.Cmp(coins(1)) >= 0 {
		t.Fatalf("coinOut = %s, want less than 1 coin due to slippage+fees", coinOut)
	}
	meta, err := tok.Meta(pid)
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	remaining := new(big.Int).Sub(tokensOut, half)
	if meta.TotalSupply.Cmp(remaining) != 0 {
		t.Fatalf("remaining total supply = %s, want %s", meta.TotalSupply, remaining)
	}
}

func TestFeeDistributionFailureRetainsFeeAsReserve(t *testing.T) {
	e, _, _, fees, pid := newTestCurveEngine(t, coins(1_000_000))
	fees.fail = true
	before, err := e.State(pid)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if _, err := e.Buy(buyerAddr, pid, coins(1), big.NewInt(0)); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	after, err := e.State(pid)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	// netIn + fee (retained) = the full coin_in, since the treasury call failed.
	grown := new(big.Int).Sub(after.ReserveBalance, before.ReserveBalance)
	if grown.Cmp(coins(1)) != 0 {
		t.Fatalf("reserve grew by %s, want full coin_in %s retained", grown, coins(1))
	}
}
