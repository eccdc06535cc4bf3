package router

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	coreerrors "github.com/nilecore/soulcore/core/errors"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/token"
)

type mockState struct {
	sent map[string]*big.Int
	fail bool
}

func newMockState() *mockState {
	return &mockState{sent: make(map[string]*big.Int)}
}

func (m *mockState) Send(dest common.Address, amount *big.Int) error {
	if m.fail {
		return errSendFailed
	}
	m.sent[dest.Hex()] = new(big.Int).Set(amount)
	return nil
}

var errSendFailed = coreerrors.ErrTransferFailed

type mockTokenEngine struct {
	meta       *token.Meta
	balances   map[string]*big.Int
	allowances map[string]*big.Int
}

func newMockTokenEngine(graduated bool) *mockTokenEngine {
	phase := token.PhaseBonding
	if graduated {
		phase = token.PhaseAMM
	}
	return &mockTokenEngine{
		meta:       &token.Meta{Phase: phase, Graduated: graduated, TotalSupply: big.NewInt(0)},
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
	}
}

func (m *mockTokenEngine) Meta(personID personid.ID) (*token.Meta, error) {
	clone := *m.meta
	return &clone, nil
}

func (m *mockTokenEngine) Transfer(personID personid.ID, from, to common.Address, amount *big.Int) error {
	m.balances[to.Hex()] = new(big.Int).Add(balanceOf(m.balances, to), amount)
	m.balances[from.Hex()] = new(big.Int).Sub(balanceOf(m.balances, from), amount)
	return nil
}

func (m *mockTokenEngine) TransferFrom(personID personid.ID, spender, from, to common.Address, amount *big.Int) error {
	return m.Transfer(personID, from, to, amount)
}

func balanceOf(m map[string]*big.Int, addr common.Address) *big.Int {
	if b, ok := m[addr.Hex()]; ok {
		return b
	}
	return big.NewInt(0)
}

type mockCurveEngine struct {
	buyTokensOut *big.Int
	sellCoinOut  *big.Int
	fee          *big.Int
	failBuy      error
	failSell     error
}

func (m *mockCurveEngine) Buy(caller common.Address, personID personid.ID, coinIn, minTokensOut *big.Int) (*big.Int, error) {
	if m.failBuy != nil {
		return nil, m.failBuy
	}
	return m.buyTokensOut, nil
}

func (m *mockCurveEngine) Sell(caller common.Address, personID personid.ID, tokenAmount, minCoinOut *big.Int) (*big.Int, error) {
	if m.failSell != nil {
		return nil, m.failSell
	}
	return m.sellCoinOut, nil
}

func (m *mockCurveEngine) QuoteBuy(personID personid.ID, coinIn *big.Int) (*big.Int, *big.Int, error) {
	return m.buyTokensOut, m.fee, nil
}

func (m *mockCurveEngine) QuoteSell(personID personid.ID, tokenAmount *big.Int) (*big.Int, *big.Int, error) {
	return m.sellCoinOut, m.fee, nil
}

var (
	routerSelfAddr = common.HexToAddress("0x00000000000000000000000000000000000b01")
	buyerAddr      = common.HexToAddress("0x00000000000000000000000000000000000b02")
	sellerAddr     = common.HexToAddress("0x00000000000000000000000000000000000b03")
)

func TestBuyForwardsMintedTokensToCaller(t *testing.T) {
	tok := newMockTokenEngine(false)
	crv := &mockCurveEngine{buyTokensOut: big.NewInt(500)}
	st := newMockState()
	e := NewEngine(st, tok, crv, routerSelfAddr)

	tok.balances[routerSelfAddr.Hex()] = big.NewInt(500)

	out, err := e.Buy(buyerAddr, personid.New(), big.NewInt(1_000_000), big.NewInt(0))
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if out.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("tokensOut = %s, want 500", out)
	}
	if balanceOf(tok.balances, buyerAddr).Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("buyer balance = %s, want 500", balanceOf(tok.balances, buyerAddr))
	}
	if balanceOf(tok.balances, routerSelfAddr).Sign() != 0 {
		t.Fatalf("router retained tokens after forwarding: %s", balanceOf(tok.balances, routerSelfAddr))
	}
}

func TestBuyRejectsGraduatedToken(t *testing.T) {
	tok := newMockTokenEngine(true)
	crv := &mockCurveEngine{buyTokensOut: big.NewInt(500)}
	e := NewEngine(newMockState(), tok, crv, routerSelfAddr)

	if _, err := e.Buy(buyerAddr, personid.New(), big.NewInt(1), big.NewInt(0)); err != coreerrors.ErrNotGraduated {
		t.Fatalf("Buy on graduated token = %v, want ErrNotGraduated", err)
	}
}

func TestSellPullsAllowanceAndForwardsCoin(t *testing.T) {
	tok := newMockTokenEngine(false)
	tok.balances[sellerAddr.Hex()] = big.NewInt(1000)
	crv := &mockCurveEngine{sellCoinOut: big.NewInt(750)}
	st := newMockState()
	e := NewEngine(st, tok, crv, routerSelfAddr)

	out, err := e.Sell(sellerAddr, personid.New(), big.NewInt(400), big.NewInt(0))
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	if out.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("coinOut = %s, want 750", out)
	}
	if balanceOf(tok.balances, sellerAddr).Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("seller remaining balance = %s, want 600", balanceOf(tok.balances, sellerAddr))
	}
	if st.sent[sellerAddr.Hex()].Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("coin forwarded to seller = %s, want 750", st.sent[sellerAddr.Hex()])
	}
}

func TestSellRejectsGraduatedToken(t *testing.T) {
	tok := newMockTokenEngine(true)
	crv := &mockCurveEngine{sellCoinOut: big.NewInt(1)}
	e := NewEngine(newMockState(), tok, crv, routerSelfAddr)

	if _, err := e.Sell(sellerAddr, personid.New(), big.NewInt(1), big.NewInt(0)); err != coreerrors.ErrNotGraduated {
		t.Fatalf("Sell on graduated token = %v, want ErrNotGraduated", err)
	}
}

func TestQuoteBuyPassesThroughCurveSource(t *testing.T) {
	tok := newMockTokenEngine(false)
	crv := &mockCurveEngine{buyTokensOut: big.NewInt(10), fee: big.NewInt(1)}
	e := NewEngine(newMockState(), tok, crv, routerSelfAddr)

	quote, err := e.QuoteBuy(personid.New(), big.NewInt(100))
	if err != nil {
		t.Fatalf("QuoteBuy: %v", err)
	}
	if quote.Source != SourceCurve || quote.AmountOut.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}
