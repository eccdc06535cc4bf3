package router

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/reentrancy"
	"github.com/nilecore/soulcore/token"
)

// state is the coin-forwarding hook the router needs to settle a sell: the
// curve already paid the router its net proceeds, so the router forwards
// that amount on to the actual seller.
type state interface {
	Send(dest common.Address, amount *big.Int) error
}

// tokenEngine is the narrow surface of token.Engine the router needs: a
// phase read (to gate the post-graduation stub) and the transfer primitives
// it uses to ferry tokens to and from the caller.
type tokenEngine interface {
	Meta(personID personid.ID) (*token.Meta, error)
	Transfer(personID personid.ID, from, to common.Address, amount *big.Int) error
	TransferFrom(personID personid.ID, spender, from, to common.Address, amount *big.Int) error
}

// curveEngine is the narrow surface of curve.Engine the router mediates
// trades through.
type curveEngine interface {
	Buy(caller common.Address, personID personid.ID, coinIn, minTokensOut *big.Int) (*big.Int, error)
	Sell(caller common.Address, personID personid.ID, tokenAmount, minCoinOut *big.Int) (*big.Int, error)
	QuoteBuy(personID personid.ID, coinIn *big.Int) (*big.Int, *big.Int, error)
	QuoteSell(personID personid.ID, tokenAmount *big.Int) (*big.Int, *big.Int, error)
}

// Engine mediates trades between callers and the curve. It holds neither
// balances nor reserve accounting beyond the transient in-flight values of
// a single Buy/Sell call.
type Engine struct {
	state   state
	token   tokenEngine
	curve   curveEngine
	address common.Address

	guard reentrancy.Guard
}

// NewEngine constructs a router engine. address is the router's own
// address, used as the transient holder of minted tokens during Buy and as
// the puller of record during Sell.
func NewEngine(s state, tok tokenEngine, curve curveEngine, address common.Address) *Engine {
	return &Engine{state: s, token: tok, curve: curve, address: address}
}

// Address returns the router's own address, the value the factory wires in
// as a token's minter at graduation.
func (e *Engine) Address() common.Address { return e.address }

func (e *Engine) graduated(personID personid.ID) (bool, error) {
	meta, err := e.token.Meta(personID)
	if err != nil {
		return false, err
	}
	return meta.Graduated, nil
}

// Buy mediates a buy: calls curve.Buy with the router itself as the minted
// tokens' transient recipient, then forwards the tokens on to caller. Fails
// ErrNotGraduated once a token has graduated, since routing then belongs to
// the post-graduation market (not yet implemented).
func (e *Engine) Buy(caller common.Address, personID personid.ID, coinIn, minTokensOut *big.Int) (*big.Int, error) {
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()

	graduated, err := e.graduated(personID)
	if err != nil {
		return nil, err
	}
	if graduated {
		return nil, coreerrors.ErrNotGraduated
	}

	tokensOut, err := e.curve.Buy(e.address, personID, coinIn, minTokensOut)
	if err != nil {
		return nil, err
	}
	if err := e.token.Transfer(personID, e.address, caller, tokensOut); err != nil {
		return nil, err
	}
	return tokensOut, nil
}

// Sell mediates a sell: pulls tokenAmount from caller via allowance, calls
// curve.Sell with the router as seller-of-record, then forwards the
// received coin on to caller.
func (e *Engine) Sell(caller common.Address, personID personid.ID, tokenAmount, minCoinOut *big.Int) (*big.Int, error) {
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()

	graduated, err := e.graduated(personID)
	if err != nil {
		return nil, err
	}
	if graduated {
		return nil, coreerrors.ErrNotGraduated
	}

	if err := e.token.TransferFrom(personID, e.address, caller, e.address, tokenAmount); err != nil {
		return nil, err
	}

	netOut, err := e.curve.Sell(e.address, personID, tokenAmount, minCoinOut)
	if err != nil {
		return nil, err
	}
	if err := e.state.Send(caller, netOut); err != nil {
		return nil, coreerrors.ErrTransferFailed
	}
	return netOut, nil
}

// QuoteBuy returns the curve's read-only buy quote. Pre-graduation, the
// curve is the only live source.
func (e *Engine) QuoteBuy(personID personid.ID, coinIn *big.Int) (*Quote, error) {
	graduated, err := e.graduated(personID)
	if err != nil {
		return nil, err
	}
	if graduated {
		return nil, coreerrors.ErrNotGraduated
	}
	tokensOut, fee, err := e.curve.QuoteBuy(personID, coinIn)
	if err != nil {
		return nil, err
	}
	return &Quote{AmountOut: tokensOut, Fee: fee, Source: SourceCurve}, nil
}

// QuoteSell returns the curve's read-only sell quote. Pre-graduation, the
// curve is the only live source.
func (e *Engine) QuoteSell(personID personid.ID, tokenAmount *big.Int) (*Quote, error) {
	graduated, err := e.graduated(personID)
	if err != nil {
		return nil, err
	}
	if graduated {
		return nil, coreerrors.ErrNotGraduated
	}
	coinOut, fee, err := e.curve.QuoteSell(personID, tokenAmount)
	if err != nil {
		return nil, err
	}
	return &Quote{AmountOut: coinOut, Fee: fee, Source: SourceCurve}, nil
}
