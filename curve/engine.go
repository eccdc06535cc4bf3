package curve

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/metrics"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/reentrancy"
	"github.com/nilecore/soulcore/token"
)

var (
	errNilState       = errors.New("curve: state not configured")
	errNotFound       = errors.New("curve: not found")
	errAlreadyCreated = errors.New("curve: already created for this person")
)

// state abstracts the curve's own persistence: one State record per person,
// plus the native-coin payout hook used to settle a sell.
type state interface {
	CurveGet(id personid.ID) (*State, bool, error)
	CurvePut(s *State) error
	Send(dest common.Address, amount *big.Int) error
}

// tokenEngine is the narrow surface of token.Engine the curve needs: minting
// and burning (gated by the token's minter field, which the factory points
// at this curve's address) and reading effective supply off Meta.
type tokenEngine interface {
	Mint(caller common.Address, personID personid.ID, to common.Address, amount *big.Int) error
	Burn(caller common.Address, personID personid.ID, from common.Address, amount *big.Int) error
	Meta(personID personid.ID) (*token.Meta, error)
}

// feeReceiver is the narrow surface of treasury.Engine the curve needs.
type feeReceiver interface {
	ReceiveFees(creator common.Address, creatorFee, protocolFee, stakerFee *big.Int) error
}

// Engine wires bonding-curve business logic to persistence, the token
// engine, and the treasury. One Engine instance manages every person's
// curve, each guarded against re-entry independently.
type Engine struct {
	state    state
	token    tokenEngine
	treasury feeReceiver
	emitter  coreevents.Emitter

	guardMu sync.Mutex
	guards  map[personid.ID]*reentrancy.Guard
}

// NewEngine constructs a curve engine bound to its dependencies.
func NewEngine(s state, tok tokenEngine, treasury feeReceiver) *Engine {
	return &Engine{
		state:    s,
		token:    tok,
		treasury: treasury,
		emitter:  coreevents.NoopEmitter{},
		guards:   make(map[personid.ID]*reentrancy.Guard),
	}
}

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter coreevents.Emitter) {
	if emitter == nil {
		e.emitter = coreevents.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *coretypes.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) guardFor(personID personid.ID) *reentrancy.Guard {
	e.guardMu.Lock()
	defer e.guardMu.Unlock()
	g, ok := e.guards[personID]
	if !ok {
		g = &reentrancy.Guard{}
		e.guards[personID] = g
	}
	return g
}

// CreateCurve registers a brand-new curve for personID, seeded with the
// virtual initial reserve and the supplied graduation threshold. Called
// exclusively by the factory at deployment time.
func (e *Engine) CreateCurve(personID personid.ID, curveAddr, tokenAddr, creator common.Address, graduationThreshold *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if _, ok, err := e.state.CurveGet(personID); err != nil {
		return err
	} else if ok {
		return errAlreadyCreated
	}
	st := &State{
		PersonID:            personID,
		Address:             curveAddr,
		Token:                tokenAddr,
		Creator:              creator,
		ReserveBalance:       InitialReserve(),
		GraduationThreshold:  new(big.Int).Set(graduationThreshold),
		Active:               true,
	}
	return e.state.CurvePut(st)
}

// State returns a copy of the curve's persisted state.
func (e *Engine) State(personID personid.ID) (*State, error) {
	return e.mustState(personID)
}

func (e *Engine) mustState(personID personid.ID) (*State, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	st, ok, err := e.state.CurveGet(personID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotFound
	}
	return st, nil
}

func bpsOf(amount *big.Int, bps int64) *big.Int {
	product := new(big.Int).Mul(amount, big.NewInt(bps))
	return product.Div(product, big.NewInt(10_000))
}

func addBig(a, b *big.Int) *big.Int {
	if a == nil {
		a = big.NewInt(0)
	}
	return new(big.Int).Add(a, b)
}

// feeSplit derives the creator/protocol/staker components of fee, assessed
// against base (coin_in for a buy, gross proceeds for a sell): the staker
// share absorbs whatever integer-division rounding the other two leave
// behind, per spec.md §4.3.
func feeSplit(base, fee *big.Int) (creatorFee, protocolFee, stakerFee *big.Int) {
	creatorFee = bpsOf(base, FeeCreatorBps)
	protocolFee = bpsOf(base, FeeProtocolBps)
	stakerFee = new(big.Int).Sub(fee, new(big.Int).Add(creatorFee, protocolFee))
	if stakerFee.Sign() < 0 {
		stakerFee = big.NewInt(0)
	}
	return creatorFee, protocolFee, stakerFee
}

// Buy executes a trade against the curve. coinIn is assumed already received
// by the curve (the caller's payable value), mirroring treasury.ReceiveFees'
// documented assumption that the value transfer precedes the accounting call.
func (e *Engine) Buy(caller common.Address, personID personid.ID, coinIn, minTokensOut *big.Int) (*big.Int, error) {
	guard := e.guardFor(personID)
	if err := guard.Enter(); err != nil {
		return nil, err
	}
	defer guard.Exit()

	st, err := e.mustState(personID)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return nil, coreerrors.ErrCurveNotActive
	}
	if coinIn == nil || coinIn.Sign() <= 0 {
		return nil, coreerrors.ErrInsufficientPayment
	}

	fee := bpsOf(coinIn, FeeBps)
	netIn := new(big.Int).Sub(coinIn, fee)

	meta, err := e.token.Meta(personID)
	if err != nil {
		return nil, err
	}
	supply := effectiveSupply(meta.TotalSupply)

	tokensOut, err := CalcBuy(supply, st.ReserveBalance, netIn)
	if err != nil {
		return nil, err
	}
	if tokensOut.Cmp(minTokensOut) < 0 {
		return nil, coreerrors.ErrSlippageExceeded
	}

	// Effects: commit the new reserve before any external call (checks-effects-interactions).
	st.ReserveBalance = new(big.Int).Add(st.ReserveBalance, netIn)
	if err := e.state.CurvePut(st); err != nil {
		return nil, err
	}

	// Interaction: mint is on the trading path, so a failure here reverts.
	if err := e.token.Mint(st.Address, personID, caller, tokensOut); err != nil {
		return nil, err
	}

	creatorFee, protocolFee, stakerFee := feeSplit(coinIn, fee)
	if err := e.treasury.ReceiveFees(st.Creator, creatorFee, protocolFee, stakerFee); err != nil {
		// Graceful degradation: a failing treasury must not DoS the trading
		// path. The fee stays inside the curve as additional reserve.
		st.ReserveBalance = new(big.Int).Add(st.ReserveBalance, fee)
		if perr := e.state.CurvePut(st); perr != nil {
			return nil, perr
		}
	}

	newSupply := addBig(meta.TotalSupply, tokensOut)
	newPrice, err := CurrentPrice(effectiveSupply(newSupply), st.ReserveBalance)
	if err != nil {
		return nil, err
	}
	e.emit(BuyEvent(caller, coinIn, tokensOut, fee, newPrice))
	e.recordTrade(personID, "buy", coinIn, st.ReserveBalance)

	if st.Active && st.ReserveBalance.Cmp(st.GraduationThreshold) >= 0 {
		st.Active = false
		if err := e.state.CurvePut(st); err != nil {
			return nil, err
		}
		e.emit(GraduationTriggeredEvent(st.ReserveBalance))
		metrics.Soulcore().GraduationCount.Inc()
	}

	return tokensOut, nil
}

// Sell executes a sell against the curve.
func (e *Engine) Sell(caller common.Address, personID personid.ID, tokenAmount, minCoinOut *big.Int) (*big.Int, error) {
	guard := e.guardFor(personID)
	if err := guard.Enter(); err != nil {
		return nil, err
	}
	defer guard.Exit()

	st, err := e.mustState(personID)
	if err != nil {
		return nil, err
	}
	if !st.Active {
		return nil, coreerrors.ErrCurveNotActive
	}
	if tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, coreerrors.ErrInsufficientTokens
	}

	meta, err := e.token.Meta(personID)
	if err != nil {
		return nil, err
	}
	supply := effectiveSupply(meta.TotalSupply)

	gross, err := CalcSell(supply, st.ReserveBalance, tokenAmount)
	if err != nil {
		return nil, err
	}
	fee := bpsOf(gross, FeeBps)
	net := new(big.Int).Sub(gross, fee)
	if net.Cmp(minCoinOut) < 0 {
		return nil, coreerrors.ErrSlippageExceeded
	}

	// Effects before interactions.
	st.ReserveBalance = new(big.Int).Sub(st.ReserveBalance, gross)
	if st.ReserveBalance.Sign() < 0 {
		st.ReserveBalance = big.NewInt(0)
	}
	if err := e.state.CurvePut(st); err != nil {
		return nil, err
	}

	if err := e.token.Burn(st.Address, personID, caller, tokenAmount); err != nil {
		return nil, err
	}
	if err := e.state.Send(caller, net); err != nil {
		return nil, coreerrors.ErrTransferFailed
	}

	creatorFee, protocolFee, stakerFee := feeSplit(gross, fee)
	if err := e.treasury.ReceiveFees(st.Creator, creatorFee, protocolFee, stakerFee); err != nil {
		st.ReserveBalance = new(big.Int).Add(st.ReserveBalance, fee)
		if perr := e.state.CurvePut(st); perr != nil {
			return nil, perr
		}
	}

	newSupply := new(big.Int).Sub(meta.TotalSupply, tokenAmount)
	newPrice, err := CurrentPrice(effectiveSupply(newSupply), st.ReserveBalance)
	if err != nil {
		return nil, err
	}
	e.emit(SellEvent(caller, tokenAmount, net, fee, newPrice))
	e.recordTrade(personID, "sell", gross, st.ReserveBalance)

	return net, nil
}

// recordTrade updates the shared Prometheus registry with the reserve
// level and trade volume/count for one buy or sell.
func (e *Engine) recordTrade(personID personid.ID, side string, volume, reserve *big.Int) {
	m := metrics.Soulcore()
	label := personID.String()
	m.ReserveBalance.WithLabelValues(label).Set(wadFloat(reserve))
	m.TradeVolume.WithLabelValues(label, side).Add(wadFloat(volume))
	m.TradeCount.WithLabelValues(label, side).Inc()
}

func wadFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f := new(big.Float).SetInt(v)
	out, _ := f.Float64()
	return out
}

// QuoteBuy returns the read-only equivalent of Buy's output: the tokens a
// buy of coinIn would yield, and the fee that would be extracted.
func (e *Engine) QuoteBuy(personID personid.ID, coinIn *big.Int) (*big.Int, *big.Int, error) {
	st, err := e.mustState(personID)
	if err != nil {
		return nil, nil, err
	}
	if coinIn == nil || coinIn.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}
	fee := bpsOf(coinIn, FeeBps)
	netIn := new(big.Int).Sub(coinIn, fee)
	meta, err := e.token.Meta(personID)
	if err != nil {
		return nil, nil, err
	}
	tokensOut, err := CalcBuy(effectiveSupply(meta.TotalSupply), st.ReserveBalance, netIn)
	if err != nil {
		return nil, nil, err
	}
	return tokensOut, fee, nil
}

// QuoteSell returns the read-only equivalent of Sell's output.
func (e *Engine) QuoteSell(personID personid.ID, tokenAmount *big.Int) (*big.Int, *big.Int, error) {
	st, err := e.mustState(personID)
	if err != nil {
		return nil, nil, err
	}
	if tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}
	meta, err := e.token.Meta(personID)
	if err != nil {
		return nil, nil, err
	}
	gross, err := CalcSell(effectiveSupply(meta.TotalSupply), st.ReserveBalance, tokenAmount)
	if err != nil {
		return nil, nil, err
	}
	fee := bpsOf(gross, FeeBps)
	net := new(big.Int).Sub(gross, fee)
	return net, fee, nil
}

// CurrentPrice returns the curve's instantaneous marginal price.
func (e *Engine) CurrentPrice(personID personid.ID) (*big.Int, error) {
	st, err := e.mustState(personID)
	if err != nil {
		return nil, err
	}
	meta, err := e.token.Meta(personID)
	if err != nil {
		return nil, err
	}
	return CurrentPrice(effectiveSupply(meta.TotalSupply), st.ReserveBalance)
}
