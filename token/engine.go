package token

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"lukechampine.com/blake3"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/personid"
)

var (
	errNilState       = errors.New("token: state not configured")
	errAlreadyCreated = errors.New("token: already created for this person")
	errNotFound       = errors.New("token: meta not found")
	errPhaseRegress   = errors.New("token: phase may not move backwards")
)

// state abstracts the persistence backend the engine needs, mirroring
// native/creator's engineState interface: a narrow surface the engine can
// be unit tested against with an in-memory mock.
type state interface {
	MetaGet(id personid.ID) (*Meta, bool, error)
	MetaPut(meta *Meta) error
	BalanceGet(id personid.ID, holder common.Address) (*big.Int, error)
	BalancePut(id personid.ID, holder common.Address, balance *big.Int) error
	AllowanceGet(id personid.ID, owner, spender common.Address) (*big.Int, error)
	AllowancePut(id personid.ID, owner, spender common.Address, amount *big.Int) error
}

// Engine wires token business logic to persistence and event emission.
type Engine struct {
	state   state
	emitter coreevents.Emitter
}

// NewEngine constructs a token engine bound to the given storage backend.
func NewEngine(s state) *Engine {
	return &Engine{state: s, emitter: coreevents.NoopEmitter{}}
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

func isZeroAddress(addr common.Address) bool {
	return addr == common.Address{}
}

// Create registers a brand-new token for personID. Called exclusively by
// the factory at deployment time; the factory is responsible for enforcing
// the one-token-per-person invariant at the registry level, so Create only
// guards against the engine itself being asked to double-create.
func (e *Engine) Create(personID personid.ID, addr, factory common.Address, name, symbol string) (*Meta, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok, err := e.state.MetaGet(personID); err != nil {
		return nil, err
	} else if ok {
		return nil, errAlreadyCreated
	}
	meta := &Meta{
		PersonID:    personID,
		Address:     addr,
		Factory:     factory,
		Phase:       PhaseBonding,
		Name:        name,
		Symbol:      symbol,
		TotalSupply: big.NewInt(0),
	}
	if err := e.state.MetaPut(meta); err != nil {
		return nil, err
	}
	return meta.Clone(), nil
}

// Meta returns a copy of the token's metadata.
func (e *Engine) Meta(personID personid.ID) (*Meta, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	meta, ok, err := e.state.MetaGet(personID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotFound
	}
	return meta.Clone(), nil
}

// SetMinter rotates the active minter. Only the factory may call this.
// Rotating to the zero address is allowed and disables minting, used
// during controlled shutdowns.
func (e *Engine) SetMinter(caller common.Address, personID personid.ID, newMinter common.Address) error {
	meta, err := e.mustMeta(personID)
	if err != nil {
		return err
	}
	if caller != meta.Factory {
		return coreerrors.ErrOnlyFactory
	}
	old := meta.Minter
	meta.Minter = newMinter
	if err := e.state.MetaPut(meta); err != nil {
		return err
	}
	e.emit(MinterUpdatedEvent(meta.Address, old, newMinter))
	return nil
}

// SetPhase advances the token's lifecycle phase. Only the factory may call
// this. Transitioning into AMM irreversibly sets Graduated.
func (e *Engine) SetPhase(caller common.Address, personID personid.ID, newPhase Phase) error {
	meta, err := e.mustMeta(personID)
	if err != nil {
		return err
	}
	if caller != meta.Factory {
		return coreerrors.ErrOnlyFactory
	}
	if newPhase < meta.Phase {
		return errPhaseRegress
	}
	old := meta.Phase
	meta.Phase = newPhase
	if newPhase == PhaseAMM {
		meta.Graduated = true
	}
	if err := e.state.MetaPut(meta); err != nil {
		return err
	}
	e.emit(PhaseChangedEvent(meta.Address, old, newPhase))
	return nil
}

// Mint increases total supply and credits to. Only the current minter may call this.
func (e *Engine) Mint(caller common.Address, personID personid.ID, to common.Address, amount *big.Int) error {
	meta, err := e.mustMeta(personID)
	if err != nil {
		return err
	}
	if caller != meta.Minter || isZeroAddress(meta.Minter) {
		return coreerrors.ErrOnlyMinter
	}
	if isZeroAddress(to) {
		return coreerrors.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInsufficientTokens
	}
	balance, err := e.state.BalanceGet(personID, to)
	if err != nil {
		return err
	}
	balance = addBig(balance, amount)
	if err := e.state.BalancePut(personID, to, balance); err != nil {
		return err
	}
	meta.TotalSupply = addBig(meta.TotalSupply, amount)
	return e.state.MetaPut(meta)
}

// Burn decreases total supply and debits from. Only the current minter may call this.
func (e *Engine) Burn(caller common.Address, personID personid.ID, from common.Address, amount *big.Int) error {
	meta, err := e.mustMeta(personID)
	if err != nil {
		return err
	}
	if caller != meta.Minter || isZeroAddress(meta.Minter) {
		return coreerrors.ErrOnlyMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInsufficientTokens
	}
	balance, err := e.state.BalanceGet(personID, from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientTokens
	}
	balance = new(big.Int).Sub(balance, amount)
	if err := e.state.BalancePut(personID, from, balance); err != nil {
		return err
	}
	meta.TotalSupply = new(big.Int).Sub(meta.TotalSupply, amount)
	return e.state.MetaPut(meta)
}

// BalanceOf returns the holder's current balance.
func (e *Engine) BalanceOf(personID personid.ID, holder common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.BalanceGet(personID, holder)
}

// Allowance returns the amount spender may still draw from owner.
func (e *Engine) Allowance(personID personid.ID, owner, spender common.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.AllowanceGet(personID, owner, spender)
}

// Approve sets the amount spender may draw from owner's balance.
func (e *Engine) Approve(personID personid.ID, owner, spender common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	return e.state.AllowancePut(personID, owner, spender, new(big.Int).Set(amount))
}

// Transfer moves amount from caller (the sender) to to.
func (e *Engine) Transfer(personID personid.ID, from, to common.Address, amount *big.Int) error {
	if isZeroAddress(to) {
		return coreerrors.ErrZeroAddress
	}
	return e.move(personID, from, to, amount)
}

// TransferFrom moves amount from from to to, drawing down spender's allowance.
func (e *Engine) TransferFrom(personID personid.ID, spender, from, to common.Address, amount *big.Int) error {
	if isZeroAddress(to) {
		return coreerrors.ErrZeroAddress
	}
	allowed, err := e.state.AllowanceGet(personID, from, spender)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return coreerrors.ErrInsufficientTokens
	}
	if allowed.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientTokens
	}
	if err := e.move(personID, from, to, amount); err != nil {
		return err
	}
	remaining := new(big.Int).Sub(allowed, amount)
	return e.state.AllowancePut(personID, from, spender, remaining)
}

func (e *Engine) move(personID personid.ID, from, to common.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInsufficientTokens
	}
	fromBalance, err := e.state.BalanceGet(personID, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return coreerrors.ErrInsufficientTokens
	}
	toBalance, err := e.state.BalanceGet(personID, to)
	if err != nil {
		return err
	}
	if err := e.state.BalancePut(personID, from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return e.state.BalancePut(personID, to, addBig(toBalance, amount))
}

func (e *Engine) mustMeta(personID personid.ID) (*Meta, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	meta, ok, err := e.state.MetaGet(personID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNotFound
	}
	return meta, nil
}

func addBig(a, b *big.Int) *big.Int {
	if a == nil {
		a = big.NewInt(0)
	}
	return new(big.Int).Add(a, b)
}

// NextPermitNonce returns and then increments the monotonic nonce counter
// used to prevent permit-signature replay, once signature verification is
// implemented on top of this bookkeeping.
func (e *Engine) NextPermitNonce(personID personid.ID) (uint64, error) {
	meta, err := e.mustMeta(personID)
	if err != nil {
		return 0, err
	}
	nonce := meta.PermitNonce
	meta.PermitNonce++
	return nonce, e.state.MetaPut(meta)
}

// PermitDomainSeparator derives the domain-separation digest a delegated
// approval signature must be bound to: the chain id and the token address.
// Signature verification itself is out of scope (spec.md §4.2); this only
// fixes the digest a future permit implementation would sign over.
func PermitDomainSeparator(chainID uint64, tokenAddr common.Address) [32]byte {
	buf := make([]byte, 8+len(tokenAddr))
	binary.BigEndian.PutUint64(buf, chainID)
	copy(buf[8:], tokenAddr[:])
	return blake3.Sum256(buf)
}
