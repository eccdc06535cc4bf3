package factory

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/token"
)

var errNilState = errors.New("factory: state not configured")

// state abstracts the registry's own persistence: the person_id -> Pair
// table and the append-only deployment order.
type state interface {
	PairGet(id personid.ID) (*Pair, bool, error)
	PairPut(p *Pair) error
	AppendPersonID(id personid.ID) error
	TotalTokens() (uint64, error)
}

// tokenEngine is the narrow surface of token.Engine the factory drives.
type tokenEngine interface {
	Create(personID personid.ID, addr, factory common.Address, name, symbol string) (*token.Meta, error)
	SetMinter(caller common.Address, personID personid.ID, newMinter common.Address) error
	SetPhase(caller common.Address, personID personid.ID, newPhase token.Phase) error
	Meta(personID personid.ID) (*token.Meta, error)
}

// curveEngine is the narrow surface of curve.Engine the factory drives.
type curveEngine interface {
	CreateCurve(personID personid.ID, curveAddr, tokenAddr, creator common.Address, graduationThreshold *big.Int) error
}

// Engine wires factory business logic: deterministic deployment, the
// registry, and the default graduation threshold applied to future curves.
type Engine struct {
	state state
	token tokenEngine
	curve curveEngine

	emitter coreevents.Emitter
	address common.Address // the factory's own address, anchors address derivation and gates Token.SetMinter/SetPhase
	owner   common.Address

	mu                         sync.Mutex
	defaultGraduationThreshold *big.Int
}

// NewEngine constructs a factory engine. address is the factory's own
// deterministic anchor (passed as the Token's `factory` field and as the
// caller of SetMinter/SetPhase); owner is the only caller permitted to
// change the default graduation threshold or graduate a token.
func NewEngine(s state, tok tokenEngine, curve curveEngine, address, owner common.Address, defaultGraduationThreshold *big.Int) *Engine {
	return &Engine{
		state:                      s,
		token:                      tok,
		curve:                      curve,
		emitter:                    coreevents.NoopEmitter{},
		address:                    address,
		owner:                      owner,
		defaultGraduationThreshold: new(big.Int).Set(defaultGraduationThreshold),
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

// Address returns the factory's own deterministic-derivation anchor.
func (e *Engine) Address() common.Address { return e.address }

// CreateSoulToken deploys the Token and Curve for personID at their
// deterministic addresses, wires the Curve in as the token's minter, and
// records the pair. caller becomes the creator recorded against the pair
// and credited the creator share of future trading fees. Fails
// ErrTokenAlreadyExists if person_id is already registered.
func (e *Engine) CreateSoulToken(caller common.Address, personID personid.ID, name, symbol string) (common.Address, common.Address, error) {
	if e == nil || e.state == nil {
		return common.Address{}, common.Address{}, errNilState
	}
	if _, ok, err := e.state.PairGet(personID); err != nil {
		return common.Address{}, common.Address{}, err
	} else if ok {
		return common.Address{}, common.Address{}, coreerrors.ErrTokenAlreadyExists
	}

	tokenAddr := DeriveTokenAddress(e.address, personID)
	curveAddr := DeriveCurveAddress(e.address, personID)

	if _, err := e.token.Create(personID, tokenAddr, e.address, name, symbol); err != nil {
		return common.Address{}, common.Address{}, err
	}
	if err := e.token.SetMinter(e.address, personID, curveAddr); err != nil {
		return common.Address{}, common.Address{}, err
	}

	threshold := e.graduationThresholdSnapshot()
	if err := e.curve.CreateCurve(personID, curveAddr, tokenAddr, caller, threshold); err != nil {
		return common.Address{}, common.Address{}, err
	}

	pair := &Pair{PersonID: personID, Token: tokenAddr, Curve: curveAddr, Creator: caller}
	if err := e.state.PairPut(pair); err != nil {
		return common.Address{}, common.Address{}, err
	}
	if err := e.state.AppendPersonID(personID); err != nil {
		return common.Address{}, common.Address{}, err
	}

	e.emit(SoulTokenCreatedEvent(personID, tokenAddr, curveAddr, caller, name, symbol))
	return tokenAddr, curveAddr, nil
}

// GetTokenPair returns the registered Token/Curve pair for personID.
func (e *Engine) GetTokenPair(personID personid.ID) (*Pair, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	pair, ok, err := e.state.PairGet(personID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, coreerrors.ErrTokenNotFound
	}
	return pair.Clone(), nil
}

// TotalTokens returns the number of registered pairs.
func (e *Engine) TotalTokens() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.TotalTokens()
}

func (e *Engine) graduationThresholdSnapshot() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.defaultGraduationThreshold)
}

// SetGraduationThreshold updates the default graduation threshold applied
// to curves created from this point forward. Owner-only; never alters an
// already-deployed curve's own threshold.
func (e *Engine) SetGraduationThreshold(caller common.Address, newThreshold *big.Int) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultGraduationThreshold = new(big.Int).Set(newThreshold)
	return nil
}

// GraduateToken advances personID's token to the AMM phase and rotates its
// minter to newMinter (the post-graduation router). Owner-only.
func (e *Engine) GraduateToken(caller common.Address, personID personid.ID, newMinter common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	if _, err := e.GetTokenPair(personID); err != nil {
		return err
	}
	meta, err := e.token.Meta(personID)
	if err != nil {
		return err
	}
	if meta.Graduated {
		return coreerrors.ErrAlreadyGraduated
	}
	if err := e.token.SetMinter(e.address, personID, newMinter); err != nil {
		return err
	}
	return e.token.SetPhase(e.address, personID, token.PhaseAMM)
}
