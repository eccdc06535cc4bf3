package treasury

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/metrics"
	"github.com/nilecore/soulcore/reentrancy"
)

var errNilState = errors.New("treasury: state not configured")

// state abstracts the persistence backend. The whole ledger is a single
// record; there is no per-creator sharding the way native/creator shards
// stakes and payout ledgers per creator address, since treasury accounting
// is small and read/written together.
type state interface {
	LedgerGet() (*Ledger, error)
	LedgerPut(ledger *Ledger) error
	// Send moves amount of native coin out of the treasury to dest. A
	// production binding wires this to the host chain's coin transfer;
	// tests wire it to an in-memory ledger of external balances.
	Send(dest common.Address, amount *big.Int) error
}

// Engine wires treasury business logic to persistence and event emission.
type Engine struct {
	state           state
	emitter         coreevents.Emitter
	owner           common.Address
	creatorGuard    reentrancy.Guard
	protocolGuard   reentrancy.Guard
}

// NewEngine constructs a treasury engine bound to the given storage backend
// and owner address (the only caller permitted to invoke owner-gated ops).
func NewEngine(s state, owner common.Address) *Engine {
	return &Engine{state: s, owner: owner, emitter: coreevents.NoopEmitter{}}
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

func isZeroAddress(addr common.Address) bool { return addr == common.Address{} }

func (e *Engine) ledger() (*Ledger, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ledger, err := e.state.LedgerGet()
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = NewLedger()
	}
	return ledger, nil
}

// ReceiveFees credits creator, protocol, and staker-pool accounting for one
// trade's fee split. Called exclusively by curves; the attached native coin
// value is assumed already transferred into the treasury's balance by the
// caller, matching spec.md §5's checks-effects-interactions model where the
// Curve moves value before calling out.
func (e *Engine) ReceiveFees(creator common.Address, creatorFee, protocolFee, stakerFee *big.Int) error {
	ledger, err := e.ledger()
	if err != nil {
		return err
	}
	if creatorFee == nil || protocolFee == nil || stakerFee == nil {
		return coreerrors.ErrInsufficientPayment
	}
	if creatorFee.Sign() < 0 || protocolFee.Sign() < 0 || stakerFee.Sign() < 0 {
		return coreerrors.ErrInsufficientPayment
	}
	key := creator.Hex()
	existing, ok := ledger.CreatorBalances[key]
	if !ok {
		existing = big.NewInt(0)
	}
	ledger.CreatorBalances[key] = new(big.Int).Add(existing, creatorFee)
	ledger.TotalCreatorFees = new(big.Int).Add(ledger.TotalCreatorFees, creatorFee)
	ledger.ProtocolPending = new(big.Int).Add(ledger.ProtocolPending, protocolFee)
	ledger.ProtocolCumulative = new(big.Int).Add(ledger.ProtocolCumulative, protocolFee)
	ledger.StakerPool = new(big.Int).Add(ledger.StakerPool, stakerFee)
	if err := e.state.LedgerPut(ledger); err != nil {
		return err
	}
	e.emit(FeesReceivedEvent(creator, creatorFee, protocolFee, stakerFee))

	m := metrics.Soulcore()
	m.TreasuryBalance.WithLabelValues("protocol_pending").Set(wadFloat(ledger.ProtocolPending))
	m.TreasuryBalance.WithLabelValues("staker_pool").Set(wadFloat(ledger.StakerPool))
	return nil
}

func wadFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f := new(big.Float).SetInt(v)
	out, _ := f.Float64()
	return out
}

// CreatorWithdraw drains the caller's accrued creator balance to themself.
// Non-reentrant per spec.md §5.
func (e *Engine) CreatorWithdraw(caller common.Address) error {
	if err := e.creatorGuard.Enter(); err != nil {
		return err
	}
	defer e.creatorGuard.Exit()

	ledger, err := e.ledger()
	if err != nil {
		return err
	}
	key := caller.Hex()
	amount, ok := ledger.CreatorBalances[key]
	if !ok || amount.Sign() <= 0 {
		return coreerrors.ErrInsufficientBalance
	}
	// Effects before the external send: zero the balance first so a
	// reentrant call (blocked by the guard above, but also safe in depth)
	// observes the already-settled state.
	ledger.CreatorBalances[key] = big.NewInt(0)
	if err := e.state.LedgerPut(ledger); err != nil {
		return err
	}
	if err := e.state.Send(caller, amount); err != nil {
		return coreerrors.ErrTransferFailed
	}
	e.emit(CreatorWithdrawEvent(caller, amount))
	metrics.Soulcore().CreatorWithdrawn.Add(wadFloat(amount))
	return nil
}

// ProtocolWithdraw drains the pending protocol balance to the configured
// protocol wallet. Owner-only, non-reentrant.
func (e *Engine) ProtocolWithdraw(caller common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	if err := e.protocolGuard.Enter(); err != nil {
		return err
	}
	defer e.protocolGuard.Exit()

	ledger, err := e.ledger()
	if err != nil {
		return err
	}
	if isZeroAddress(ledger.ProtocolWallet) {
		return coreerrors.ErrZeroAddress
	}
	amount := ledger.ProtocolPending
	if amount == nil || amount.Sign() <= 0 {
		return coreerrors.ErrInsufficientBalance
	}
	ledger.ProtocolPending = big.NewInt(0)
	if err := e.state.LedgerPut(ledger); err != nil {
		return err
	}
	if err := e.state.Send(ledger.ProtocolWallet, amount); err != nil {
		return coreerrors.ErrTransferFailed
	}
	e.emit(ProtocolWithdrawEvent(ledger.ProtocolWallet, amount))
	metrics.Soulcore().ProtocolWithdraw.Add(wadFloat(amount))
	return nil
}

// SetProtocolWallet rotates the destination for ProtocolWithdraw. Owner-only.
func (e *Engine) SetProtocolWallet(caller common.Address, newWallet common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	if isZeroAddress(newWallet) {
		return coreerrors.ErrZeroAddress
	}
	ledger, err := e.ledger()
	if err != nil {
		return err
	}
	old := ledger.ProtocolWallet
	ledger.ProtocolWallet = newWallet
	if err := e.state.LedgerPut(ledger); err != nil {
		return err
	}
	e.emit(ProtocolWalletUpdatedEvent(old, newWallet))
	return nil
}

// CreatorBalance returns a creator's current withdrawable balance.
func (e *Engine) CreatorBalance(creator common.Address) (*big.Int, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, err
	}
	amount, ok := ledger.CreatorBalances[creator.Hex()]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(amount), nil
}

// Snapshot returns a copy of the full ledger, for observability and tests.
func (e *Engine) Snapshot() (*Ledger, error) {
	ledger, err := e.ledger()
	if err != nil {
		return nil, err
	}
	return ledger.Clone(), nil
}
