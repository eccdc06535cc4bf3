// Package errors collects the shared, cross-component error taxonomy named
// in the spec: the tags surfaced to callers regardless of which subsystem
// raised them. Component-internal errors that never cross a package
// boundary stay local to that component, mirroring core/errors/stake.go's
// narrow, single-purpose sentinel files.
package errors

import stderrors "errors"

var (
	// ErrTokenAlreadyExists is returned when Factory.CreateSoulToken is called
	// for a person_id that already has a registered TokenPair.
	ErrTokenAlreadyExists = stderrors.New("soulcore: token already exists")
	// ErrTokenNotFound is returned when a lookup references an unregistered person_id.
	ErrTokenNotFound = stderrors.New("soulcore: token not found")
	// ErrOnlyMinter is returned when Mint/Burn is called by anyone but the current minter.
	ErrOnlyMinter = stderrors.New("soulcore: caller is not the minter")
	// ErrOnlyFactory is returned when SetMinter/SetPhase is called by anyone but the factory.
	ErrOnlyFactory = stderrors.New("soulcore: caller is not the factory")
	// ErrCurveNotActive is returned when buy/sell is attempted on a graduated curve.
	ErrCurveNotActive = stderrors.New("soulcore: curve is not active")
	// ErrInsufficientPayment is returned when a buy attaches zero or insufficient value.
	ErrInsufficientPayment = stderrors.New("soulcore: insufficient payment")
	// ErrInsufficientTokens is returned when a sell references more tokens than held.
	ErrInsufficientTokens = stderrors.New("soulcore: insufficient tokens")
	// ErrSlippageExceeded is returned when a trade's output violates its minimum bound.
	ErrSlippageExceeded = stderrors.New("soulcore: slippage exceeded")
	// ErrTransferFailed is returned when a native-coin transfer is rejected.
	ErrTransferFailed = stderrors.New("soulcore: transfer failed")
	// ErrInsufficientBalance is returned when a withdrawal is attempted against a zero balance.
	ErrInsufficientBalance = stderrors.New("soulcore: insufficient balance")
	// ErrZeroAddress is returned when an operation rejects the zero address.
	ErrZeroAddress = stderrors.New("soulcore: zero address not allowed")
	// ErrNotAuthorized is returned by owner-gated or agent-gated operations.
	ErrNotAuthorized = stderrors.New("soulcore: not authorized")
	// ErrAlreadyVoted is returned when an agent votes twice on the same report.
	ErrAlreadyVoted = stderrors.New("soulcore: agent already voted")
	// ErrAlreadyFinalized is returned when voting is attempted on a finalized report.
	ErrAlreadyFinalized = stderrors.New("soulcore: report already finalized")
	// ErrInvalidImpactScore is returned when impact_score falls outside [-100, 100].
	ErrInvalidImpactScore = stderrors.New("soulcore: invalid impact score")
	// ErrNotGraduated is returned by the router's post-graduation stub.
	ErrNotGraduated = stderrors.New("soulcore: token has not graduated")
	// ErrAlreadyGraduated is returned when graduation is attempted twice.
	ErrAlreadyGraduated = stderrors.New("soulcore: token already graduated")
)
