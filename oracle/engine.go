package oracle

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"lukechampine.com/blake3"

	coreerrors "github.com/nilecore/soulcore/core/errors"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/metrics"
	"github.com/nilecore/soulcore/personid"
)

var (
	errNilState     = errors.New("oracle: state not configured")
	errReportNotFound = errors.New("oracle: report not found")
)

// state abstracts the oracle's persistence: the authorized agent set (plus a
// maintained count), the report table keyed by report id, the has-voted
// table, and a monotonic counter used to derive fresh report ids.
type state interface {
	AgentIsAuthorized(agent common.Address) (bool, error)
	AgentSet(agent common.Address, authorized bool) error
	AgentCount() (uint32, error)
	NextReportSeq() (uint64, error)
	ReportGet(id [32]byte) (*Report, bool, error)
	ReportPut(r *Report) error
	HasVotedGet(id [32]byte, agent common.Address) (bool, error)
	HasVotedSet(id [32]byte, agent common.Address, voted bool) error
}

// Engine wires oracle business logic to persistence and event emission.
type Engine struct {
	state   state
	emitter coreevents.Emitter
	owner   common.Address
}

// NewEngine constructs an oracle engine bound to its storage backend and
// owner address (the only caller permitted to authorize/revoke agents).
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

// AuthorizeAgent grants agent submit/vote rights. Owner-only.
func (e *Engine) AuthorizeAgent(caller, agent common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	if e == nil || e.state == nil {
		return errNilState
	}
	already, err := e.state.AgentIsAuthorized(agent)
	if err != nil {
		return err
	}
	if already {
		return nil
	}
	if err := e.state.AgentSet(agent, true); err != nil {
		return err
	}
	e.emit(AgentAuthorizedEvent(agent))
	return nil
}

// RevokeAgent removes agent's submit/vote rights. Owner-only.
func (e *Engine) RevokeAgent(caller, agent common.Address) error {
	if caller != e.owner {
		return coreerrors.ErrNotAuthorized
	}
	if e == nil || e.state == nil {
		return errNilState
	}
	authorized, err := e.state.AgentIsAuthorized(agent)
	if err != nil {
		return err
	}
	if !authorized {
		return nil
	}
	if err := e.state.AgentSet(agent, false); err != nil {
		return err
	}
	e.emit(AgentRevokedEvent(agent))
	return nil
}

func requiredQuorum(agentCount uint32) uint32 {
	if agentCount == 0 {
		return 1
	}
	// ceil(2*agentCount/3), minimum 1.
	q := (2*agentCount + 2) / 3
	if q < 1 {
		q = 1
	}
	return q
}

// deriveReportID produces a deterministic report identifier from the
// submission's content and a monotonic sequence number, the way
// token.PermitDomainSeparator derives its digest: a blake3 hash over a
// fixed-layout buffer rather than a counter alone, so report ids double as
// a content-addressed audit trail.
func deriveReportID(seq uint64, personID personid.ID, eventType, headline string, submitter common.Address) [32]byte {
	buf := make([]byte, 0, 8+16+len(eventType)+len(headline)+20)
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	buf = append(buf, seqBytes...)
	idBytes := personID.Bytes()
	buf = append(buf, idBytes[:]...)
	buf = append(buf, []byte(eventType)...)
	buf = append(buf, []byte(headline)...)
	buf = append(buf, submitter[:]...)
	return blake3.Sum256(buf)
}

// SubmitReport allocates a fresh report. Agent-only. Pre-records the
// submitter as the first confirmation and snapshots required_quorum from
// the agent_count at submission time; later authorizations never change a
// pending report's bar.
func (e *Engine) SubmitReport(submitter common.Address, personID personid.ID, eventType, headline string, impactScore int32) (*Report, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	authorized, err := e.state.AgentIsAuthorized(submitter)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, coreerrors.ErrNotAuthorized
	}
	if impactScore < MinImpactScore || impactScore > MaxImpactScore {
		return nil, coreerrors.ErrInvalidImpactScore
	}

	agentCount, err := e.state.AgentCount()
	if err != nil {
		return nil, err
	}
	seq, err := e.state.NextReportSeq()
	if err != nil {
		return nil, err
	}
	id := deriveReportID(seq, personID, eventType, headline, submitter)
	quorum := requiredQuorum(agentCount)

	report := &Report{
		ID:             id,
		PersonID:       personID,
		EventType:      eventType,
		Headline:       headline,
		ImpactScore:    impactScore,
		Submitter:      submitter,
		Confirmations:  1,
		RequiredQuorum: quorum,
		AgentCount:     agentCount,
	}
	if err := e.state.HasVotedSet(id, submitter, true); err != nil {
		return nil, err
	}
	if quorum <= 1 {
		report.Finalized = true
		report.Accepted = true
	}
	if err := e.state.ReportPut(report); err != nil {
		return nil, err
	}
	e.emit(ReportSubmittedEvent(id, personID, submitter))
	if report.Finalized {
		e.emit(ReportFinalizedEvent(id, report.Accepted, report.ImpactScore))
		recordFinalized(report.Accepted)
	}
	return report.Clone(), nil
}

// Vote casts agent's confirm/reject vote on a pending report. Agent-only;
// fails AlreadyFinalized or AlreadyVoted. Finalizes as accepted once
// confirmations reach the snapshotted quorum, or as rejected once rejections
// make reaching quorum arithmetically impossible.
func (e *Engine) Vote(agent common.Address, id [32]byte, approve bool) (*Report, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	authorized, err := e.state.AgentIsAuthorized(agent)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, coreerrors.ErrNotAuthorized
	}
	report, ok, err := e.state.ReportGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errReportNotFound
	}
	if report.Finalized {
		return nil, coreerrors.ErrAlreadyFinalized
	}
	voted, err := e.state.HasVotedGet(id, agent)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, coreerrors.ErrAlreadyVoted
	}

	if err := e.state.HasVotedSet(id, agent, true); err != nil {
		return nil, err
	}
	if approve {
		report.Confirmations++
	} else {
		report.Rejections++
	}

	switch {
	case report.Confirmations >= report.RequiredQuorum:
		report.Finalized = true
		report.Accepted = true
	case report.Rejections > report.AgentCount-report.RequiredQuorum:
		report.Finalized = true
		report.Accepted = false
	}

	if err := e.state.ReportPut(report); err != nil {
		return nil, err
	}
	e.emit(VoteCastEvent(id, agent, approve))
	if report.Finalized {
		e.emit(ReportFinalizedEvent(id, report.Accepted, report.ImpactScore))
		recordFinalized(report.Accepted)
	}
	return report.Clone(), nil
}

func recordFinalized(accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	metrics.Soulcore().ReportsFinalized.WithLabelValues(outcome).Inc()
}

// GetReport returns a read-only snapshot of the report.
func (e *Engine) GetReport(id [32]byte) (*Report, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	report, ok, err := e.state.ReportGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errReportNotFound
	}
	return report.Clone(), nil
}
