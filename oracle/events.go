package oracle

import (
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	coreevents "github.com/nilecore/soulcore/core/events"
	coretypes "github.com/nilecore/soulcore/core/types"
	"github.com/nilecore/soulcore/personid"
)

const (
	// EventTypeAgentAuthorized is emitted when the owner authorizes a new agent.
	EventTypeAgentAuthorized = "oracle.agent.authorized"
	// EventTypeAgentRevoked is emitted when the owner revokes an agent.
	EventTypeAgentRevoked = "oracle.agent.revoked"
	// EventTypeReportSubmitted is emitted when a new report is allocated.
	EventTypeReportSubmitted = "oracle.report.submitted"
	// EventTypeVoteCast is emitted on every accepted vote.
	EventTypeVoteCast = "oracle.vote.cast"
	// EventTypeReportFinalized is emitted once a report reaches a terminal state.
	EventTypeReportFinalized = "oracle.report.finalized"
)

type eventEnvelope struct {
	evt *coretypes.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// WrapEvent adapts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *coretypes.Event) coreevents.Event { return eventEnvelope{evt: evt} }

func hexID(id [32]byte) string { return hex.EncodeToString(id[:]) }

// AgentAuthorizedEvent captures an agent gaining submit/vote rights.
func AgentAuthorizedEvent(agent common.Address) *coretypes.Event {
	return &coretypes.Event{
		Type:       EventTypeAgentAuthorized,
		Attributes: map[string]string{"agent": agent.Hex()},
	}
}

// AgentRevokedEvent captures an agent losing submit/vote rights.
func AgentRevokedEvent(agent common.Address) *coretypes.Event {
	return &coretypes.Event{
		Type:       EventTypeAgentRevoked,
		Attributes: map[string]string{"agent": agent.Hex()},
	}
}

// ReportSubmittedEvent captures a fresh report allocation.
func ReportSubmittedEvent(id [32]byte, personID personid.ID, submitter common.Address) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeReportSubmitted,
		Attributes: map[string]string{
			"reportId":  hexID(id),
			"personId":  personID.String(),
			"submitter": submitter.Hex(),
		},
	}
}

// VoteCastEvent captures a single agent's vote.
func VoteCastEvent(id [32]byte, agent common.Address, approve bool) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeVoteCast,
		Attributes: map[string]string{
			"reportId": hexID(id),
			"agent":    agent.Hex(),
			"approve":  boolString(approve),
		},
	}
}

// ReportFinalizedEvent captures a report reaching a terminal state.
func ReportFinalizedEvent(id [32]byte, accepted bool, impactScore int32) *coretypes.Event {
	return &coretypes.Event{
		Type: EventTypeReportFinalized,
		Attributes: map[string]string{
			"reportId":    hexID(id),
			"accepted":    boolString(accepted),
			"impactScore": intString(impactScore),
		},
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func intString(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
