// Package oracle implements the agent-quorum reporting system described in
// spec.md §3/§4.6: authorized off-chain agents submit NILE impact reports
// per person and vote them to finalization. Grounded on
// native/governance/engine.go's two-outcome ComputeTally/Finalize pattern
// (accepted-by-quorum vs rejected-once-arithmetically-impossible), narrowed
// from basis-point-weighted voting power down to a simple per-agent count.
package oracle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nilecore/soulcore/personid"
)

// MinImpactScore and MaxImpactScore bound a report's impact_score, inclusive.
const (
	MinImpactScore = -100
	MaxImpactScore = 100
)

// Report is the persisted record for one submitted NILE event report.
type Report struct {
	ID              [32]byte       `json:"id"`
	PersonID        personid.ID    `json:"personId"`
	EventType       string         `json:"eventType"`
	Headline        string         `json:"headline"`
	ImpactScore     int32          `json:"impactScore"`
	Submitter       common.Address `json:"submitter"`
	Confirmations   uint32         `json:"confirmations"`
	Rejections      uint32         `json:"rejections"`
	RequiredQuorum  uint32         `json:"requiredQuorum"`
	AgentCount      uint32         `json:"agentCountAtSubmission"`
	Finalized       bool           `json:"finalized"`
	Accepted        bool           `json:"accepted"`
	SubmittedAt     int64          `json:"submittedAt"`
}

// Clone returns a shallow copy of the report (all fields are value types).
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
