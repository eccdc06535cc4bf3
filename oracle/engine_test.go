package oracle

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	coreerrors "github.com/nilecore/soulcore/core/errors"
	"github.com/nilecore/soulcore/personid"
)

type mockState struct {
	agents    map[string]bool
	count     uint32
	seq       uint64
	reports   map[[32]byte]*Report
	hasVoted  map[string]bool
}

func newMockState() *mockState {
	return &mockState{
		agents:   make(map[string]bool),
		reports:  make(map[[32]byte]*Report),
		hasVoted: make(map[string]bool),
	}
}

func (m *mockState) AgentIsAuthorized(agent common.Address) (bool, error) {
	return m.agents[agent.Hex()], nil
}

func (m *mockState) AgentSet(agent common.Address, authorized bool) error {
	was := m.agents[agent.Hex()]
	m.agents[agent.Hex()] = authorized
	if authorized == was {
		return nil
	}
	if authorized {
		m.count++
	} else if m.count > 0 {
		m.count--
	}
	return nil
}

func (m *mockState) AgentCount() (uint32, error) { return m.count, nil }

func (m *mockState) NextReportSeq() (uint64, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockState) ReportGet(id [32]byte) (*Report, bool, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (m *mockState) ReportPut(r *Report) error {
	m.reports[r.ID] = r.Clone()
	return nil
}

func votedKey(id [32]byte, agent common.Address) string {
	return string(id[:]) + "|" + agent.Hex()
}

func (m *mockState) HasVotedGet(id [32]byte, agent common.Address) (bool, error) {
	return m.hasVoted[votedKey(id, agent)], nil
}

func (m *mockState) HasVotedSet(id [32]byte, agent common.Address, voted bool) error {
	m.hasVoted[votedKey(id, agent)] = voted
	return nil
}

var (
	oracleOwner = common.HexToAddress("0x00000000000000000000000000000000000a01")
	agentA      = common.HexToAddress("0x00000000000000000000000000000000000a02")
	agentB      = common.HexToAddress("0x00000000000000000000000000000000000a03")
	agentC      = common.HexToAddress("0x00000000000000000000000000000000000a04")
)

func TestOracleTwoThirdsAccept(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	for _, agent := range []common.Address{agentA, agentB, agentC} {
		if err := e.AuthorizeAgent(oracleOwner, agent); err != nil {
			t.Fatalf("AuthorizeAgent: %v", err)
		}
	}
	report, err := e.SubmitReport(agentA, personid.New(), "milestone", "shipped v1", 75)
	if err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if report.Finalized {
		t.Fatalf("expected report pending with quorum %d and 1 confirmation", report.RequiredQuorum)
	}
	if report.RequiredQuorum != 2 {
		t.Fatalf("required quorum = %d, want 2", report.RequiredQuorum)
	}
	report, err = e.Vote(agentB, report.ID, true)
	if err != nil {
		t.Fatalf("Vote: %v", err)
	}
	if !report.Finalized || !report.Accepted {
		t.Fatalf("expected finalized accepted, got finalized=%v accepted=%v", report.Finalized, report.Accepted)
	}
	if report.ImpactScore != 75 {
		t.Fatalf("impact score = %d, want 75", report.ImpactScore)
	}
}

func TestOracleRejection(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	for _, agent := range []common.Address{agentA, agentB, agentC} {
		if err := e.AuthorizeAgent(oracleOwner, agent); err != nil {
			t.Fatalf("AuthorizeAgent: %v", err)
		}
	}
	report, err := e.SubmitReport(agentA, personid.New(), "dispute", "flagged", -20)
	if err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	report, err = e.Vote(agentB, report.ID, false)
	if err != nil {
		t.Fatalf("Vote(B): %v", err)
	}
	if report.Finalized {
		t.Fatalf("report finalized too early after a single rejection")
	}
	report, err = e.Vote(agentC, report.ID, false)
	if err != nil {
		t.Fatalf("Vote(C): %v", err)
	}
	if !report.Finalized || report.Accepted {
		t.Fatalf("expected finalized rejected, got finalized=%v accepted=%v", report.Finalized, report.Accepted)
	}
}

func TestVoteRejectsDoubleVote(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	for _, agent := range []common.Address{agentA, agentB, agentC} {
		if err := e.AuthorizeAgent(oracleOwner, agent); err != nil {
			t.Fatalf("AuthorizeAgent: %v", err)
		}
	}
	report, err := e.SubmitReport(agentA, personid.New(), "milestone", "shipped", 10)
	if err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if _, err := e.Vote(agentA, report.ID, true); err != coreerrors.ErrAlreadyVoted {
		t.Fatalf("double vote by submitter = %v, want ErrAlreadyVoted", err)
	}
}

func TestVoteRejectsAfterFinalized(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	if err := e.AuthorizeAgent(oracleOwner, agentA); err != nil {
		t.Fatalf("AuthorizeAgent: %v", err)
	}
	report, err := e.SubmitReport(agentA, personid.New(), "milestone", "shipped", 10)
	if err != nil {
		t.Fatalf("SubmitReport: %v", err)
	}
	if !report.Finalized {
		t.Fatalf("expected single-agent report to finalize immediately")
	}
	if err := e.AuthorizeAgent(oracleOwner, agentB); err != nil {
		t.Fatalf("AuthorizeAgent: %v", err)
	}
	if _, err := e.Vote(agentB, report.ID, true); err != coreerrors.ErrAlreadyFinalized {
		t.Fatalf("vote on finalized report = %v, want ErrAlreadyFinalized", err)
	}
}

func TestSubmitReportRejectsInvalidImpactScore(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	if err := e.AuthorizeAgent(oracleOwner, agentA); err != nil {
		t.Fatalf("AuthorizeAgent: %v", err)
	}
	if _, err := e.SubmitReport(agentA, personid.New(), "milestone", "x", 101); err != coreerrors.ErrInvalidImpactScore {
		t.Fatalf("SubmitReport(101) = %v, want ErrInvalidImpactScore", err)
	}
}

func TestSubmitReportRequiresAuthorizedAgent(t *testing.T) {
	e := NewEngine(newMockState(), oracleOwner)
	if _, err := e.SubmitReport(agentA, personid.New(), "milestone", "x", 10); err != coreerrors.ErrNotAuthorized {
		t.Fatalf("SubmitReport by unauthorized agent = %v, want ErrNotAuthorized", err)
	}
}
