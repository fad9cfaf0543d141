package core

import (
	"go.uber.org/zap"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// EventRecorder receives engine events for the observability log. A nil
// recorder disables event recording.
type EventRecorder interface {
	Record(eventType string, data map[string]any)
}

// Service orchestrates one submission at a time: validation, session lookup,
// assumption bookkeeping, history mutation, and response assembly. It takes
// no locks itself; the integrating layer must serialize calls (the MCP server
// holds a mutex around each request).
type Service struct {
	dir    *SessionDirectory
	events EventRecorder
	logger *zap.Logger
}

// NewService creates a Service over the given directory. events may be nil to
// disable event recording; logger may be nil to disable structured logging.
func NewService(dir *SessionDirectory, events EventRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{dir: dir, events: events, logger: logger}
}

// Directory returns the session directory backing this service.
func (s *Service) Directory() *SessionDirectory {
	return s.dir
}

// ProcessThought runs one submission through the engine, strictly
// sequentially:
//
//  1. obtain or create the session
//  2. validate the raw input into a Thought
//  3. check revision/branch targets against the history
//  4. declare new assumptions
//  5. resolve assumption dependencies (local miss fatal, cross-session miss
//     accumulated)
//  6. apply invalidations (cross-session target warned, local miss fatal)
//  7. accept the thought and assemble the response
//
// A failure from step 5 onward does not retract assumptions already declared
// in step 4; that partial-commit behavior is deliberate and tested.
func (s *Service) ProcessThought(req models.ThoughtRequest) (*models.ThoughtResponse, error) {
	session := s.dir.GetOrCreate(req.SessionID)

	thought, err := ValidateRequest(req, session.ThoughtCount())
	if err != nil {
		return nil, err
	}

	if err := session.CheckReferences(thought); err != nil {
		return nil, err
	}

	if err := session.DeclareAssumptions(thought); err != nil {
		return nil, err
	}
	for _, a := range thought.Assumptions {
		s.record("assumption.declared", map[string]any{
			"session_id":    session.ID(),
			"assumption_id": a.ID,
			"critical":      a.Critical,
			"confidence":    a.Confidence,
		})
	}

	unresolved, err := session.ResolveDependencies(thought, s.dir)
	if err != nil {
		return nil, err
	}

	warnings, err := session.InvalidateAssumptions(thought)
	if err != nil {
		return nil, err
	}
	for _, ref := range thought.InvalidatesAssumptions {
		if _, _, isCross := SplitReference(ref); !isCross {
			s.record("assumption.invalidated", map[string]any{
				"session_id":    session.ID(),
				"assumption_id": ref,
			})
		}
	}

	historyLen := session.Accept(thought)
	s.record("thought.accepted", map[string]any{
		"session_id":     session.ID(),
		"thought_number": thought.Number,
		"total_thoughts": thought.TotalThoughts,
		"is_revision":    thought.IsRevision,
		"branch_id":      thought.BranchID,
	})
	s.logger.Debug("thought accepted",
		zap.String("session_id", session.ID()),
		zap.Int("thought_number", thought.Number),
		zap.Int("history_length", historyLen),
	)

	return &models.ThoughtResponse{
		SessionID:            session.ID(),
		ThoughtNumber:        thought.Number,
		TotalThoughts:        thought.TotalThoughts,
		NextThoughtNeeded:    thought.NextThoughtNeeded,
		Branches:             session.BranchIDs(),
		ThoughtHistoryLength: historyLen,
		Confidence:           thought.Confidence,
		UncertaintyNotes:     thought.UncertaintyNotes,
		Outcome:              thought.Outcome,
		Assumptions:          session.Assumptions(),
		RiskyAssumptions:     session.RiskyAssumptions(),
		FalsifiedAssumptions: session.FalsifiedAssumptions(),
		UnresolvedReferences: unresolved,
		CrossSessionWarnings: warnings,
	}, nil
}

// VerifyAssumption records the outcome of checking an assumption in the given
// session and returns the updated record together with the numbers of
// thoughts that depend on it.
func (s *Service) VerifyAssumption(sessionID, assumptionID string, verified bool) (*models.Assumption, []int, error) {
	session, ok := s.dir.Get(sessionID)
	if !ok {
		return nil, nil, &NotFoundError{Kind: "session", Ref: sessionID}
	}
	a, err := session.VerifyAssumption(assumptionID, verified)
	if err != nil {
		return nil, nil, err
	}
	s.record("assumption.verified", map[string]any{
		"session_id":    sessionID,
		"assumption_id": assumptionID,
		"verified":      verified,
	})
	return a, session.AffectedThoughts(assumptionID), nil
}

// SessionSnapshot returns the full read-only view of one session.
func (s *Service) SessionSnapshot(sessionID string) (*models.SessionSnapshot, error) {
	session, ok := s.dir.Get(sessionID)
	if !ok {
		return nil, &NotFoundError{Kind: "session", Ref: sessionID}
	}
	snap := session.Snapshot()
	return &snap, nil
}

// ListSessions returns a summary of every known session, ordered by id.
func (s *Service) ListSessions() []models.SessionSummary {
	ids := s.dir.IDs()
	out := make([]models.SessionSummary, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.dir.Get(id); ok {
			out = append(out, session.Summary())
		}
	}
	return out
}

func (s *Service) record(eventType string, data map[string]any) {
	if s.events != nil {
		s.events.Record(eventType, data)
	}
}
