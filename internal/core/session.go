package core

import (
	"fmt"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// TraceSink receives accepted thoughts for human-readable rendering. A nil
// sink disables tracing; the data model is unaffected either way.
type TraceSink interface {
	ThoughtAccepted(sessionID string, t models.Thought)
}

// CrossSessionResult is the outcome of resolving a session-qualified
// assumption reference. A miss is an expected condition, not an error.
type CrossSessionResult struct {
	SessionID    string
	AssumptionID string
	Found        bool
}

// CrossSessionResolver resolves assumption references qualified with another
// session's ID. Implemented by SessionDirectory.
type CrossSessionResolver interface {
	ResolveCrossSession(ref string) CrossSessionResult
}

// ThinkingSession owns one reasoning trail: the append-only thought history,
// the branch index over it, and the session's assumption registry. Branches
// are an index over the single history sequence, not separate sequences, so
// the history length reported to callers always equals the count of accepted
// thoughts.
type ThinkingSession struct {
	id          string
	thoughts    []models.Thought
	branches    map[string][]int
	branchOrder []string
	registry    *AssumptionRegistry
	trace       TraceSink
}

// NewThinkingSession creates an empty session. trace may be nil to suppress
// the human-readable trail of accepted thoughts.
func NewThinkingSession(id string, trace TraceSink) *ThinkingSession {
	return &ThinkingSession{
		id:       id,
		branches: make(map[string][]int),
		registry: NewAssumptionRegistry(),
		trace:    trace,
	}
}

// ID returns the session identifier.
func (s *ThinkingSession) ID() string {
	return s.id
}

// ThoughtCount returns the number of accepted thoughts.
func (s *ThinkingSession) ThoughtCount() int {
	return len(s.thoughts)
}

// HasThought reports whether a thought with the given number exists in the
// history, on any branch.
func (s *ThinkingSession) HasThought(number int) bool {
	for _, t := range s.thoughts {
		if t.Number == number {
			return true
		}
	}
	return false
}

// ThoughtNumbers returns the numbers of all accepted thoughts in insertion order.
func (s *ThinkingSession) ThoughtNumbers() []int {
	nums := make([]int, len(s.thoughts))
	for i, t := range s.thoughts {
		nums[i] = t.Number
	}
	return nums
}

// Thoughts returns a copy of the accepted history.
func (s *ThinkingSession) Thoughts() []models.Thought {
	out := make([]models.Thought, len(s.thoughts))
	copy(out, s.thoughts)
	return out
}

// BranchIDs returns branch identifiers in order of first use.
func (s *ThinkingSession) BranchIDs() []string {
	out := make([]string, len(s.branchOrder))
	copy(out, s.branchOrder)
	return out
}

// Branches returns a copy of the branch index: branch id to the ordered
// thought numbers recorded under it.
func (s *ThinkingSession) Branches() map[string][]int {
	out := make(map[string][]int, len(s.branches))
	for id, nums := range s.branches {
		c := make([]int, len(nums))
		copy(c, nums)
		out[id] = c
	}
	return out
}

// Assumptions returns a snapshot of every assumption record in this session.
func (s *ThinkingSession) Assumptions() map[string]models.Assumption {
	return s.registry.Snapshot()
}

// RiskyAssumptions returns the IDs of critical, low-confidence, unverified
// assumptions.
func (s *ThinkingSession) RiskyAssumptions() []string {
	return s.registry.RiskyIDs()
}

// FalsifiedAssumptions returns the IDs of assumptions proven false.
func (s *ThinkingSession) FalsifiedAssumptions() []string {
	return s.registry.FalsifiedIDs()
}

// AssumptionCount returns the number of declared assumptions.
func (s *ThinkingSession) AssumptionCount() int {
	return s.registry.Len()
}

// CheckReferences verifies that a revision or branch target exists in the
// history, and that a revision points at an earlier thought. It runs before
// any mutation so that a dangling reference leaves the session untouched.
func (s *ThinkingSession) CheckReferences(t models.Thought) error {
	if t.IsRevision && t.RevisesThought > 0 {
		if !s.HasThought(t.RevisesThought) {
			return &NotFoundError{Kind: "thought", Ref: fmt.Sprintf("%d", t.RevisesThought), Available: formatNumbers(s.ThoughtNumbers())}
		}
		if t.RevisesThought >= t.Number {
			return &ValidationError{Field: "revises_thought", Reason: fmt.Sprintf("must reference an earlier thought (got %d, current is %d)", t.RevisesThought, t.Number)}
		}
	}
	if t.IsBranch() && !s.HasThought(t.BranchFromThought) {
		return &NotFoundError{Kind: "thought", Ref: fmt.Sprintf("%d", t.BranchFromThought), Available: formatNumbers(s.ThoughtNumbers())}
	}
	return nil
}

// DeclareAssumptions forwards each declared assumption to the registry. The
// first duplicate fails the whole submission; assumptions already inserted by
// this call are not retracted (documented partial-commit behavior, exercised
// by tests).
func (s *ThinkingSession) DeclareAssumptions(t models.Thought) error {
	for _, a := range t.Assumptions {
		if err := s.registry.Declare(a); err != nil {
			return err
		}
	}
	return nil
}

// ResolveDependencies resolves every assumption reference the thought depends
// on. A same-session miss is fatal; a cross-session miss is accumulated into
// the returned unresolved list and the submission proceeds.
func (s *ThinkingSession) ResolveDependencies(t models.Thought, dir CrossSessionResolver) ([]string, error) {
	var unresolved []string
	for _, ref := range t.DependsOnAssumptions {
		if _, _, isCross := SplitReference(ref); isCross {
			if res := dir.ResolveCrossSession(ref); !res.Found {
				unresolved = append(unresolved, ref)
			}
			continue
		}
		if _, err := s.registry.ResolveLocal(ref); err != nil {
			return nil, err
		}
	}
	return unresolved, nil
}

// InvalidateAssumptions marks each referenced local assumption as proven
// false. Cross-session invalidation is a deliberate limitation: the attempt
// is recorded as a warning and skipped, never applied to the remote session.
func (s *ThinkingSession) InvalidateAssumptions(t models.Thought) ([]string, error) {
	var warnings []string
	for _, ref := range t.InvalidatesAssumptions {
		if _, _, isCross := SplitReference(ref); isCross {
			warnings = append(warnings, fmt.Sprintf("cross-session invalidation not supported for %s", ref))
			continue
		}
		if err := s.registry.Invalidate(ref); err != nil {
			return nil, err
		}
	}
	return warnings, nil
}

// VerifyAssumption records the outcome of checking a local assumption.
func (s *ThinkingSession) VerifyAssumption(id string, verified bool) (*models.Assumption, error) {
	return s.registry.Verify(id, verified)
}

// AffectedThoughts returns the numbers of thoughts that depend on the given
// assumption, in history order. Cross-session dependents of other sessions
// are not visible here.
func (s *ThinkingSession) AffectedThoughts(assumptionID string) []int {
	var affected []int
	for _, t := range s.thoughts {
		for _, ref := range t.DependsOnAssumptions {
			if ref == assumptionID {
				affected = append(affected, t.Number)
				break
			}
		}
	}
	return affected
}

// Accept appends the thought to the history and, when it carries a branch id,
// records its number under that branch (creating the branch index on first
// use). It returns the new history length. All rejectable conditions are
// caught earlier by the validator or the service.
func (s *ThinkingSession) Accept(t models.Thought) int {
	s.thoughts = append(s.thoughts, t)

	if t.BranchID != "" {
		if _, exists := s.branches[t.BranchID]; !exists {
			s.branchOrder = append(s.branchOrder, t.BranchID)
		}
		s.branches[t.BranchID] = append(s.branches[t.BranchID], t.Number)
	}

	if s.trace != nil {
		s.trace.ThoughtAccepted(s.id, t)
	}

	return len(s.thoughts)
}

// Snapshot assembles the full read-only view of this session.
func (s *ThinkingSession) Snapshot() models.SessionSnapshot {
	return models.SessionSnapshot{
		SessionID:   s.id,
		Thoughts:    s.Thoughts(),
		Branches:    s.Branches(),
		Assumptions: s.Assumptions(),
	}
}

// Summary assembles the one-line listing view of this session.
func (s *ThinkingSession) Summary() models.SessionSummary {
	return models.SessionSummary{
		SessionID:        s.id,
		ThoughtCount:     s.ThoughtCount(),
		BranchCount:      len(s.branches),
		AssumptionCount:  s.registry.Len(),
		RiskyAssumptions: len(s.registry.RiskyIDs()),
	}
}

func formatNumbers(nums []int) []string {
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = fmt.Sprintf("%d", n)
	}
	return out
}
