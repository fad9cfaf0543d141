// Package models contains the shared data types of the ultrathink engine:
// thoughts, assumptions, and the request/response shapes exchanged with the
// transport layer.
package models

// Thought is one validated, accepted reasoning step. Once a session accepts a
// thought it is never mutated; a later thought that revises it is a new
// Thought referencing the old one by number.
type Thought struct {
	Text              string   `json:"thought" yaml:"thought"`
	Number            int      `json:"thought_number" yaml:"thought_number"`
	TotalThoughts     int      `json:"total_thoughts" yaml:"total_thoughts"`
	NextThoughtNeeded bool     `json:"next_thought_needed" yaml:"next_thought_needed"`
	IsRevision        bool     `json:"is_revision,omitempty" yaml:"is_revision,omitempty"`
	RevisesThought    int      `json:"revises_thought,omitempty" yaml:"revises_thought,omitempty"`
	BranchFromThought int      `json:"branch_from_thought,omitempty" yaml:"branch_from_thought,omitempty"`
	BranchID          string   `json:"branch_id,omitempty" yaml:"branch_id,omitempty"`
	NeedsMoreThoughts bool     `json:"needs_more_thoughts,omitempty" yaml:"needs_more_thoughts,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	UncertaintyNotes  string   `json:"uncertainty_notes,omitempty" yaml:"uncertainty_notes,omitempty"`
	Outcome           string   `json:"outcome,omitempty" yaml:"outcome,omitempty"`

	Assumptions            []Assumption `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
	DependsOnAssumptions   []string     `json:"depends_on_assumptions,omitempty" yaml:"depends_on_assumptions,omitempty"`
	InvalidatesAssumptions []string     `json:"invalidates_assumptions,omitempty" yaml:"invalidates_assumptions,omitempty"`
}

// IsBranch reports whether this thought opens or continues a branch.
func (t Thought) IsBranch() bool {
	return t.BranchFromThought > 0 && t.BranchID != ""
}

// IsFinal reports whether this is the final thought of the trail.
func (t Thought) IsFinal() bool {
	return !t.NextThoughtNeeded
}

// ThoughtRequest is one raw submission from the transport layer. Optional
// numeric and boolean fields are pointers so the validator can distinguish
// "omitted" from zero values.
type ThoughtRequest struct {
	Thought           string   `json:"thought"`
	TotalThoughts     int      `json:"total_thoughts"`
	ThoughtNumber     *int     `json:"thought_number,omitempty"`
	NextThoughtNeeded *bool    `json:"next_thought_needed,omitempty"`
	SessionID         string   `json:"session_id,omitempty"`
	IsRevision        bool     `json:"is_revision,omitempty"`
	RevisesThought    *int     `json:"revises_thought,omitempty"`
	BranchFromThought *int     `json:"branch_from_thought,omitempty"`
	BranchID          string   `json:"branch_id,omitempty"`
	NeedsMoreThoughts bool     `json:"needs_more_thoughts,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	UncertaintyNotes  string   `json:"uncertainty_notes,omitempty"`
	Outcome           string   `json:"outcome,omitempty"`

	Assumptions            []AssumptionInput `json:"assumptions,omitempty"`
	DependsOnAssumptions   []string          `json:"depends_on_assumptions,omitempty"`
	InvalidatesAssumptions []string          `json:"invalidates_assumptions,omitempty"`
}

// ThoughtResponse is the snapshot assembled for the caller after a submission
// has been accepted.
type ThoughtResponse struct {
	SessionID            string                `json:"session_id"`
	ThoughtNumber        int                   `json:"thought_number"`
	TotalThoughts        int                   `json:"total_thoughts"`
	NextThoughtNeeded    bool                  `json:"next_thought_needed"`
	Branches             []string              `json:"branches"`
	ThoughtHistoryLength int                   `json:"thought_history_length"`
	Confidence           *float64              `json:"confidence,omitempty"`
	UncertaintyNotes     string                `json:"uncertainty_notes,omitempty"`
	Outcome              string                `json:"outcome,omitempty"`
	Assumptions          map[string]Assumption `json:"assumptions,omitempty"`
	RiskyAssumptions     []string              `json:"risky_assumptions"`
	FalsifiedAssumptions []string              `json:"falsified_assumptions"`
	UnresolvedReferences []string              `json:"unresolved_references"`
	CrossSessionWarnings []string              `json:"cross_session_warnings"`
}

// SessionSnapshot is a full read-only view of one session, used by the
// get_session tool and the sessions CLI export.
type SessionSnapshot struct {
	SessionID   string                `json:"session_id" yaml:"session_id"`
	Thoughts    []Thought             `json:"thoughts" yaml:"thoughts"`
	Branches    map[string][]int      `json:"branches" yaml:"branches"`
	Assumptions map[string]Assumption `json:"assumptions" yaml:"assumptions"`
}

// SessionSummary is a one-line view of a session for listings.
type SessionSummary struct {
	SessionID        string `json:"session_id" yaml:"session_id"`
	ThoughtCount     int    `json:"thought_count" yaml:"thought_count"`
	BranchCount      int    `json:"branch_count" yaml:"branch_count"`
	AssumptionCount  int    `json:"assumption_count" yaml:"assumption_count"`
	RiskyAssumptions int    `json:"risky_assumptions" yaml:"risky_assumptions"`
}
