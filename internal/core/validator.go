// Package core implements the session/assumption bookkeeping engine behind
// the ultrathink tool: request validation, per-session thought history and
// branch indices, assumption tracking, and cross-session reference
// resolution.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

var (
	// assumptionIDPattern matches session-local assumption IDs ("A1", "A42").
	// Matching is case-sensitive; lowercase ids are rejected.
	assumptionIDPattern = regexp.MustCompile(`^A[0-9]+$`)

	// crossSessionRefPattern matches assumption references qualified with a
	// session id ("planning-session:A1").
	crossSessionRefPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+:A[0-9]+$`)
)

const (
	defaultAssumptionConfidence = 1.0
	defaultAssumptionCritical   = true
)

// ValidateRequest checks a raw submission and produces an immutable Thought.
// historyLen is the current thought count of the target session; it is used
// only to auto-assign the thought number when the caller omits one.
//
// The function has no side effects. Ordering matters in two places: the total
// estimate is raised to the thought number before the default for
// next_thought_needed is computed, and an explicit next_thought_needed always
// wins over the computed default.
func ValidateRequest(req models.ThoughtRequest, historyLen int) (models.Thought, error) {
	if strings.TrimSpace(req.Thought) == "" {
		return models.Thought{}, &ValidationError{Field: "thought", Reason: "must be a non-empty string"}
	}
	if req.TotalThoughts < 1 {
		return models.Thought{}, &ValidationError{Field: "total_thoughts", Reason: "must be >= 1"}
	}

	number := historyLen + 1
	if req.ThoughtNumber != nil {
		if *req.ThoughtNumber < 1 {
			return models.Thought{}, &ValidationError{Field: "thought_number", Reason: "must be >= 1"}
		}
		number = *req.ThoughtNumber
	}

	// The step count is ground truth: if the caller is on thought N but
	// estimated fewer, the estimate was wrong. Must happen before the
	// next_thought_needed default is computed.
	total := req.TotalThoughts
	if number > total {
		total = number
	}

	next := number < total
	if req.NextThoughtNeeded != nil {
		next = *req.NextThoughtNeeded
	}

	var revises int
	if req.IsRevision {
		if req.RevisesThought == nil || *req.RevisesThought < 1 {
			return models.Thought{}, &ValidationError{Field: "revises_thought", Reason: "required and must be >= 1 when is_revision is set"}
		}
		// Whether the target exists, and that it precedes this thought, is
		// checked against the session history, not here.
		revises = *req.RevisesThought
	}

	var branchFrom int
	if req.BranchFromThought != nil {
		if *req.BranchFromThought < 1 {
			return models.Thought{}, &ValidationError{Field: "branch_from_thought", Reason: "must be >= 1"}
		}
		branchFrom = *req.BranchFromThought
	}

	if req.Confidence != nil && (*req.Confidence < 0 || *req.Confidence > 1) {
		return models.Thought{}, &ValidationError{Field: "confidence", Reason: "must be within [0, 1]"}
	}

	assumptions, err := validateAssumptions(req.Assumptions)
	if err != nil {
		return models.Thought{}, err
	}

	return models.Thought{
		Text:                   req.Thought,
		Number:                 number,
		TotalThoughts:          total,
		NextThoughtNeeded:      next,
		IsRevision:             req.IsRevision,
		RevisesThought:         revises,
		BranchFromThought:      branchFrom,
		BranchID:               req.BranchID,
		NeedsMoreThoughts:      req.NeedsMoreThoughts,
		Confidence:             req.Confidence,
		UncertaintyNotes:       req.UncertaintyNotes,
		Outcome:                req.Outcome,
		Assumptions:            assumptions,
		DependsOnAssumptions:   req.DependsOnAssumptions,
		InvalidatesAssumptions: req.InvalidatesAssumptions,
	}, nil
}

// validateAssumptions converts declared assumption inputs into Assumption
// records, applying defaults (confidence 1.0, critical true) and verifying
// the ID pattern. New declarations always start unverified.
func validateAssumptions(inputs []models.AssumptionInput) ([]models.Assumption, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]models.Assumption, 0, len(inputs))
	for _, in := range inputs {
		if !assumptionIDPattern.MatchString(in.ID) {
			return nil, &ValidationError{Field: "assumptions", Reason: fmt.Sprintf("id %q must match %s", in.ID, assumptionIDPattern.String())}
		}
		if strings.TrimSpace(in.Text) == "" {
			return nil, &ValidationError{Field: "assumptions", Reason: fmt.Sprintf("%s: text must be a non-empty string", in.ID)}
		}
		confidence := defaultAssumptionConfidence
		if in.Confidence != nil {
			confidence = *in.Confidence
		}
		if confidence < 0 || confidence > 1 {
			return nil, &ValidationError{Field: "assumptions", Reason: fmt.Sprintf("%s: confidence must be within [0, 1]", in.ID)}
		}
		critical := defaultAssumptionCritical
		if in.Critical != nil {
			critical = *in.Critical
		}
		out = append(out, models.Assumption{
			ID:         in.ID,
			Text:       in.Text,
			Confidence: confidence,
			Critical:   critical,
			Verifiable: in.Verifiable,
			Evidence:   in.Evidence,
			Status:     models.AssumptionUnverified,
		})
	}
	return out, nil
}

// SplitReference splits an assumption reference into its session and
// assumption parts. isCross is false for plain local references ("A1").
func SplitReference(ref string) (sessionID, assumptionID string, isCross bool) {
	idx := strings.Index(ref, ":")
	if idx < 0 {
		return "", ref, false
	}
	return ref[:idx], ref[idx+1:], true
}
