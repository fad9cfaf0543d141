package core

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-range input. A request that
// fails validation produces no session mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to a thought or assumption that the
// contract requires to exist in the local session.
type NotFoundError struct {
	Kind      string // "thought", "assumption", or "session"
	Ref       string
	Available []string
}

func (e *NotFoundError) Error() string {
	if e.Kind == "session" {
		return fmt.Sprintf("session %s not found", e.Ref)
	}
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s %s not found in this session (none exist yet; pass session_id to continue an existing session)", e.Kind, e.Ref)
	}
	return fmt.Sprintf("%s %s not found in this session (available: %s)", e.Kind, e.Ref, strings.Join(e.Available, ", "))
}

// DuplicateAssumptionError reports re-declaration of an assumption ID that
// already exists in the session. Assumption IDs are unique for the life of a
// session.
type DuplicateAssumptionError struct {
	ID string
}

func (e *DuplicateAssumptionError) Error() string {
	return fmt.Sprintf("assumption %s already declared in this session", e.ID)
}
