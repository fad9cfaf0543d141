package core

import (
	"sort"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// AssumptionRegistry holds the assumptions declared within one session,
// keyed by their session-local ID. Records are never deleted; the only
// mutation after declaration is a status change.
type AssumptionRegistry struct {
	assumptions map[string]*models.Assumption
	order       []string
}

// NewAssumptionRegistry creates an empty registry.
func NewAssumptionRegistry() *AssumptionRegistry {
	return &AssumptionRegistry{assumptions: make(map[string]*models.Assumption)}
}

// Declare inserts a new assumption record. Re-declaring an existing ID fails
// with DuplicateAssumptionError.
func (r *AssumptionRegistry) Declare(a models.Assumption) error {
	if _, exists := r.assumptions[a.ID]; exists {
		return &DuplicateAssumptionError{ID: a.ID}
	}
	record := a
	r.assumptions[a.ID] = &record
	r.order = append(r.order, a.ID)
	return nil
}

// ResolveLocal returns the assumption for a same-session reference. A miss is
// a NotFoundError and is always surfaced to the caller.
func (r *AssumptionRegistry) ResolveLocal(id string) (*models.Assumption, error) {
	a, ok := r.assumptions[id]
	if !ok {
		return nil, &NotFoundError{Kind: "assumption", Ref: id, Available: r.IDs()}
	}
	return a, nil
}

// Contains reports whether the given assumption ID exists in this registry.
func (r *AssumptionRegistry) Contains(id string) bool {
	_, ok := r.assumptions[id]
	return ok
}

// Invalidate marks an assumption as proven false.
func (r *AssumptionRegistry) Invalidate(id string) error {
	a, ok := r.assumptions[id]
	if !ok {
		return &NotFoundError{Kind: "assumption", Ref: id, Available: r.IDs()}
	}
	a.Status = models.AssumptionVerifiedFalse
	return nil
}

// Verify records the outcome of checking an assumption against reality.
func (r *AssumptionRegistry) Verify(id string, verified bool) (*models.Assumption, error) {
	a, ok := r.assumptions[id]
	if !ok {
		return nil, &NotFoundError{Kind: "assumption", Ref: id, Available: r.IDs()}
	}
	if verified {
		a.Status = models.AssumptionVerifiedTrue
	} else {
		a.Status = models.AssumptionVerifiedFalse
	}
	return a, nil
}

// Risky reports whether an assumption is critical, low-confidence, and still
// unverified. It is a derived predicate, never stored, so it cannot go stale
// when confidence or status change.
func Risky(a models.Assumption) bool {
	return a.Critical && a.Confidence < 0.5 && a.Status == models.AssumptionUnverified
}

// IDs returns the sorted assumption IDs in this registry.
func (r *AssumptionRegistry) IDs() []string {
	ids := make([]string, 0, len(r.assumptions))
	for id := range r.assumptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of every assumption record keyed by ID.
func (r *AssumptionRegistry) Snapshot() map[string]models.Assumption {
	out := make(map[string]models.Assumption, len(r.assumptions))
	for id, a := range r.assumptions {
		out[id] = *a
	}
	return out
}

// RiskyIDs returns the IDs of risky assumptions in declaration order.
func (r *AssumptionRegistry) RiskyIDs() []string {
	var ids []string
	for _, id := range r.order {
		if Risky(*r.assumptions[id]) {
			ids = append(ids, id)
		}
	}
	return ids
}

// FalsifiedIDs returns the IDs of assumptions proven false, in declaration order.
func (r *AssumptionRegistry) FalsifiedIDs() []string {
	var ids []string
	for _, id := range r.order {
		if r.assumptions[id].IsFalsified() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of declared assumptions.
func (r *AssumptionRegistry) Len() int {
	return len(r.assumptions)
}
