package core

import (
	"sort"

	"github.com/google/uuid"
)

// SessionDirectory maps session identifiers to their ThinkingSession. It is
// an explicit, injectable registry owned by the service rather than ambient
// package state, so tests can instantiate isolated directories. Sessions are
// created lazily on first reference and never pruned; all state is lost on
// process restart by design.
type SessionDirectory struct {
	sessions map[string]*ThinkingSession
	trace    TraceSink
}

// NewSessionDirectory creates an empty directory. trace is handed to every
// session it creates; nil disables thought tracing.
func NewSessionDirectory(trace TraceSink) *SessionDirectory {
	return &SessionDirectory{
		sessions: make(map[string]*ThinkingSession),
		trace:    trace,
	}
}

// GetOrCreate returns the session bound to id, creating it when unseen. An
// empty id generates a fresh identifier and a new session. It never fails.
func (d *SessionDirectory) GetOrCreate(id string) *ThinkingSession {
	if id == "" {
		id = uuid.NewString()
	}
	if s, ok := d.sessions[id]; ok {
		return s
	}
	s := NewThinkingSession(id, d.trace)
	d.sessions[id] = s
	return s
}

// Get returns the session bound to id without creating one.
func (d *SessionDirectory) Get(id string) (*ThinkingSession, bool) {
	s, ok := d.sessions[id]
	return s, ok
}

// ResolveCrossSession parses a "<session-id>:<assumption-id>" reference and
// checks whether the assumption exists in the referenced session. Misses are
// reported in the result, never as an error, and the lookup does not mutate
// the referenced session.
func (d *SessionDirectory) ResolveCrossSession(ref string) CrossSessionResult {
	if !crossSessionRefPattern.MatchString(ref) {
		return CrossSessionResult{Found: false}
	}
	sid, aid, _ := SplitReference(ref)
	res := CrossSessionResult{SessionID: sid, AssumptionID: aid}

	target, ok := d.sessions[sid]
	if !ok {
		return res
	}
	res.Found = target.registry.Contains(aid)
	return res
}

// IDs returns every known session identifier, sorted.
func (d *SessionDirectory) IDs() []string {
	ids := make([]string, 0, len(d.sessions))
	for id := range d.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of known sessions.
func (d *SessionDirectory) Len() int {
	return len(d.sessions)
}
