package observability

import (
	"fmt"
	"time"
)

// Metrics holds aggregate counts derived from the event log.
type Metrics struct {
	ThoughtsAccepted       int            `json:"thoughts_accepted"`
	Revisions              int            `json:"revisions"`
	BranchThoughts         int            `json:"branch_thoughts"`
	AssumptionsDeclared    int            `json:"assumptions_declared"`
	AssumptionsInvalidated int            `json:"assumptions_invalidated"`
	AssumptionsVerified    int            `json:"assumptions_verified"`
	ThoughtsBySession      map[string]int `json:"thoughts_by_session"`
	SessionCount           int            `json:"session_count"`
	EventCount             int            `json:"event_count"`
	OldestEvent            *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent            *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		ThoughtsBySession: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventThoughtAccepted:
			m.ThoughtsAccepted++
			if event.SessionID != "" {
				m.ThoughtsBySession[event.SessionID]++
			}
			if isRevision, ok := event.Data["is_revision"].(bool); ok && isRevision {
				m.Revisions++
			}
			if branchID, ok := event.Data["branch_id"].(string); ok && branchID != "" {
				m.BranchThoughts++
			}
		case EventAssumptionDeclared:
			m.AssumptionsDeclared++
		case EventAssumptionInvalidated:
			m.AssumptionsInvalidated++
		case EventAssumptionVerified:
			m.AssumptionsVerified++
		}
	}

	m.SessionCount = len(m.ThoughtsBySession)

	return m, nil
}
