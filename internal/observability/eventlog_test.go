package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestEventLog_WriteAndRead(t *testing.T) {
	log := newTestLog(t)

	event := Event{
		Time:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Type:      EventThoughtAccepted,
		SessionID: "trail-1",
		Data:      map[string]any{"thought_number": 1},
	}
	if err := log.Write(event); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != EventThoughtAccepted || events[0].SessionID != "trail-1" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestEventLog_FilterByTypeAndSession(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, e := range []Event{
		{Type: EventThoughtAccepted, SessionID: "a"},
		{Type: EventAssumptionDeclared, SessionID: "a"},
		{Type: EventThoughtAccepted, SessionID: "b"},
	} {
		e.Time = base.Add(time.Duration(i) * time.Minute)
		if err := log.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	events, err := log.Read(EventFilter{Type: EventThoughtAccepted})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 thought events, got %d", len(events))
	}

	events, err = log.Read(EventFilter{SessionID: "a"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 events for session a, got %d", len(events))
	}

	since := base.Add(90 * time.Second)
	events, err = log.Read(EventFilter{Since: &since})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 || events[0].SessionID != "b" {
		t.Errorf("since filter returned %+v", events)
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("not json\n{\"type\":\"thought.accepted\"}\n"), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer func() { _ = log.Close() }()

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected malformed line skipped, got %d events", len(events))
	}
}
