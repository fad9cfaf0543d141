package core

import (
	"testing"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

func TestDirectory_GetOrCreate_GeneratesID(t *testing.T) {
	d := NewSessionDirectory(nil)

	s1 := d.GetOrCreate("")
	s2 := d.GetOrCreate("")

	if s1.ID() == "" || s2.ID() == "" {
		t.Fatalf("expected generated ids")
	}
	if s1.ID() == s2.ID() {
		t.Errorf("generated ids collide: %s", s1.ID())
	}
	if d.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", d.Len())
	}
}

func TestDirectory_GetOrCreate_ReturnsExisting(t *testing.T) {
	d := NewSessionDirectory(nil)

	a := d.GetOrCreate("trail")
	a.Accept(plainThought(1))

	b := d.GetOrCreate("trail")
	if b.ThoughtCount() != 1 {
		t.Errorf("expected the same session back, got count %d", b.ThoughtCount())
	}
}

func TestDirectory_Get_DoesNotCreate(t *testing.T) {
	d := NewSessionDirectory(nil)

	if _, ok := d.Get("missing"); ok {
		t.Errorf("Get created a session")
	}
	if d.Len() != 0 {
		t.Errorf("directory grew on Get")
	}
}

func TestDirectory_ResolveCrossSession(t *testing.T) {
	d := NewSessionDirectory(nil)
	s := d.GetOrCreate("session-1")
	decl := plainThought(1)
	decl.Assumptions = []models.Assumption{sampleAssumption("A1")}
	if err := s.DeclareAssumptions(decl); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		ref   string
		found bool
	}{
		{"session-1:A1", true},
		{"session-1:A9", false},
		{"nonexistent:A1", false},
		{"session 1:A1", false}, // malformed session id
		{"session-1:a1", false}, // lowercase assumption id
	}
	for _, tc := range cases {
		res := d.ResolveCrossSession(tc.ref)
		if res.Found != tc.found {
			t.Errorf("%q: expected found=%v, got %v", tc.ref, tc.found, res.Found)
		}
	}

	// The lookup never creates or mutates sessions.
	if d.Len() != 1 {
		t.Errorf("cross-session lookup mutated the directory")
	}
}

func TestDirectory_IDsSorted(t *testing.T) {
	d := NewSessionDirectory(nil)
	d.GetOrCreate("zeta")
	d.GetOrCreate("alpha")

	ids := d.IDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "zeta" {
		t.Errorf("expected sorted ids, got %v", ids)
	}
}
