package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ultrathink-mcp/ultrathink/internal/core"
	"github.com/ultrathink-mcp/ultrathink/internal/observability"
	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// --- Fake implementations ---

type fakeMetricsCalculator struct {
	metrics *observability.Metrics
}

func (f *fakeMetricsCalculator) Calculate(_ time.Time) (*observability.Metrics, error) {
	return f.metrics, nil
}

// --- Test helpers ---

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := core.NewService(core.NewSessionDirectory(nil), nil, nil)
	return NewServer(svc, nil, "ultrathink", "test")
}

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decodeResult unmarshals a tool result into out, preferring the structured
// content and falling back to the text content.
func decodeResult(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()

	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}

	text := extractText(result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("unmarshalling result text: %v (text was: %s)", err, text)
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Tests ---

func TestThoughtTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "Investigate the failing login flow",
		"total_thoughts": 3,
	})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out thoughtOutput
	decodeResult(t, result, &out)

	if out.SessionID == "" {
		t.Error("expected a generated session ID")
	}
	if out.ThoughtNumber != 1 {
		t.Errorf("expected thought number 1, got %d", out.ThoughtNumber)
	}
	if out.TotalThoughts != 3 {
		t.Errorf("expected total 3, got %d", out.TotalThoughts)
	}
	if !out.NextThoughtNeeded {
		t.Error("expected next_thought_needed to default to true")
	}
	if out.ThoughtHistoryLength != 1 {
		t.Errorf("expected history length 1, got %d", out.ThoughtHistoryLength)
	}
}

func TestThoughtTool_SessionContinuity(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "First step",
		"total_thoughts": 2,
		"session_id":     "trail",
	})
	if result.IsError {
		t.Fatalf("first call failed: %s", extractText(result))
	}

	result = callTool(t, srv, "ultrathink", map[string]any{
		"thought":             "Second step",
		"total_thoughts":      2,
		"session_id":          "trail",
		"next_thought_needed": false,
	})
	if result.IsError {
		t.Fatalf("second call failed: %s", extractText(result))
	}

	var out thoughtOutput
	decodeResult(t, result, &out)

	if out.SessionID != "trail" {
		t.Errorf("expected session trail, got %s", out.SessionID)
	}
	if out.ThoughtNumber != 2 {
		t.Errorf("expected auto-numbered thought 2, got %d", out.ThoughtNumber)
	}
	if out.NextThoughtNeeded {
		t.Error("expected next_thought_needed false")
	}
	if out.ThoughtHistoryLength != 2 {
		t.Errorf("expected history length 2, got %d", out.ThoughtHistoryLength)
	}
}

func TestThoughtTool_EmptyThoughtIsError(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "   ",
		"total_thoughts": 1,
	})

	if !result.IsError {
		t.Fatal("expected error result for blank thought")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result content")
	}
}

func TestThoughtTool_DeclaresAssumptions(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "The cache is the bottleneck",
		"total_thoughts": 2,
		"session_id":     "perf",
		"assumptions": []map[string]any{
			{"id": "A1", "text": "cache hit rate is below 50%", "confidence": 0.3, "critical": true},
		},
	})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out thoughtOutput
	decodeResult(t, result, &out)

	a, ok := out.Assumptions["A1"]
	if !ok {
		t.Fatalf("expected assumption A1 in response, got %v", out.Assumptions)
	}
	if a.Status != models.AssumptionUnverified {
		t.Errorf("expected unverified status, got %s", a.Status)
	}
	if len(out.RiskyAssumptions) != 1 || out.RiskyAssumptions[0] != "A1" {
		t.Errorf("expected A1 flagged risky, got %v", out.RiskyAssumptions)
	}
}

func TestThoughtTool_BranchReported(t *testing.T) {
	srv := newTestServer(t)

	for _, thought := range []string{"one", "two"} {
		result := callTool(t, srv, "ultrathink", map[string]any{
			"thought":        thought,
			"total_thoughts": 3,
			"session_id":     "branchy",
		})
		if result.IsError {
			t.Fatalf("setup call failed: %s", extractText(result))
		}
	}

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":             "alternative approach",
		"total_thoughts":      3,
		"session_id":          "branchy",
		"branch_from_thought": 1,
		"branch_id":           "alt",
	})
	if result.IsError {
		t.Fatalf("branch call failed: %s", extractText(result))
	}

	var out thoughtOutput
	decodeResult(t, result, &out)

	if len(out.Branches) != 1 || out.Branches[0] != "alt" {
		t.Errorf("expected branches [alt], got %v", out.Branches)
	}
}

func TestVerifyAssumptionTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "Declare and rely",
		"total_thoughts": 2,
		"session_id":     "vs",
		"assumptions": []map[string]any{
			{"id": "A1", "text": "the index exists", "verifiable": true},
		},
		"depends_on_assumptions": []string{"A1"},
	})
	if result.IsError {
		t.Fatalf("setup call failed: %s", extractText(result))
	}

	result = callTool(t, srv, "verify_assumption", map[string]any{
		"session_id":    "vs",
		"assumption_id": "A1",
		"verified":      true,
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out verifyAssumptionOutput
	decodeResult(t, result, &out)

	if out.Assumption.Status != models.AssumptionVerifiedTrue {
		t.Errorf("expected verified_true, got %s", out.Assumption.Status)
	}
	if len(out.AffectedThoughts) != 1 || out.AffectedThoughts[0] != 1 {
		t.Errorf("expected affected thoughts [1], got %v", out.AffectedThoughts)
	}
}

func TestVerifyAssumptionTool_UnknownSession(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "verify_assumption", map[string]any{
		"session_id":    "nope",
		"assumption_id": "A1",
		"verified":      true,
	})

	if !result.IsError {
		t.Fatal("expected error for unknown session")
	}
}

func TestGetSessionTool(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "ultrathink", map[string]any{
		"thought":        "Something",
		"total_thoughts": 1,
		"session_id":     "snap",
	})
	if result.IsError {
		t.Fatalf("setup call failed: %s", extractText(result))
	}

	result = callTool(t, srv, "get_session", map[string]any{"session_id": "snap"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out models.SessionSnapshot
	decodeResult(t, result, &out)

	if out.SessionID != "snap" {
		t.Errorf("expected session snap, got %s", out.SessionID)
	}
	if len(out.Thoughts) != 1 {
		t.Errorf("expected 1 thought in snapshot, got %d", len(out.Thoughts))
	}
}

func TestGetSessionTool_NotFound(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "get_session", map[string]any{"session_id": "missing"})

	if !result.IsError {
		t.Fatal("expected error for unknown session")
	}
}

func TestListSessionsTool(t *testing.T) {
	srv := newTestServer(t)

	for _, sid := range []string{"b", "a"} {
		result := callTool(t, srv, "ultrathink", map[string]any{
			"thought":        "seed",
			"total_thoughts": 1,
			"session_id":     sid,
		})
		if result.IsError {
			t.Fatalf("setup call failed: %s", extractText(result))
		}
	}

	result := callTool(t, srv, "list_sessions", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out listSessionsOutput
	decodeResult(t, result, &out)

	if out.Count != 2 {
		t.Errorf("expected 2 sessions, got %d", out.Count)
	}
	if len(out.Sessions) == 2 && (out.Sessions[0].SessionID != "a" || out.Sessions[1].SessionID != "b") {
		t.Errorf("expected sessions sorted [a b], got %v", out.Sessions)
	}
}

func TestGetMetricsTool(t *testing.T) {
	now := time.Now().UTC()
	mc := &fakeMetricsCalculator{
		metrics: &observability.Metrics{
			ThoughtsAccepted:    7,
			Revisions:           2,
			AssumptionsDeclared: 3,
			ThoughtsBySession:   map[string]int{"a": 4, "b": 3},
			SessionCount:        2,
			EventCount:          10,
			OldestEvent:         &now,
			NewestEvent:         &now,
		},
	}
	svc := core.NewService(core.NewSessionDirectory(nil), nil, nil)
	srv := NewServer(svc, mc, "ultrathink", "test")

	result := callTool(t, srv, "get_metrics", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var m metricsOutput
	decodeResult(t, result, &m)

	if m.ThoughtsAccepted != 7 {
		t.Errorf("expected 7 thoughts accepted, got %d", m.ThoughtsAccepted)
	}
	if m.SessionCount != 2 {
		t.Errorf("expected 2 sessions, got %d", m.SessionCount)
	}
	if m.EventCount != 10 {
		t.Errorf("expected 10 events, got %d", m.EventCount)
	}
}

func TestGetMetricsToolDisabled(t *testing.T) {
	srv := newTestServer(t)

	result := callTool(t, srv, "get_metrics", map[string]any{})

	if !result.IsError {
		t.Fatal("expected error when metrics calculator is nil")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result")
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"7d", false},
		{"30d", false},
		{"24h", false},
		{"1h", false},
		{"", true},
		{"x", true},
		{"7x", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseSince(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseSince(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
