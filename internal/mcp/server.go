// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the ultrathink reasoning engine as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ultrathink-mcp/ultrathink/internal/core"
	"github.com/ultrathink-mcp/ultrathink/internal/observability"
	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// Server wraps the thinking service and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	svc         *core.Service
	metricsCalc observability.MetricsCalculator

	// mu serializes engine access; the engine itself takes no locks.
	mu sync.Mutex
}

// NewServer creates a new MCP server backed by the given thinking service.
// metricsCalc may be nil if event logging is disabled.
func NewServer(svc *core.Service, metricsCalc observability.MetricsCalculator, name, version string) *Server {
	if name == "" {
		name = "ultrathink"
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		svc:         svc,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: name, Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type assumptionInput struct {
	ID         string   `json:"id" jsonschema:"required,assumption identifier within the session (A1, A2, ...)"`
	Text       string   `json:"text" jsonschema:"required,what is being assumed"`
	Confidence *float64 `json:"confidence,omitempty" jsonschema:"how confident you are that this holds (0.0-1.0, default 1.0)"`
	Critical   *bool    `json:"critical,omitempty" jsonschema:"whether the reasoning collapses if this is false (default true)"`
	Verifiable bool     `json:"verifiable,omitempty" jsonschema:"whether this can be checked against reality"`
	Evidence   string   `json:"evidence,omitempty" jsonschema:"what supports or would verify this assumption"`
}

type thoughtInput struct {
	Thought           string   `json:"thought" jsonschema:"required,the current thinking step"`
	TotalThoughts     int      `json:"total_thoughts" jsonschema:"required,current estimate of total thoughts needed (adjustable)"`
	ThoughtNumber     *int     `json:"thought_number,omitempty" jsonschema:"position in the trail; omit to auto-number"`
	NextThoughtNeeded *bool    `json:"next_thought_needed,omitempty" jsonschema:"whether another thought follows (default true)"`
	SessionID         string   `json:"session_id,omitempty" jsonschema:"session to append to; omit to create a new session"`
	IsRevision        bool     `json:"is_revision,omitempty" jsonschema:"whether this revises previous thinking"`
	RevisesThought    *int     `json:"revises_thought,omitempty" jsonschema:"which thought number is being reconsidered"`
	BranchFromThought *int     `json:"branch_from_thought,omitempty" jsonschema:"thought number this branch diverges from"`
	BranchID          string   `json:"branch_id,omitempty" jsonschema:"identifier of the branch being explored"`
	NeedsMoreThoughts bool     `json:"needs_more_thoughts,omitempty" jsonschema:"signal that more thoughts are needed beyond the estimate"`
	Confidence        *float64 `json:"confidence,omitempty" jsonschema:"confidence in this thought (0.0-1.0)"`
	UncertaintyNotes  string   `json:"uncertainty_notes,omitempty" jsonschema:"what is unclear or could go wrong"`
	Outcome           string   `json:"outcome,omitempty" jsonschema:"observed result if this thought was tested"`

	Assumptions            []assumptionInput `json:"assumptions,omitempty" jsonschema:"new assumptions declared by this thought"`
	DependsOnAssumptions   []string          `json:"depends_on_assumptions,omitempty" jsonschema:"assumption IDs this thought relies on; cross-session refs use sessionid:A1"`
	InvalidatesAssumptions []string          `json:"invalidates_assumptions,omitempty" jsonschema:"assumption IDs this thought proves false"`
}

type thoughtOutput struct {
	SessionID            string                       `json:"session_id"`
	ThoughtNumber        int                          `json:"thought_number"`
	TotalThoughts        int                          `json:"total_thoughts"`
	NextThoughtNeeded    bool                         `json:"next_thought_needed"`
	Branches             []string                     `json:"branches"`
	ThoughtHistoryLength int                          `json:"thought_history_length"`
	Confidence           *float64                     `json:"confidence,omitempty"`
	UncertaintyNotes     string                       `json:"uncertainty_notes,omitempty"`
	Outcome              string                       `json:"outcome,omitempty"`
	Assumptions          map[string]models.Assumption `json:"assumptions,omitempty"`
	RiskyAssumptions     []string                     `json:"risky_assumptions"`
	FalsifiedAssumptions []string                     `json:"falsified_assumptions"`
	UnresolvedReferences []string                     `json:"unresolved_references"`
	CrossSessionWarnings []string                     `json:"cross_session_warnings"`
}

type verifyAssumptionInput struct {
	SessionID    string `json:"session_id" jsonschema:"required,session owning the assumption"`
	AssumptionID string `json:"assumption_id" jsonschema:"required,assumption identifier (e.g. A1)"`
	Verified     bool   `json:"verified" jsonschema:"required,true if the assumption held, false if it was proven wrong"`
}

type verifyAssumptionOutput struct {
	Assumption       models.Assumption `json:"assumption"`
	AffectedThoughts []int             `json:"affected_thoughts"`
}

type getSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"required,session identifier"`
}

type listSessionsInput struct{}

type listSessionsOutput struct {
	Sessions []models.SessionSummary `json:"sessions"`
	Count    int                     `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	ThoughtsAccepted       int            `json:"thoughts_accepted"`
	Revisions              int            `json:"revisions"`
	BranchThoughts         int            `json:"branch_thoughts"`
	AssumptionsDeclared    int            `json:"assumptions_declared"`
	AssumptionsInvalidated int            `json:"assumptions_invalidated"`
	AssumptionsVerified    int            `json:"assumptions_verified"`
	ThoughtsBySession      map[string]int `json:"thoughts_by_session"`
	SessionCount           int            `json:"session_count"`
	EventCount             int            `json:"event_count"`
	OldestEvent            string         `json:"oldest_event,omitempty"`
	NewestEvent            string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name: "ultrathink",
		Description: "A tool for rigorous, step-by-step reasoning with explicit assumption tracking. " +
			"Each call records one thought; thoughts can revise earlier ones, branch into alternatives, " +
			"declare assumptions, depend on them (including across sessions via sessionid:A1), and invalidate them.",
	}, s.handleThought)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "verify_assumption",
		Description: "Mark an assumption as verified true or false, and return the thought numbers that depend on it.",
	}, s.handleVerifyAssumption)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_session",
		Description: "Get the full state of a thinking session: thoughts, branches, and assumptions.",
	}, s.handleGetSession)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_sessions",
		Description: "List all thinking sessions with thought, branch, and assumption counts.",
	}, s.handleListSessions)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: thoughts, revisions, branches, and assumption activity.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleThought(_ context.Context, _ *gomcp.CallToolRequest, input thoughtInput) (*gomcp.CallToolResult, thoughtOutput, error) {
	req := models.ThoughtRequest{
		Thought:           input.Thought,
		TotalThoughts:     input.TotalThoughts,
		ThoughtNumber:     input.ThoughtNumber,
		NextThoughtNeeded: input.NextThoughtNeeded,
		SessionID:         input.SessionID,
		IsRevision:        input.IsRevision,
		RevisesThought:    input.RevisesThought,
		BranchFromThought: input.BranchFromThought,
		BranchID:          input.BranchID,
		NeedsMoreThoughts: input.NeedsMoreThoughts,
		Confidence:        input.Confidence,
		UncertaintyNotes:  input.UncertaintyNotes,
		Outcome:           input.Outcome,

		DependsOnAssumptions:   input.DependsOnAssumptions,
		InvalidatesAssumptions: input.InvalidatesAssumptions,
	}
	for _, a := range input.Assumptions {
		req.Assumptions = append(req.Assumptions, models.AssumptionInput{
			ID:         a.ID,
			Text:       a.Text,
			Confidence: a.Confidence,
			Critical:   a.Critical,
			Verifiable: a.Verifiable,
			Evidence:   a.Evidence,
		})
	}

	s.mu.Lock()
	resp, err := s.svc.ProcessThought(req)
	s.mu.Unlock()
	if err != nil {
		return errorResult(err.Error()), thoughtOutput{}, nil
	}

	out := thoughtOutput{
		SessionID:            resp.SessionID,
		ThoughtNumber:        resp.ThoughtNumber,
		TotalThoughts:        resp.TotalThoughts,
		NextThoughtNeeded:    resp.NextThoughtNeeded,
		Branches:             resp.Branches,
		ThoughtHistoryLength: resp.ThoughtHistoryLength,
		Confidence:           resp.Confidence,
		UncertaintyNotes:     resp.UncertaintyNotes,
		Outcome:              resp.Outcome,
		Assumptions:          resp.Assumptions,
		RiskyAssumptions:     resp.RiskyAssumptions,
		FalsifiedAssumptions: resp.FalsifiedAssumptions,
		UnresolvedReferences: resp.UnresolvedReferences,
		CrossSessionWarnings: resp.CrossSessionWarnings,
	}
	return nil, out, nil
}

func (s *Server) handleVerifyAssumption(_ context.Context, _ *gomcp.CallToolRequest, input verifyAssumptionInput) (*gomcp.CallToolResult, verifyAssumptionOutput, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), verifyAssumptionOutput{}, nil
	}
	if input.AssumptionID == "" {
		return errorResult("assumption_id is required"), verifyAssumptionOutput{}, nil
	}

	s.mu.Lock()
	assumption, affected, err := s.svc.VerifyAssumption(input.SessionID, input.AssumptionID, input.Verified)
	s.mu.Unlock()
	if err != nil {
		return errorResult(fmt.Sprintf("verifying %s in session %s: %s", input.AssumptionID, input.SessionID, err)), verifyAssumptionOutput{}, nil
	}

	out := verifyAssumptionOutput{
		Assumption:       *assumption,
		AffectedThoughts: affected,
	}
	if out.AffectedThoughts == nil {
		out.AffectedThoughts = []int{}
	}
	return nil, out, nil
}

func (s *Server) handleGetSession(_ context.Context, _ *gomcp.CallToolRequest, input getSessionInput) (*gomcp.CallToolResult, models.SessionSnapshot, error) {
	if input.SessionID == "" {
		return errorResult("session_id is required"), models.SessionSnapshot{}, nil
	}

	s.mu.Lock()
	snapshot, err := s.svc.SessionSnapshot(input.SessionID)
	s.mu.Unlock()
	if err != nil {
		return errorResult(err.Error()), models.SessionSnapshot{}, nil
	}

	return nil, *snapshot, nil
}

func (s *Server) handleListSessions(_ context.Context, _ *gomcp.CallToolRequest, _ listSessionsInput) (*gomcp.CallToolResult, listSessionsOutput, error) {
	s.mu.Lock()
	summaries := s.svc.ListSessions()
	s.mu.Unlock()

	out := listSessionsOutput{
		Sessions: summaries,
		Count:    len(summaries),
	}
	if out.Sessions == nil {
		out.Sessions = []models.SessionSummary{}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics not available (event logging may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		ThoughtsAccepted:       metrics.ThoughtsAccepted,
		Revisions:              metrics.Revisions,
		BranchThoughts:         metrics.BranchThoughts,
		AssumptionsDeclared:    metrics.AssumptionsDeclared,
		AssumptionsInvalidated: metrics.AssumptionsInvalidated,
		AssumptionsVerified:    metrics.AssumptionsVerified,
		ThoughtsBySession:      metrics.ThoughtsBySession,
		SessionCount:           metrics.SessionCount,
		EventCount:             metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		ThoughtsBySession: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d" or "24h" into
// the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
