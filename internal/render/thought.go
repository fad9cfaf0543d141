// Package render draws accepted thoughts and assumptions as bordered,
// colored boxes for the stderr trace. Rendering is purely cosmetic; the
// engine's data model is identical with tracing on or off.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// Style definitions.
var (
	plainBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("69")).
			Padding(0, 1)

	revisionBoxStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("226")).
				Padding(0, 1)

	branchBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("46")).
			Padding(0, 1)

	headerStyle      = lipgloss.NewStyle().Bold(true)
	uncertaintyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	outcomeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	sessionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusTrue  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusFalse = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// ConsoleTracer renders accepted thoughts to an output stream, typically
// stderr so the stdio transport on stdout stays clean. It implements
// core.TraceSink.
type ConsoleTracer struct {
	out io.Writer
}

// NewConsoleTracer creates a tracer writing to out.
func NewConsoleTracer(out io.Writer) *ConsoleTracer {
	return &ConsoleTracer{out: out}
}

// ThoughtAccepted renders one accepted thought.
func (c *ConsoleTracer) ThoughtAccepted(sessionID string, t models.Thought) {
	fmt.Fprintln(c.out, FormatThought(t))
	fmt.Fprintln(c.out, sessionStyle.Render("session "+sessionID))
}

// FormatThought renders a thought as a bordered box. Revisions are framed
// yellow, branches green, plain thoughts blue.
func FormatThought(t models.Thought) string {
	var prefix, context string
	box := plainBoxStyle

	switch {
	case t.IsRevision:
		prefix = "Revision"
		context = fmt.Sprintf(" (revising thought %d)", t.RevisesThought)
		box = revisionBoxStyle
	case t.IsBranch():
		prefix = "Branch"
		context = fmt.Sprintf(" (from thought %d, id %s)", t.BranchFromThought, t.BranchID)
		box = branchBoxStyle
	default:
		prefix = "Thought"
	}

	header := fmt.Sprintf("%s %d/%d%s", prefix, t.Number, t.TotalThoughts, context)
	if t.Confidence != nil {
		header += fmt.Sprintf(" [confidence: %.0f%%]", *t.Confidence*100)
	}

	lines := []string{headerStyle.Render(header)}
	if t.UncertaintyNotes != "" {
		lines = append(lines, uncertaintyStyle.Render("uncertainty: "+t.UncertaintyNotes))
	}
	lines = append(lines, t.Text)
	if t.Outcome != "" {
		lines = append(lines, outcomeStyle.Render("outcome: "+t.Outcome))
	}
	for _, a := range t.Assumptions {
		lines = append(lines, FormatAssumption(a))
	}

	return box.Render(strings.Join(lines, "\n"))
}

// FormatAssumption renders one assumption line with a status marker.
func FormatAssumption(a models.Assumption) string {
	var status string
	switch a.Status {
	case models.AssumptionVerifiedTrue:
		status = statusTrue.Render(" [true]")
	case models.AssumptionVerifiedFalse:
		status = statusFalse.Render(" [false]")
	default:
		if a.Verifiable {
			status = " [?]"
		}
	}

	critical := ""
	if a.Critical {
		critical = " CRITICAL"
	}

	line := fmt.Sprintf("%s: %s%s%s (confidence: %.0f%%)", a.ID, a.Text, status, critical, a.Confidence*100)
	if a.Evidence != "" {
		line += "\n    evidence: " + a.Evidence
	}
	return line
}
