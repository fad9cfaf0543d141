package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// Dashboard panel indices.
const (
	panelSessions = iota
	panelMetrics
	panelRisky
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	sessions    []models.SessionSummary
	metricsData *metricsSnapshot
	risky       []riskySnapshot

	// State.
	loading bool
	err     error
}

type metricsSnapshot struct {
	thoughtsAccepted       int
	revisions              int
	branchThoughts         int
	assumptionsDeclared    int
	assumptionsInvalidated int
	eventCount             int
}

type riskySnapshot struct {
	sessionID  string
	id         string
	text       string
	confidence float64
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	sessions []models.SessionSummary
	metrics  *metricsSnapshot
	risky    []riskySnapshot
	err      error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	riskyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelSessions,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessions = msg.sessions
		m.metricsData = msg.metrics
		m.risky = msg.risky
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Ultrathink Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	sessionsPanel := m.renderSessionsPanel()
	metricsPanel := m.renderMetricsPanel()
	riskyPanel := m.renderRiskyPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		sessionsPanel = m.applyPanelStyle(panelSessions, sessionsPanel, colWidth-4)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, colWidth-4)
		riskyPanel = m.applyPanelStyle(panelRisky, riskyPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, sessionsPanel, metricsPanel, riskyPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		sessionsPanel = m.applyPanelStyle(panelSessions, sessionsPanel, panelWidth)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		riskyPanel = m.applyPanelStyle(panelRisky, riskyPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, sessionsPanel, metricsPanel, riskyPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderSessionsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Sessions"))
	b.WriteString("\n")

	if len(m.sessions) == 0 {
		b.WriteString("  No sessions found.")
		return b.String()
	}

	totalThoughts := 0
	for _, s := range m.sessions {
		label := fmt.Sprintf("  %-22s %3d thoughts", truncate(s.SessionID, 22), s.ThoughtCount)
		if s.BranchCount > 0 {
			label += fmt.Sprintf(" (%d branches)", s.BranchCount)
		}
		b.WriteString(label)
		b.WriteString("\n")
		totalThoughts += s.ThoughtCount
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d sessions, %d thoughts", len(m.sessions), totalThoughts))

	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	lines := []struct {
		label string
		value int
	}{
		{"Events", md.eventCount},
		{"Thoughts", md.thoughtsAccepted},
		{"Revisions", md.revisions},
		{"Branches", md.branchThoughts},
		{"Declared", md.assumptionsDeclared},
		{"Invalidated", md.assumptionsInvalidated},
	}

	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", l.label, l.value))
	}

	return b.String()
}

func (m dashboardModel) renderRiskyPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Risky assumptions"))
	b.WriteString("\n")

	if len(m.risky) == 0 {
		b.WriteString("  No risky assumptions.")
		return b.String()
	}

	for _, r := range m.risky {
		tag := riskyStyle.Render(fmt.Sprintf("[%s:%s]", truncate(r.sessionID, 12), r.id))
		b.WriteString(fmt.Sprintf("  %s %s (%.0f%%)\n", tag, truncate(r.text, 40), r.confidence*100))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d assumption(s)", len(m.risky)))

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	if Svc != nil {
		result.sessions = Svc.ListSessions()

		for _, summary := range result.sessions {
			if summary.RiskyAssumptions == 0 {
				continue
			}
			snapshot, err := Svc.SessionSnapshot(summary.SessionID)
			if err != nil {
				result.err = fmt.Errorf("loading session %s: %w", summary.SessionID, err)
				return result
			}
			for id, a := range snapshot.Assumptions {
				if a.Critical && a.Confidence < 0.5 && a.Status == models.AssumptionUnverified {
					result.risky = append(result.risky, riskySnapshot{
						sessionID:  summary.SessionID,
						id:         id,
						text:       a.Text,
						confidence: a.Confidence,
					})
				}
			}
		}

		sort.Slice(result.risky, func(i, j int) bool {
			if result.risky[i].sessionID != result.risky[j].sessionID {
				return result.risky[i].sessionID < result.risky[j].sessionID
			}
			return result.risky[i].id < result.risky[j].id
		})
	}

	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			thoughtsAccepted:       metrics.ThoughtsAccepted,
			revisions:              metrics.Revisions,
			branchThoughts:         metrics.BranchThoughts,
			assumptionsDeclared:    metrics.AssumptionsDeclared,
			assumptionsInvalidated: metrics.AssumptionsInvalidated,
			eventCount:             metrics.EventCount,
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for sessions and metrics",
	Long: `Launch an interactive terminal dashboard showing thinking sessions,
metrics, and risky assumptions in a live view.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("thinking service not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
