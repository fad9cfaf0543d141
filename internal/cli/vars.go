package cli

import (
	"github.com/ultrathink-mcp/ultrathink/internal/config"
	"github.com/ultrathink-mcp/ultrathink/internal/core"
	"github.com/ultrathink-mcp/ultrathink/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Svc         *core.Service
	AppConfig   *config.Config
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
