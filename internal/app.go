// Package internal provides the App struct that wires all components of the
// ultrathink system together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ultrathink-mcp/ultrathink/internal/cli"
	"github.com/ultrathink-mcp/ultrathink/internal/config"
	"github.com/ultrathink-mcp/ultrathink/internal/core"
	"github.com/ultrathink-mcp/ultrathink/internal/observability"
	"github.com/ultrathink-mcp/ultrathink/internal/render"
)

// App holds all service dependencies for the ultrathink system.
type App struct {
	BasePath string

	// Configuration
	Config *config.Config

	// Logging
	Logger *zap.Logger

	// Core engine
	Directory *core.SessionDirectory
	Svc       *core.Service

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of the ultrathink system.
// basePath is the directory where .ultrathink.yaml and the event log live.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Logging ---
	// Everything goes to stderr; stdout belongs to the MCP stdio transport.
	app.Logger, err = newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	// --- Thought trace ---
	var trace core.TraceSink
	if !cfg.DisableThoughtLogging {
		trace = render.NewConsoleTracer(os.Stderr)
	}

	// --- Observability ---
	if cfg.EventLogPath != "" {
		path := cfg.EventLogPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(basePath, path)
		}
		app.EventLog, err = observability.NewJSONLEventLog(path)
		if err != nil {
			// Non-fatal: run without event logging if the log can't be created.
			app.Logger.Warn("event log disabled", zap.String("path", path), zap.Error(err))
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core engine ---
	app.Directory = core.NewSessionDirectory(trace)
	var recorder core.EventRecorder
	if app.EventLog != nil {
		recorder = &eventRecorderAdapter{log: app.EventLog, logger: app.Logger}
	}
	app.Svc = core.NewService(app.Directory, recorder, app.Logger)

	// --- Wire CLI package-level variables ---
	cli.Svc = app.Svc
	cli.AppConfig = app.Config
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// newLogger builds a structured logger writing to stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}

// ResolveBasePath determines the base path for the ultrathink data directory.
// It checks the ULTRATHINK_HOME env var, then walks up from the current
// directory looking for .ultrathink.yaml, and falls back to the cwd.
func ResolveBasePath() string {
	if home := os.Getenv("ULTRATHINK_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".ultrathink.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// eventRecorderAdapter adapts observability.EventLog to core.EventRecorder.
// Write failures are logged and swallowed; the engine never fails a thought
// because the event log is unavailable.
type eventRecorderAdapter struct {
	log    observability.EventLog
	logger *zap.Logger
}

func (a *eventRecorderAdapter) Record(eventType string, data map[string]any) {
	sessionID, _ := data["session_id"].(string)
	event := observability.Event{
		Time:      time.Now().UTC(),
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	}
	if err := a.log.Write(event); err != nil {
		a.logger.Warn("writing event", zap.String("type", eventType), zap.Error(err))
	}
}
