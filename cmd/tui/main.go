package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"EngineMirror/internal/di"
	"EngineMirror/internal/view"
	"EngineMirror/pkg/config"
	"EngineMirror/pkg/logger"
	"EngineMirror/pkg/trace"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults when empty)")
	apiURL := flag.String("api-url", "", "engine API URL (overrides config)")
	logFile := flag.String("log-file", "engine-mirror-tui.log", "where the mirror's own logs and spans go")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	dashboardConfig(cfg, *apiURL, *logFile)

	core, err := di.InitializeCore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	if err := core.Scheduler.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "scheduler: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(view.NewModel(core.Store, core.Scheduler), tea.WithAltScreen())
	_, runErr := p.Run()

	core.Scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := trace.Shutdown(ctx); err != nil {
		core.Logger.Warn("trace shutdown failed", logger.Error(err))
	}
	cancel()
	core.Logger.RemoveCollector()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// dashboardConfig keeps everything but the dashboard off stdout: logs and
// spans go to logFile and the metrics endpoint is not served.
func dashboardConfig(cfg *config.Config, apiURL, logFile string) {
	if apiURL != "" {
		cfg.Backend.BaseURL = apiURL
	}
	cfg.Logger.Output = logFile
	cfg.Logger.Format = "json"
	cfg.Tracing.Output = logFile
	cfg.Metrics.Enabled = false
}
