// Package main is the entry point for the Token Meter TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenmeter/tokenmeter-tui/internal/app"
	"github.com/tokenmeter/tokenmeter-tui/internal/config"
	"github.com/tokenmeter/tokenmeter-tui/internal/services"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/tabs/dashboard"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/tabs/history"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/tabs/info"
	"github.com/tokenmeter/tokenmeter-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize the service manager
	// This opens the database, starts the tracker, and begins watching
	// the usage log for incoming records
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state), // Tab 0: Dashboard - live usage summary
		history.New(state),   // Tab 1: History - hourly trends
		info.New(state, cfg), // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// 7. Forward signals as a quit message
	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Token Meter TUI - LLM token usage monitor

Usage:
  tmt [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  r               Refresh data
  t               Cycle history time range
  x               Reset session totals
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH           SQLite database path
  USAGE_LOG_PATH          JSONL usage log to watch for records
  REFRESH_INTERVAL        UI refresh interval (default: 5s)
  ALERT_THRESHOLD_TOKENS  Desktop alert once session tokens cross this (0 = off)
  RECENT_LIMIT            Recent-calls list size (default: 50)
  RETENTION_DAYS          Days of history to keep (default: 90, 0 = forever)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/tokenmeter/.env
  - ~/.tokenmeter/.env

For more information, visit: https://github.com/tokenmeter/tokenmeter-tui`)
}
