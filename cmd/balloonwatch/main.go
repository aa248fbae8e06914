package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
	"github.com/tinytelemetry/balloonwatch/internal/feed"
	"github.com/tinytelemetry/balloonwatch/internal/logging"
	"github.com/tinytelemetry/balloonwatch/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var endpoint string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/balloonwatch/config.yml)")
	flag.StringVar(&endpoint, "endpoint", "", "override the data endpoint")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Balloonwatch - Weather & Balloon Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logFile, err := logging.OpenFile(cfg.LogFile, "balloonwatch", "dashboard")
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger, err := logging.New(logFile, level, logging.FormatText, true, "dashboard")
	if err != nil {
		return err
	}

	policy := cfg.Policy
	client := feed.NewClient(cfg.Endpoint,
		feed.WithTimeout(cfg.RequestTimeout),
		feed.WithUserAgent("balloonwatch/"+version),
	)
	ctrl := dashboard.NewController(client,
		dashboard.WithRacePolicy(policy),
		dashboard.WithLogger(logger),
	)

	logger.Info("starting dashboard",
		"version", version,
		"endpoint", client.Endpoint(),
		"race_policy", policy.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zones := zone.New()
	dash := tui.NewDashboardModel(ctx, ctrl, zones, tui.Options{
		Location:           cfg.Location,
		AltitudeChart:      cfg.AltitudeChart,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	})
	app := tui.NewApp(zones, tui.NewDashboardPage(dash))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("dashboard stopped")
	return nil
}
