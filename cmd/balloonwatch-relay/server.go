package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/balloonwatch/internal/backup"
	"github.com/tinytelemetry/balloonwatch/internal/duckdb"
	"github.com/tinytelemetry/balloonwatch/internal/feed"
	"github.com/tinytelemetry/balloonwatch/internal/httpserver"
	"github.com/tinytelemetry/balloonwatch/internal/logging"
	"github.com/tinytelemetry/balloonwatch/internal/poller"
)

// runServer polls the upstream endpoint and serves stored snapshots over
// HTTP until interrupted.
func runServer(cfg appConfig) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := duckdb.NewStore(cfg.DBPath, duckdb.Config{
		QueryTimeout: cfg.QueryTimeout,
		Logger:       logger.With("component", "duckdb"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	// Start retention cleaner for automatic snapshot expiry
	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionHours: cfg.RetentionHours,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeepLast,
		Logger:   logger.With("component", "backup"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	client := feed.NewClient(cfg.Upstream,
		feed.WithTimeout(cfg.RequestTimeout),
		feed.WithUserAgent("balloonwatch-relay/"+version),
	)
	poll := poller.New(client, store, poller.Config{
		Interval: cfg.PollInterval,
		Logger:   logger.With("component", "poller"),
	})

	apiServer := httpserver.NewServer(cfg.APIAddr, store, poll, httpserver.HistoryConfig{
		Window: cfg.HistoryWindow,
		Limit:  cfg.HistoryLimit,
	})
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	defer apiServer.Stop()

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg, client.Endpoint(), apiServer.Addr())
	logger.Info("relay started",
		"endpoint", client.Endpoint(),
		"api", apiServer.Addr(),
		"poll_interval", cfg.PollInterval.String())

	// Use errgroup for concurrent goroutine lifecycle management.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return poll.Run(gctx)
	})

	// Wait for context cancellation (from signal handler) in the errgroup
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("errgroup exited with error", "error", err)
	}

	cancel()

	// If we reach here, graceful shutdown succeeded within the deadline.
	// The signal goroutine (if active) dies with the process.
	signal.Stop(sigCh)
	logger.Info("relay stopped")

	return nil
}

func newLogger(cfg appConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level, cfg.LogFormat, false, "relay")
}

func printStartupBanner(cfg appConfig, endpoint, apiAddr string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔╗ ╔═╗╦  ╦  ╔═╗╔═╗╔╗╔
    ╠╩╗╠═╣║  ║  ║ ║║ ║║║║
    ╚═╝╩ ╩╩═╝╩═╝╚═╝╚═╝╝╚╝`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	// Upstream
	lines = append(lines, bold.Render("    Upstream"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Endpoint       %s", check, cyan.Render(endpoint)))
	lines = append(lines, fmt.Sprintf("    %s  Poll Interval  %s", check, dim.Render(cfg.PollInterval.String())))
	lines = append(lines, "")

	// Gateway
	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(apiAddr)))
	lines = append(lines, "")

	// Storage
	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render(shortenPath(cfg.DBPath))))
	if cfg.RetentionHours > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Retention      %s", check, dim.Render(fmt.Sprintf("%dh", cfg.RetentionHours))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Retention      %s", dot, dim.Render("disabled")))
	}
	if cfg.BackupEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Backups        %s", check, dim.Render(fmt.Sprintf("%s every %s, keep %d", shortenPath(cfg.BackupDir), cfg.BackupInterval, cfg.BackupKeepLast))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Backups        %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	if path == "" {
		return "in-memory"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
