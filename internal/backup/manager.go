// Package backup takes periodic file copies of the relay's snapshot database.
package backup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24

	filePrefix = "relay-"
	fileSuffix = ".duckdb"
)

// Config controls periodic database backups.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int
	Logger   *slog.Logger
}

// Source is the database the manager copies.
type Source interface {
	Path() string
	BackupTo(dstPath string) error
}

// Manager runs periodic local backups and prunes old copies.
type Manager struct {
	src    Source
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager validates cfg, takes a startup backup and starts the periodic
// loop. It returns nil when backups are disabled.
func NewManager(src Source, cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	m, err := newManager(src, cfg)
	if err != nil {
		return nil, err
	}

	// Startup backup to reduce the recovery point after restarts.
	if err := m.RunOnce(); err != nil {
		m.logger.Warn("startup backup failed", "error", err)
	}

	m.wg.Add(1)
	go m.loop()
	return m, nil
}

func newManager(src Source, cfg Config) (*Manager, error) {
	if src == nil {
		return nil, fmt.Errorf("backup: nil source")
	}
	if strings.TrimSpace(src.Path()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: local-dir is required when backup is enabled")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create local-dir: %w", err)
	}

	return &Manager{
		src:    src,
		cfg:    cfg,
		logger: cfg.Logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}, nil
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(); err != nil {
				m.logger.Warn("periodic backup failed", "error", err)
			}
		case <-m.done:
			return
		}
	}
}

// RunOnce writes one backup file and prunes old local copies.
func (m *Manager) RunOnce() error {
	name := filePrefix + m.now().UTC().Format("20060102-150405.000") + fileSuffix
	dst := filepath.Join(m.cfg.LocalDir, name)

	if err := m.src.BackupTo(dst); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	m.logger.Info("backup created", "path", dst)

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.KeepLast); err != nil {
		return fmt.Errorf("prune local backups: %w", err)
	}
	return nil
}

// Dir returns the directory backups are written to.
func (m *Manager) Dir() string {
	return m.cfg.LocalDir
}

// Stop terminates the periodic loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
	m.wg.Wait()
}

func pruneLocalBackups(localDir string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	// timestamp is embedded in the filename, so lexical order is chronological
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	for _, old := range matches[keepLast:] {
		if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
