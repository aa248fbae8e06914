package main

import (
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

const (
	defaultBindHost       = "127.0.0.1"
	defaultAPIPort        = 3000
	defaultPollInterval   = model.DefaultPollInterval
	defaultRequestTimeout = 30 * time.Second
	defaultHistoryWindow  = model.DefaultHistoryWindow
	defaultHistoryLimit   = model.DefaultHistoryLimit
	defaultQueryTimeout   = 30 * time.Second
	defaultRetentionHours = 72 // 0 = disabled
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultBackupInterval = 6 * time.Hour
	defaultBackupKeepLast = 24
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Upstream       string        `mapstructure:"upstream-endpoint"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	APIPort        int           `mapstructure:"api-port"`
	APIAddr        string        `mapstructure:"api-addr"`
	DBPath         string        `mapstructure:"db-path"`
	HistoryWindow  time.Duration `mapstructure:"history-window"`
	HistoryLimit   int           `mapstructure:"history-limit"`
	RetentionHours int           `mapstructure:"retention-hours"`
	QueryTimeout   time.Duration `mapstructure:"query-timeout"`
	LogLevel       string        `mapstructure:"log-level"`
	LogFormat      string        `mapstructure:"log-format"`
	BackupEnabled  bool          `mapstructure:"backup-enabled"`
	BackupInterval time.Duration `mapstructure:"backup-interval"`
	BackupDir      string        `mapstructure:"backup-dir"`
	BackupKeepLast int           `mapstructure:"backup-keep-last"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}
