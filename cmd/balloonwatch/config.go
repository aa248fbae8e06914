package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/balloonwatch/internal/dashboard"
	"github.com/tinytelemetry/balloonwatch/internal/model"
)

// cliConfig holds only dashboard-relevant configuration.
type cliConfig struct {
	Endpoint           string        `mapstructure:"endpoint"`
	RequestTimeout     time.Duration `mapstructure:"request-timeout"`
	RacePolicy         string        `mapstructure:"race-policy"`
	Location           string        `mapstructure:"location"`
	AltitudeChart      bool          `mapstructure:"altitude-chart"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	LogFile            string        `mapstructure:"log-file"`
	LogLevel           string        `mapstructure:"log-level"`

	Policy dashboard.RacePolicy `mapstructure:"-"` // parsed from RacePolicy
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("BALLOONWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("endpoint", model.DefaultEndpoint)
	v.SetDefault("request-timeout", time.Duration(0))
	v.SetDefault("race-policy", dashboard.LatestRequest.String())
	v.SetDefault("location", model.DefaultLocation)
	v.SetDefault("altitude-chart", false)
	v.SetDefault("reverse-scroll-wheel", false)
	v.SetDefault("log-file", "")
	v.SetDefault("log-level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "balloonwatch", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	policy, ok := dashboard.ParseRacePolicy(cfg.RacePolicy)
	if !ok {
		return cfg, fmt.Errorf("invalid race-policy %q (allowed: latest-request, last-completion)", cfg.RacePolicy)
	}
	cfg.Policy = policy
	if cfg.RequestTimeout < 0 {
		return cfg, fmt.Errorf("request-timeout must not be negative, got %s", cfg.RequestTimeout)
	}

	return cfg, nil
}
