package model

import "time"

// Shared defaults used by both the dashboard and relay binaries.
const (
	DefaultEndpoint      = "https://weather-balloon-app.onrender.com/"
	DefaultLocation      = "Palo Alto"
	DefaultPollInterval  = 5 * time.Minute
	DefaultHistoryWindow = 24 * time.Hour
	DefaultHistoryLimit  = 500
)
