package model

import "time"

// Snapshot is one successful poll of the upstream endpoint.
type Snapshot struct {
	ID        int64
	FetchedAt time.Time
	Weather   *WeatherSnapshot
	Readings  []BalloonReading
}

// PollStatus summarises the relay's polling loop.
type PollStatus struct {
	Polls       int64
	Failures    int64
	LastPoll    time.Time
	LastSuccess time.Time
	LastError   string
}
