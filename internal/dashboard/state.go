package dashboard

import "github.com/tinytelemetry/balloonwatch/internal/model"

// FetchState is the lifecycle phase of the remote fetch. It is always exactly
// one of Loading, Failed or Loaded.
type FetchState interface {
	fetchState()
}

// Loading is the initial state. It carries no payload.
type Loading struct{}

// Failed holds the single user-visible failure message.
type Failed struct {
	Message string
}

// Loaded holds the data of the last applied successful fetch.
type Loaded struct {
	Weather    *model.WeatherSnapshot // nil when the payload had no weather
	Balloons   []model.BalloonReading // never nil
	Historical []model.HistoricalBalloonReading
}

func (Loading) fetchState() {}
func (Failed) fetchState()  {}
func (Loaded) fetchState()  {}

// newLoaded builds the Loaded state from a payload, coalescing missing
// sections to their empty forms.
func newLoaded(p *model.Payload) Loaded {
	if p == nil {
		return Loaded{Balloons: []model.BalloonReading{}}
	}
	balloons := p.Balloons.Readings
	if balloons == nil {
		balloons = []model.BalloonReading{}
	}
	return Loaded{
		Weather:    p.Weather,
		Balloons:   balloons,
		Historical: p.Historical(),
	}
}

// RacePolicy decides which of several overlapping fetch results wins.
type RacePolicy int

const (
	// LatestRequest discards a result when a newer request has already
	// been applied.
	LatestRequest RacePolicy = iota
	// LastCompletion applies every result as it completes, so the last
	// one to finish wins regardless of issue order.
	LastCompletion
)

// ParseRacePolicy maps a config string to a RacePolicy.
func ParseRacePolicy(s string) (RacePolicy, bool) {
	switch s {
	case "", "latest-request":
		return LatestRequest, true
	case "last-completion":
		return LastCompletion, true
	}
	return LatestRequest, false
}

func (p RacePolicy) String() string {
	if p == LastCompletion {
		return "last-completion"
	}
	return "latest-request"
}
