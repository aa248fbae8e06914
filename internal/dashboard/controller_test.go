package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tinytelemetry/balloonwatch/internal/feed"
	"github.com/tinytelemetry/balloonwatch/internal/model"
)

type stubFetcher struct {
	payload *model.Payload
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(_ context.Context) (*model.Payload, error) {
	s.calls++
	return s.payload, s.err
}

func decodePayload(t *testing.T, body string) *model.Payload {
	t.Helper()
	p, err := feed.Decode([]byte(body))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return p
}

func TestNewController_StartsLoading(t *testing.T) {
	c := NewController(&stubFetcher{})

	if _, ok := c.State().(Loading); !ok {
		t.Fatalf("state = %T, want Loading", c.State())
	}
	if c.ShowHistorical() {
		t.Error("historical should start hidden")
	}
}

func TestMount_OnlyOnce(t *testing.T) {
	c := NewController(&stubFetcher{})

	if _, ok := c.Mount(); !ok {
		t.Fatal("first Mount should issue a ticket")
	}
	if _, ok := c.Mount(); ok {
		t.Fatal("second Mount should not issue a ticket")
	}
	if c.InFlight() != 1 {
		t.Errorf("in flight = %d, want 1", c.InFlight())
	}
}

func TestLoad_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *stubFetcher
		check   func(t *testing.T, s FetchState)
	}{
		{
			name:    "http status",
			fetcher: &stubFetcher{err: &feed.HTTPStatusError{StatusCode: 500}},
			check: func(t *testing.T, s FetchState) {
				f, ok := s.(Failed)
				if !ok {
					t.Fatalf("state = %T, want Failed", s)
				}
				if !strings.Contains(f.Message, "500") {
					t.Errorf("message = %q, want it to contain 500", f.Message)
				}
			},
		},
		{
			name:    "transport",
			fetcher: &stubFetcher{err: &feed.TransportError{Err: errors.New("dial tcp: no such host")}},
			check: func(t *testing.T, s FetchState) {
				f, ok := s.(Failed)
				if !ok {
					t.Fatalf("state = %T, want Failed", s)
				}
				if f.Message != "Failed to fetch data: dial tcp: no such host" {
					t.Errorf("message = %q", f.Message)
				}
			},
		},
		{
			name:    "logical",
			fetcher: &stubFetcher{err: &feed.LogicalError{Message: "rate limited"}},
			check: func(t *testing.T, s FetchState) {
				f, ok := s.(Failed)
				if !ok {
					t.Fatalf("state = %T, want Failed", s)
				}
				if f.Message != "rate limited" {
					t.Errorf("message = %q, want %q", f.Message, "rate limited")
				}
			},
		},
		{
			name:    "missing sections",
			fetcher: &stubFetcher{payload: &model.Payload{}},
			check: func(t *testing.T, s FetchState) {
				l, ok := s.(Loaded)
				if !ok {
					t.Fatalf("state = %T, want Loaded", s)
				}
				if l.Weather != nil {
					t.Error("weather should be nil")
				}
				if l.Balloons == nil || len(l.Balloons) != 0 {
					t.Errorf("balloons = %#v, want empty non-nil", l.Balloons)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.fetcher)
			tt.check(t, c.Load(context.Background()))
			if tt.fetcher.calls != 1 {
				t.Errorf("fetch calls = %d, want 1", tt.fetcher.calls)
			}
			if c.InFlight() != 0 {
				t.Errorf("in flight = %d, want 0", c.InFlight())
			}
		})
	}
}

func TestLoad_Success(t *testing.T) {
	body := `{"weather":{"currentConditions":{"temp":72}},"balloons":{"readings":[[1,2,3]],"historical_balloons":[{"id":4}]}}`
	c := NewController(&stubFetcher{payload: decodePayload(t, body)})

	l, ok := c.Load(context.Background()).(Loaded)
	if !ok {
		t.Fatalf("state = %T, want Loaded", c.State())
	}
	if l.Weather == nil || len(l.Balloons) != 1 || len(l.Historical) != 1 {
		t.Errorf("loaded = %+v", l)
	}
	if c.LastLoaded().IsZero() {
		t.Error("LastLoaded should be set")
	}
}

func TestToggleHistorical_PersistsAcrossLoads(t *testing.T) {
	fetcher := &stubFetcher{payload: &model.Payload{}}
	c := NewController(fetcher)

	c.ToggleHistorical()
	c.Load(context.Background())
	if !c.ShowHistorical() {
		t.Fatal("toggle reset by successful load")
	}

	fetcher.payload, fetcher.err = nil, &feed.HTTPStatusError{StatusCode: 502}
	c.Load(context.Background())
	if _, ok := c.State().(Failed); !ok {
		t.Fatalf("state = %T, want Failed", c.State())
	}
	if !c.ShowHistorical() {
		t.Fatal("toggle reset by failed load")
	}

	c.ToggleHistorical()
	if c.ShowHistorical() {
		t.Fatal("second toggle should hide historical data")
	}
}

func TestRefetch_NoIntermediateLoading(t *testing.T) {
	c := NewController(&stubFetcher{payload: &model.Payload{}})
	c.Load(context.Background())

	c.Begin()
	if _, ok := c.State().(Loaded); !ok {
		t.Fatalf("state = %T after Begin, want Loaded to stay until completion", c.State())
	}
}

func TestApply_LatestRequestDropsStale(t *testing.T) {
	c := NewController(&stubFetcher{})

	first := c.Begin()
	second := c.Begin()

	if !c.Apply(Result{Ticket: second, Payload: &model.Payload{}}) {
		t.Fatal("newest result should apply")
	}
	if c.Apply(Result{Ticket: first, Err: &feed.HTTPStatusError{StatusCode: 500}}) {
		t.Fatal("stale result should be dropped")
	}
	if _, ok := c.State().(Loaded); !ok {
		t.Fatalf("state = %T, want Loaded", c.State())
	}
	if c.InFlight() != 0 {
		t.Errorf("in flight = %d, want 0", c.InFlight())
	}
}

func TestApply_LatestRequestInOrder(t *testing.T) {
	c := NewController(&stubFetcher{})

	first := c.Begin()
	second := c.Begin()

	if !c.Apply(Result{Ticket: first, Err: &feed.HTTPStatusError{StatusCode: 500}}) {
		t.Fatal("older result completing first should still apply")
	}
	if !c.Apply(Result{Ticket: second, Payload: &model.Payload{}}) {
		t.Fatal("newer result should apply")
	}
	if _, ok := c.State().(Loaded); !ok {
		t.Fatalf("state = %T, want Loaded", c.State())
	}
}

func TestApply_LastCompletionWins(t *testing.T) {
	c := NewController(&stubFetcher{}, WithRacePolicy(LastCompletion))

	first := c.Begin()
	second := c.Begin()

	c.Apply(Result{Ticket: second, Payload: &model.Payload{}})
	if !c.Apply(Result{Ticket: first, Err: &feed.HTTPStatusError{StatusCode: 500}}) {
		t.Fatal("last completion should always apply")
	}
	if _, ok := c.State().(Failed); !ok {
		t.Fatalf("state = %T, want Failed", c.State())
	}
}

func TestParseRacePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want RacePolicy
		ok   bool
	}{
		{"", LatestRequest, true},
		{"latest-request", LatestRequest, true},
		{"last-completion", LastCompletion, true},
		{"random", LatestRequest, false},
	}
	for _, tt := range tests {
		got, ok := ParseRacePolicy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRacePolicy(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}
