package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValueTruthiness(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		truthy  bool
		str     string
	}{
		{`null`, false, false, ""},
		{`0`, true, false, "0"},
		{`0.0`, true, false, "0"},
		{`-0`, true, false, "0"},
		{`""`, true, false, ""},
		{`false`, true, false, "false"},
		{`true`, true, true, "true"},
		{`12`, true, true, "12"},
		{`37.4`, true, true, "37.4"},
		{`-122.1`, true, true, "-122.1"},
		{`1e4`, true, true, "10000"},
		{`"b-7"`, true, true, "b-7"},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if got := v.Present(); got != tt.present {
			t.Errorf("%s: Present() = %v, want %v", tt.raw, got, tt.present)
		}
		if got := v.Truthy(); got != tt.truthy {
			t.Errorf("%s: Truthy() = %v, want %v", tt.raw, got, tt.truthy)
		}
		if got := v.String(); got != tt.str {
			t.Errorf("%s: String() = %q, want %q", tt.raw, got, tt.str)
		}
	}

	var missing Value
	if missing.Present() || missing.Truthy() {
		t.Error("zero Value should be absent and falsy")
	}
}

func TestPayload_BalloonTuples(t *testing.T) {
	body := `{"weather":{"currentConditions":{"temp":72,"conditions":"Clear","humidity":40}},
		"balloons":[[37.4,-122.1,10000],[null,null,null],[1.5]]}`

	var p Payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.Weather == nil || p.Weather.CurrentConditions == nil {
		t.Fatal("expected current conditions")
	}
	if got := p.Weather.CurrentConditions.Temp.String(); got != "72" {
		t.Errorf("temp = %q, want 72", got)
	}
	if got := p.Balloons.Len(); got != 3 {
		t.Fatalf("readings = %d, want 3", got)
	}

	first := p.Balloons.Readings[0]
	if first.Lat.String() != "37.4" || first.Lon.String() != "-122.1" || first.Alt.String() != "10000" {
		t.Errorf("first reading = %s/%s/%s", first.Lat, first.Lon, first.Alt)
	}
	second := p.Balloons.Readings[1]
	if second.Lat.Present() || second.Lon.Present() || second.Alt.Present() {
		t.Error("null positions should be absent")
	}
	third := p.Balloons.Readings[2]
	if !third.Lat.Present() || third.Lon.Present() || third.Alt.Present() {
		t.Error("short tuple should only carry latitude")
	}
}

func TestPayload_BalloonObjectForm(t *testing.T) {
	tests := []struct {
		name     string
		balloons string
		readings int
		hist     int
	}{
		{"readings key", `{"readings":[[1,2,3]],"historical_balloons":[{"id":1,"lat":2,"lon":3,"alt":4,"hours_ago":5}]}`, 1, 1},
		{"numeric keys", `{"1":[4,5,6],"0":[1,2,3],"historical_balloons":[]}`, 2, 0},
		{"only historical", `{"historical_balloons":[{"id":"a"},{"id":"b"}]}`, 0, 2},
		{"null", `null`, 0, 0},
		{"string", `"nope"`, 0, 0},
		{"number", `42`, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Payload
			if err := json.Unmarshal([]byte(`{"balloons":`+tt.balloons+`}`), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := p.Balloons.Len(); got != tt.readings {
				t.Errorf("readings = %d, want %d", got, tt.readings)
			}
			if got := len(p.Historical()); got != tt.hist {
				t.Errorf("historical = %d, want %d", got, tt.hist)
			}
		})
	}
}

func TestPayload_NumericKeysKeepIndexOrder(t *testing.T) {
	var l BalloonList
	if err := json.Unmarshal([]byte(`{"10":[10,0,0],"2":[2,0,0],"0":[0.5,0,0]}`), &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"0.5", "2", "10"}
	for i, w := range want {
		if got := l.Readings[i].Lat.String(); got != w {
			t.Errorf("reading %d lat = %q, want %q", i, got, w)
		}
	}
}

func TestPayload_EnvelopeHistoricalFallback(t *testing.T) {
	var p Payload
	body := `{"balloons":[[1,2,3]],"historical_balloons":[{"id":7,"hours_ago":0}]}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hist := p.Historical()
	if len(hist) != 1 || hist[0].ID.String() != "7" {
		t.Fatalf("historical = %+v", hist)
	}
}

func TestPayload_MalformedSectionsDegrade(t *testing.T) {
	var p Payload
	body := `{"weather":"sunny","historical_balloons":"soon","balloons":[[1,2,3]]}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Weather == nil || p.Weather.CurrentConditions != nil {
		t.Errorf("weather = %+v, want opaque snapshot without conditions", p.Weather)
	}
	if len(p.HistoricalBalloons) != 0 {
		t.Errorf("historical = %d, want 0", len(p.HistoricalBalloons))
	}
	if p.Balloons.Len() != 1 {
		t.Errorf("readings = %d, want 1", p.Balloons.Len())
	}
}

func TestPayload_ErrorField(t *testing.T) {
	var p Payload
	if err := json.Unmarshal([]byte(`{"error":"rate limited"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !p.Error.Truthy() || p.Error.String() != "rate limited" {
		t.Errorf("error = %q truthy=%v", p.Error.String(), p.Error.Truthy())
	}
}

func TestBalloonList_MarshalShapes(t *testing.T) {
	plain := BalloonList{Readings: []BalloonReading{NewBalloonReading(1, 2, 3)}}
	b, err := json.Marshal(plain)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[[1,2,3]]` {
		t.Errorf("plain form = %s", b)
	}

	withHist := plain
	withHist.Historical = []HistoricalBalloonReading{{ID: NumberValue(1), HoursAgo: NumberValue(2)}}
	b, err = json.Marshal(withHist)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"historical_balloons"`) || !strings.HasPrefix(string(b), `{"readings":`) {
		t.Errorf("object form = %s", b)
	}

	var empty BalloonList
	b, _ = json.Marshal(empty)
	if string(b) != `[]` {
		t.Errorf("empty form = %s", b)
	}
}

func TestWeatherSnapshot_PassThrough(t *testing.T) {
	in := `{"currentConditions":{"temp":50},"days":[1,2]}`
	var w WeatherSnapshot
	if err := json.Unmarshal([]byte(in), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}
