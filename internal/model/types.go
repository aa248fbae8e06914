package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Payload is the response envelope served by the telemetry endpoint.
// Every key is optional.
type Payload struct {
	Error              Value                      `json:"error"`
	Weather            *WeatherSnapshot           `json:"weather,omitempty"`
	Balloons           BalloonList                `json:"balloons"`
	HistoricalBalloons []HistoricalBalloonReading `json:"historical_balloons,omitempty"`
}

// UnmarshalJSON decodes the envelope key by key so that a malformed optional
// section degrades to "absent" instead of failing the whole payload.
func (p *Payload) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*p = Payload{}
	if raw, ok := fields["error"]; ok {
		_ = p.Error.UnmarshalJSON(raw)
	}
	if raw, ok := fields["weather"]; ok && !bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		p.Weather = &WeatherSnapshot{}
		_ = p.Weather.UnmarshalJSON(raw)
	}
	if raw, ok := fields["balloons"]; ok {
		_ = p.Balloons.UnmarshalJSON(raw)
	}
	if raw, ok := fields["historical_balloons"]; ok {
		var hist []HistoricalBalloonReading
		if err := json.Unmarshal(raw, &hist); err == nil {
			p.HistoricalBalloons = hist
		}
	}
	return nil
}

// Historical returns the historical readings attached to the balloon list,
// falling back to the envelope-level collection.
func (p *Payload) Historical() []HistoricalBalloonReading {
	if p == nil {
		return nil
	}
	if len(p.Balloons.Historical) > 0 {
		return p.Balloons.Historical
	}
	return p.HistoricalBalloons
}

// CurrentConditions is the "currentConditions" block of a weather snapshot.
type CurrentConditions struct {
	Temp       Value `json:"temp"`
	Conditions Value `json:"conditions"`
	Humidity   Value `json:"humidity"`
}

// WeatherSnapshot is an opaque weather object. Only currentConditions is
// interpreted; the full object is kept so it can be served back unchanged.
type WeatherSnapshot struct {
	CurrentConditions *CurrentConditions
	raw               json.RawMessage
}

func (w *WeatherSnapshot) UnmarshalJSON(b []byte) error {
	var probe struct {
		CurrentConditions *CurrentConditions `json:"currentConditions"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		// Not an object; keep it opaque with no conditions.
		probe.CurrentConditions = nil
	}
	w.CurrentConditions = probe.CurrentConditions
	w.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (w WeatherSnapshot) MarshalJSON() ([]byte, error) {
	if len(w.raw) > 0 {
		return w.raw, nil
	}
	if w.CurrentConditions == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(struct {
		CurrentConditions *CurrentConditions `json:"currentConditions"`
	}{w.CurrentConditions})
}

// BalloonReading is one position-indexed (lat, lon, alt) tuple. It has no
// identity beyond its index in the list.
type BalloonReading struct {
	Lat Value
	Lon Value
	Alt Value
}

// NewBalloonReading builds a reading from numeric coordinates.
func NewBalloonReading(lat, lon, alt float64) BalloonReading {
	return BalloonReading{Lat: NumberValue(lat), Lon: NumberValue(lon), Alt: NumberValue(alt)}
}

// UnmarshalJSON decodes a [lat, lon, alt] array. Short arrays leave the
// trailing positions absent; anything that is not an array decodes as a
// reading with every position absent.
func (r *BalloonReading) UnmarshalJSON(b []byte) error {
	*r = BalloonReading{}
	var parts []Value
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil
	}
	fields := []*Value{&r.Lat, &r.Lon, &r.Alt}
	for i := 0; i < len(parts) && i < len(fields); i++ {
		*fields[i] = parts[i]
	}
	return nil
}

func (r BalloonReading) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Value{r.Lat, r.Lon, r.Alt})
}

// HistoricalBalloonReading is a past balloon position with its age.
type HistoricalBalloonReading struct {
	ID       Value `json:"id"`
	Lat      Value `json:"lat"`
	Lon      Value `json:"lon"`
	Alt      Value `json:"alt"`
	HoursAgo Value `json:"hours_ago"`
}

// BalloonList is the "balloons" field. On the wire it is either a plain array
// of reading tuples or an object carrying the readings (under "readings" or
// numeric keys) plus a "historical_balloons" array.
type BalloonList struct {
	Readings   []BalloonReading
	Historical []HistoricalBalloonReading
}

// Len returns the number of primary readings.
func (l BalloonList) Len() int {
	return len(l.Readings)
}

func (l *BalloonList) UnmarshalJSON(b []byte) error {
	*l = BalloonList{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '[':
		var readings []BalloonReading
		if err := json.Unmarshal(b, &readings); err != nil {
			return nil
		}
		l.Readings = readings
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil
		}
		l.decodeObject(fields)
	}
	return nil
}

func (l *BalloonList) decodeObject(fields map[string]json.RawMessage) {
	if raw, ok := fields["historical_balloons"]; ok {
		var hist []HistoricalBalloonReading
		if err := json.Unmarshal(raw, &hist); err == nil {
			l.Historical = hist
		}
	}

	if raw, ok := fields["readings"]; ok {
		var readings []BalloonReading
		if err := json.Unmarshal(raw, &readings); err == nil {
			l.Readings = readings
			return
		}
	}

	type indexed struct {
		idx int
		raw json.RawMessage
	}
	var keyed []indexed
	for k, raw := range fields {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			continue
		}
		keyed = append(keyed, indexed{idx: idx, raw: raw})
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].idx < keyed[j].idx })
	for _, k := range keyed {
		var r BalloonReading
		_ = json.Unmarshal(k.raw, &r)
		l.Readings = append(l.Readings, r)
	}
}

// MarshalJSON emits the plain array form when there is no historical data and
// the object form otherwise.
func (l BalloonList) MarshalJSON() ([]byte, error) {
	readings := l.Readings
	if readings == nil {
		readings = []BalloonReading{}
	}
	if len(l.Historical) == 0 {
		return json.Marshal(readings)
	}
	return json.Marshal(struct {
		Readings   []BalloonReading           `json:"readings"`
		Historical []HistoricalBalloonReading `json:"historical_balloons"`
	}{readings, l.Historical})
}
