package duckdb

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertSnapshot(t *testing.T, store *Store, at time.Time, readings ...model.BalloonReading) int64 {
	t.Helper()
	id, err := store.InsertSnapshot(&model.Snapshot{FetchedAt: at, Readings: readings})
	if err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
	return id
}

func TestNewStore_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relay.duckdb")
	store, err := NewStore(path, Config{QueryTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
	if store.QueryTimeout != time.Second {
		t.Errorf("QueryTimeout = %s, want 1s", store.QueryTimeout)
	}
}

func TestLatestSnapshot_Empty(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("LatestSnapshot = %+v, want nil", snap)
	}
}

func TestInsertSnapshot_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	var weather model.WeatherSnapshot
	if err := json.Unmarshal([]byte(`{"currentConditions":{"temp":61.5,"conditions":"Fog"},"resolvedAddress":"Palo Alto"}`), &weather); err != nil {
		t.Fatalf("unmarshal weather: %v", err)
	}

	at := time.Now().Add(-time.Minute).Truncate(time.Microsecond)
	snap := &model.Snapshot{
		FetchedAt: at,
		Weather:   &weather,
		Readings: []model.BalloonReading{
			model.NewBalloonReading(37.4, -122.1, 10000),
			{Lat: model.Null(), Lon: model.NumberValue(5), Alt: model.StringValue("high")},
		},
	}
	id, err := store.InsertSnapshot(snap)
	if err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}
	if id == 0 || snap.ID != id {
		t.Fatalf("id = %d, snap.ID = %d", id, snap.ID)
	}

	got, err := store.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if got == nil || got.ID != id {
		t.Fatalf("LatestSnapshot = %+v, want id %d", got, id)
	}
	if !got.FetchedAt.Equal(at) {
		t.Errorf("FetchedAt = %s, want %s", got.FetchedAt, at)
	}
	if got.Weather == nil || got.Weather.CurrentConditions == nil || got.Weather.CurrentConditions.Temp.String() != "61.5" {
		t.Fatalf("weather not round-tripped: %+v", got.Weather)
	}
	raw, _ := json.Marshal(got.Weather)
	var fields map[string]any
	_ = json.Unmarshal(raw, &fields)
	if fields["resolvedAddress"] != "Palo Alto" {
		t.Errorf("opaque weather fields lost: %s", raw)
	}

	if len(got.Readings) != 2 {
		t.Fatalf("readings = %d, want 2", len(got.Readings))
	}
	if got.Readings[0].Alt.String() != "10000" {
		t.Errorf("alt = %q", got.Readings[0].Alt.String())
	}
	second := got.Readings[1]
	if second.Lat.Present() || second.Alt.Present() || second.Lon.String() != "5" {
		t.Errorf("second reading = %+v", second)
	}
}

func TestSnapshotCount(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	insertSnapshot(t, store, now.Add(-2*time.Hour))
	insertSnapshot(t, store, now.Add(-time.Hour), model.NewBalloonReading(1, 1, 1))

	n, err := store.SnapshotCount()
	if err != nil {
		t.Fatalf("SnapshotCount: %v", err)
	}
	if n != 2 {
		t.Errorf("SnapshotCount = %d, want 2", n)
	}
}

func TestHistoricalReadings(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	insertSnapshot(t, store, now.Add(-30*time.Hour), model.NewBalloonReading(9, 9, 9))
	insertSnapshot(t, store, now.Add(-3*time.Hour),
		model.NewBalloonReading(1, 2, 3),
		model.NewBalloonReading(4, 5, 6))
	insertSnapshot(t, store, now.Add(-90*time.Minute), model.NewBalloonReading(7, 8, 0))
	insertSnapshot(t, store, now, model.NewBalloonReading(10, 11, 12))

	hist, err := store.HistoricalReadings(now, 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("HistoricalReadings: %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("got %d readings, want 3: %+v", len(hist), hist)
	}

	want := []struct{ id, lat, hours string }{
		{"1", "7", "1.5"},
		{"1", "1", "3"},
		{"2", "4", "3"},
	}
	for i, w := range want {
		h := hist[i]
		if h.ID.String() != w.id || h.Lat.String() != w.lat || h.HoursAgo.String() != w.hours {
			t.Errorf("reading %d = id %s lat %s hours %s, want %+v", i, h.ID, h.Lat, h.HoursAgo, w)
		}
	}

	limited, err := store.HistoricalReadings(now, 24*time.Hour, 1)
	if err != nil {
		t.Fatalf("HistoricalReadings: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored: got %d", len(limited))
	}
}

func TestHistoricalReadings_SingleSnapshot(t *testing.T) {
	store := newTestStore(t)
	insertSnapshot(t, store, time.Now(), model.NewBalloonReading(1, 2, 3))

	hist, err := store.HistoricalReadings(time.Now(), time.Hour, 10)
	if err != nil {
		t.Fatalf("HistoricalReadings: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("latest snapshot should not appear as history: %+v", hist)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	insertSnapshot(t, store, now.Add(-48*time.Hour), model.NewBalloonReading(1, 1, 1))
	insertSnapshot(t, store, now.Add(-47*time.Hour), model.NewBalloonReading(2, 2, 2))
	keep := insertSnapshot(t, store, now, model.NewBalloonReading(3, 3, 3))

	n, err := store.DeleteBefore(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d snapshots, want 2", n)
	}

	var orphans int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM balloon_readings WHERE snapshot_id <> ?`, keep).Scan(&orphans); err != nil {
		t.Fatalf("count readings: %v", err)
	}
	if orphans != 0 {
		t.Errorf("%d readings left behind for deleted snapshots", orphans)
	}
}

func TestHistoricalReadings_RecentSnapshotNotZero(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	insertSnapshot(t, store, now.Add(-90*time.Second), model.NewBalloonReading(1, 2, 3))
	insertSnapshot(t, store, now, model.NewBalloonReading(4, 5, 6))

	hist, err := store.HistoricalReadings(now, 24*time.Hour, 10)
	if err != nil {
		t.Fatalf("HistoricalReadings: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("got %d readings, want 1", len(hist))
	}
	if !hist[0].HoursAgo.Truthy() || hist[0].HoursAgo.String() != "0.1" {
		t.Errorf("hours ago = %s, want 0.1", hist[0].HoursAgo)
	}
}

func TestHoursAgo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want float64
	}{
		{0, 0.1},
		{2 * time.Minute, 0.1},
		{9 * time.Minute, 0.2},
		{90 * time.Minute, 1.5},
		{3 * time.Hour, 3},
	}
	for _, tt := range tests {
		if got := hoursAgo(now, now.Add(-tt.age)); got != tt.want {
			t.Errorf("hoursAgo(%s) = %v, want %v", tt.age, got, tt.want)
		}
	}
}
