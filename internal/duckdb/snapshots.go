package duckdb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

var _ model.SnapshotStore = (*Store)(nil)

// InsertSnapshot stores one poll result and its readings atomically and
// returns the new snapshot ID. Non-numeric reading positions are stored as
// NULL.
func (s *Store) InsertSnapshot(snap *model.Snapshot) (int64, error) {
	if snap == nil {
		return 0, errors.New("nil snapshot")
	}

	var weather sql.NullString
	if snap.Weather != nil {
		b, err := json.Marshal(snap.Weather)
		if err != nil {
			return 0, fmt.Errorf("encoding weather: %w", err)
		}
		weather = sql.NullString{String: string(b), Valid: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO snapshots (fetched_at, weather, balloon_count) VALUES (?, ?, ?) RETURNING id`,
		snap.FetchedAt.UTC(), weather, len(snap.Readings),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}

	if len(snap.Readings) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO balloon_readings (snapshot_id, idx, lat, lon, alt) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()

		for i, r := range snap.Readings {
			if _, err := stmt.ExecContext(ctx, id, i,
				nullFloat(r.Lat), nullFloat(r.Lon), nullFloat(r.Alt)); err != nil {
				return 0, fmt.Errorf("inserting reading %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	snap.ID = id
	return id, nil
}

// LatestSnapshot returns the most recent snapshot, or nil when none exist.
func (s *Store) LatestSnapshot() (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var (
		snap    model.Snapshot
		weather sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at, weather FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.FetchedAt, &weather)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}

	if weather.Valid {
		snap.Weather = &model.WeatherSnapshot{}
		if err := json.Unmarshal([]byte(weather.String), snap.Weather); err != nil {
			return nil, fmt.Errorf("decoding stored weather: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT lat, lon, alt FROM balloon_readings WHERE snapshot_id = ? ORDER BY idx`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("reading balloon readings: %w", err)
	}
	defer rows.Close()

	snap.Readings = []model.BalloonReading{}
	for rows.Next() {
		var lat, lon, alt sql.NullFloat64
		if err := rows.Scan(&lat, &lon, &alt); err != nil {
			return nil, err
		}
		snap.Readings = append(snap.Readings, model.BalloonReading{
			Lat: valueOf(lat), Lon: valueOf(lon), Alt: valueOf(alt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SnapshotCount returns the number of stored snapshots.
func (s *Store) SnapshotCount() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// HistoricalReadings returns readings from snapshots older than the latest
// one and fetched within window of now, newest first. ID is the reading's
// 1-based position within its snapshot and HoursAgo is the snapshot age
// rounded to a tenth of an hour.
func (s *Store) HistoricalReadings(now time.Time, window time.Duration, limit int) ([]model.HistoricalBalloonReading, error) {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.idx, r.lat, r.lon, r.alt, s.fetched_at
		FROM balloon_readings r
		JOIN snapshots s ON s.id = r.snapshot_id
		WHERE s.fetched_at >= ?
		  AND s.id < (SELECT MAX(id) FROM snapshots)
		ORDER BY s.id DESC, r.idx
		LIMIT ?`,
		now.Add(-window).UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("querying historical readings: %w", err)
	}
	defer rows.Close()

	hist := []model.HistoricalBalloonReading{}
	for rows.Next() {
		var (
			idx           int
			lat, lon, alt sql.NullFloat64
			fetchedAt     time.Time
		)
		if err := rows.Scan(&idx, &lat, &lon, &alt, &fetchedAt); err != nil {
			return nil, err
		}
		hist = append(hist, model.HistoricalBalloonReading{
			ID:       model.NumberValue(float64(idx + 1)),
			Lat:      valueOf(lat),
			Lon:      valueOf(lon),
			Alt:      valueOf(alt),
			HoursAgo: model.NumberValue(hoursAgo(now, fetchedAt)),
		})
	}
	return hist, rows.Err()
}

// DeleteBefore removes snapshots fetched before cutoff together with their
// readings, returning the number of snapshots deleted.
func (s *Store) DeleteBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cutoff = cutoff.UTC()
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM balloon_readings
		WHERE snapshot_id IN (SELECT id FROM snapshots WHERE fetched_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("deleting expired readings: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func nullFloat(v model.Value) sql.NullFloat64 {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func valueOf(f sql.NullFloat64) model.Value {
	if !f.Valid {
		return model.Null()
	}
	return model.NumberValue(f.Float64)
}

// hoursAgo rounds the age of a reading to 0.1h. Historical readings are never
// the newest, so the result is floored at 0.1: a zero would render as missing.
func hoursAgo(now, fetchedAt time.Time) float64 {
	hours := math.Round(now.Sub(fetchedAt).Hours()*10) / 10
	if hours < 0.1 {
		return 0.1
	}
	return hours
}
