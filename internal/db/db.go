// Package db persists pass events and count snapshots to sqlite.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gridtherm/passage.report/internal/thermal"
)

// DB wraps the sqlite handle with passage-specific helpers.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path. Schema creation is
// handled by MigrateUp, which main runs at startup.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// Single writer with a retry window keeps the pipeline loop and API
	// readers from tripping over sqlite's locking.
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return &DB{sqlDB}, nil
}

// RecordPass stores one retired track. DB satisfies thermal.PassSink so it
// can be handed straight to the pipeline.
func (db *DB) RecordPass(ev thermal.PassEvent) error {
	_, err := db.Exec(`
		INSERT INTO pass_events
			(track_id, direction, travel_rows, travel_cols, area,
			 avg_temperature, frames_observed, first_seen_unix_nanos, last_seen_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.TrackID, string(ev.Direction), ev.TravelRows, ev.TravelCols, ev.Area,
		ev.AvgTemperature, ev.FramesObserved, ev.FirstSeen.UnixNano(), ev.LastSeen.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert pass event: %w", err)
	}
	return nil
}

// RecordCountSnapshot stores a periodic counter snapshot.
func (db *DB) RecordCountSnapshot(counts thermal.PassCounts, net int64, at time.Time) error {
	_, err := db.Exec(`
		INSERT INTO count_snapshots (left_count, right_count, net_count, taken_unix_nanos)
		VALUES (?, ?, ?, ?)`,
		counts.Left, counts.Right, net, at.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert count snapshot: %w", err)
	}
	return nil
}

// PassEventRow is a persisted pass event.
type PassEventRow struct {
	ID             int64     `json:"id"`
	TrackID        string    `json:"track_id"`
	Direction      string    `json:"direction"`
	TravelRows     float64   `json:"travel_rows"`
	TravelCols     float64   `json:"travel_cols"`
	Area           int       `json:"area"`
	AvgTemperature float64   `json:"avg_temperature"`
	FramesObserved int       `json:"frames_observed"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
}

// RecentPassEvents returns up to limit events, newest first.
func (db *DB) RecentPassEvents(limit int) ([]PassEventRow, error) {
	rows, err := db.Query(`
		SELECT id, track_id, direction, travel_rows, travel_cols, area,
		       avg_temperature, frames_observed, first_seen_unix_nanos, last_seen_unix_nanos
		FROM pass_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pass events: %w", err)
	}
	defer rows.Close()

	var events []PassEventRow
	for rows.Next() {
		var ev PassEventRow
		var firstNanos, lastNanos int64
		if err := rows.Scan(&ev.ID, &ev.TrackID, &ev.Direction, &ev.TravelRows, &ev.TravelCols,
			&ev.Area, &ev.AvgTemperature, &ev.FramesObserved, &firstNanos, &lastNanos); err != nil {
			return nil, fmt.Errorf("failed to scan pass event: %w", err)
		}
		ev.FirstSeen = time.Unix(0, firstNanos)
		ev.LastSeen = time.Unix(0, lastNanos)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountSnapshotRow is a persisted counter snapshot.
type CountSnapshotRow struct {
	Left  int64     `json:"left"`
	Right int64     `json:"right"`
	Net   int64     `json:"net"`
	Taken time.Time `json:"taken"`
}

// CountSnapshotsSince returns snapshots taken at or after since, oldest
// first, for charting.
func (db *DB) CountSnapshotsSince(since time.Time) ([]CountSnapshotRow, error) {
	rows, err := db.Query(`
		SELECT left_count, right_count, net_count, taken_unix_nanos
		FROM count_snapshots WHERE taken_unix_nanos >= ? ORDER BY taken_unix_nanos`,
		since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query count snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []CountSnapshotRow
	for rows.Next() {
		var s CountSnapshotRow
		var nanos int64
		if err := rows.Scan(&s.Left, &s.Right, &s.Net, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan count snapshot: %w", err)
		}
		s.Taken = time.Unix(0, nanos)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// PassTotals returns the all-time directional totals from persisted events.
func (db *DB) PassTotals() (left, right int64, err error) {
	err = db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN direction = 'left' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN direction = 'right' THEN 1 ELSE 0 END), 0)
		FROM pass_events`).Scan(&left, &right)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pass totals: %w", err)
	}
	return left, right, nil
}
