package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waymark-io/waymark/internal/model"
)

// CreateLocation inserts a location row and populates its ID. If
// ServerReceivedAt is zero it is set to the current time; callers that
// backdate rows (the seed tool) set it explicitly.
func (s *Store) CreateLocation(ctx context.Context, loc *model.Location) error {
	if loc.ServerReceivedAt.IsZero() {
		loc.ServerReceivedAt = time.Now().UTC()
	}

	const q = `INSERT INTO locations
		(latitude, longitude, altitude, accuracy, timestamp, device_id,
		 tracker_id, battery, connection, user_id, server_received_at, raw_data)
		VALUES
		(:latitude, :longitude, :altitude, :accuracy, :timestamp, :device_id,
		 :tracker_id, :battery, :connection, :user_id, :server_received_at, :raw_data)`

	if s.dialect == dialectPostgres {
		rows, err := sqlx.NamedQueryContext(ctx, s.db, q+" RETURNING id", loc)
		if err != nil {
			return fmt.Errorf("insert location: %w", err)
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&loc.ID); err != nil {
				return fmt.Errorf("scan location id: %w", err)
			}
		}
		return rows.Err()
	}

	result, err := s.db.NamedExecContext(ctx, q, loc)
	if err != nil {
		return fmt.Errorf("insert location: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get location id: %w", err)
	}
	loc.ID = id
	return nil
}

// ListLocations returns locations newest-first by server-received time.
// A limit <= 0 means unbounded; offset only applies when a limit is set.
func (s *Store) ListLocations(ctx context.Context, limit, offset int) ([]model.Location, error) {
	q := `SELECT * FROM locations ORDER BY server_received_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	var locs []model.Location
	if err := s.db.SelectContext(ctx, &locs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

// ListLocationsByDate returns the locations received within the calendar
// day of the given time, oldest-first. The range is inclusive on both ends:
// [00:00:00, 23:59:59].
func (s *Store) ListLocationsByDate(ctx context.Context, day time.Time) ([]model.Location, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Second)

	const q = `SELECT * FROM locations
		WHERE server_received_at >= ? AND server_received_at <= ?
		ORDER BY server_received_at ASC, id ASC`

	var locs []model.Location
	if err := s.db.SelectContext(ctx, &locs, s.db.Rebind(q), start, end); err != nil {
		return nil, fmt.Errorf("list locations by date: %w", err)
	}
	return locs, nil
}

// ListLocationsByDevice returns the full history for a device, newest-first.
func (s *Store) ListLocationsByDevice(ctx context.Context, deviceID string) ([]model.Location, error) {
	const q = `SELECT * FROM locations
		WHERE device_id = ?
		ORDER BY server_received_at DESC, id DESC`

	var locs []model.Location
	if err := s.db.SelectContext(ctx, &locs, s.db.Rebind(q), deviceID); err != nil {
		return nil, fmt.Errorf("list locations by device: %w", err)
	}
	return locs, nil
}

// CountLocations returns the total number of stored locations.
func (s *Store) CountLocations(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM locations"); err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return n, nil
}
