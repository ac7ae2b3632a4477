// Package storage persists scraped events to PostgreSQL. Events are keyed by
// (source, ride_id); writing an existing key updates the row in place.
// Control judges and distances are stored as JSONB so the nested structures
// round-trip without extra tables.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/metrics"
)

// ErrNotFound is returned when no row matches the requested event.
var ErrNotFound = errors.New("event not found")

// Store wraps the events database. Safe for concurrent use.
type Store struct {
	db      *sql.DB
	log     *logger.Logger
	metrics *metrics.Manager
}

// Open connects to Postgres at dsn and verifies the connection. metrics may
// be nil when insert/update counting is not wanted.
func Open(ctx context.Context, dsn string, log *logger.Logger, m *metrics.Manager) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Store{db: db, log: log, metrics: m}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id                 SERIAL PRIMARY KEY,
	source             TEXT NOT NULL,
	ride_id            TEXT NOT NULL,
	name               TEXT NOT NULL,
	region             TEXT,
	date_start         DATE NOT NULL,
	date_end           DATE,
	location_name      TEXT,
	city               TEXT,
	state              TEXT,
	country            TEXT,
	ride_manager       TEXT,
	manager_phone      TEXT,
	manager_email      TEXT,
	website            TEXT,
	flyer_url          TEXT,
	is_canceled        BOOLEAN NOT NULL DEFAULT FALSE,
	is_multi_day_event BOOLEAN NOT NULL DEFAULT FALSE,
	is_pioneer_ride    BOOLEAN NOT NULL DEFAULT FALSE,
	ride_days          INTEGER NOT NULL DEFAULT 1,
	event_type         TEXT NOT NULL DEFAULT 'endurance',
	has_intro_ride     BOOLEAN NOT NULL DEFAULT FALSE,
	description        TEXT,
	directions         TEXT,
	control_judges     JSONB,
	distances          JSONB,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (source, ride_id)
);
CREATE INDEX IF NOT EXISTS idx_events_date_start ON events (date_start);
CREATE INDEX IF NOT EXISTS idx_events_region ON events (region);
`

// CreateTables creates the events schema if it does not exist.
func (s *Store) CreateTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// eventColumns is the scan/select order shared by every reader.
const eventColumns = `source, ride_id, name, region, date_start, date_end,
	location_name, city, state, country,
	ride_manager, manager_phone, manager_email, website, flyer_url,
	is_canceled, is_multi_day_event, is_pioneer_ride, ride_days,
	event_type, has_intro_ride, description, directions,
	control_judges, distances`

// UpsertEvent writes one event, inserting a new row or updating the existing
// (source, ride_id) row. It reports whether a new row was inserted and
// updates the database counters.
func (s *Store) UpsertEvent(ctx context.Context, ev *event.Event) (inserted bool, err error) {
	judges, distances, err := marshalNested(ev)
	if err != nil {
		return false, err
	}

	var id int
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM events WHERE source = $1 AND ride_id = $2`,
		ev.Source, ev.RideID).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO events (
				source, ride_id, name, region, date_start, date_end,
				location_name, city, state, country,
				ride_manager, manager_phone, manager_email, website, flyer_url,
				is_canceled, is_multi_day_event, is_pioneer_ride, ride_days,
				event_type, has_intro_ride, description, directions,
				control_judges, distances
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
				$21, $22, $23, $24, $25
			)`,
			ev.Source, ev.RideID, ev.Name, ev.Region, ev.DateStart, nullString(ev.DateEnd),
			ev.LocationName, ev.City, ev.State, ev.Country,
			ev.RideManager, ev.ManagerPhone, ev.ManagerEmail, ev.Website, ev.FlyerURL,
			ev.IsCanceled, ev.IsMultiDayEvent, ev.IsPioneerRide, ev.RideDays,
			ev.EventType, ev.HasIntroRide, ev.Description, ev.Directions,
			judges, distances)
		if err != nil {
			return false, fmt.Errorf("inserting event %s/%s: %w", ev.Source, ev.RideID, err)
		}
		if s.metrics != nil {
			s.metrics.Increment(metrics.DatabaseInserts)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("looking up event %s/%s: %w", ev.Source, ev.RideID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE events SET
			name = $3, region = $4, date_start = $5, date_end = $6,
			location_name = $7, city = $8, state = $9, country = $10,
			ride_manager = $11, manager_phone = $12, manager_email = $13,
			website = $14, flyer_url = $15,
			is_canceled = $16, is_multi_day_event = $17, is_pioneer_ride = $18,
			ride_days = $19, event_type = $20, has_intro_ride = $21,
			description = $22, directions = $23,
			control_judges = $24, distances = $25,
			updated_at = now()
		WHERE source = $1 AND ride_id = $2`,
		ev.Source, ev.RideID, ev.Name, ev.Region, ev.DateStart, nullString(ev.DateEnd),
		ev.LocationName, ev.City, ev.State, ev.Country,
		ev.RideManager, ev.ManagerPhone, ev.ManagerEmail, ev.Website, ev.FlyerURL,
		ev.IsCanceled, ev.IsMultiDayEvent, ev.IsPioneerRide, ev.RideDays,
		ev.EventType, ev.HasIntroRide, ev.Description, ev.Directions,
		judges, distances)
	if err != nil {
		return false, fmt.Errorf("updating event %s/%s: %w", ev.Source, ev.RideID, err)
	}
	if s.metrics != nil {
		s.metrics.Increment(metrics.DatabaseUpdates)
	}
	return false, nil
}

// GetEvent loads one event by its (source, ride_id) key. Returns ErrNotFound
// when no row matches.
func (s *Store) GetEvent(ctx context.Context, source, rideID string) (*event.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE source = $1 AND ride_id = $2`,
		source, rideID)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, source, rideID)
	}
	return ev, err
}

// GetEventsBySource loads every event for one source, ordered by start date.
func (s *Store) GetEventsBySource(ctx context.Context, source string) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE source = $1 ORDER BY date_start, ride_id`,
		source)
	if err != nil {
		return nil, fmt.Errorf("querying events for %s: %w", source, err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DeleteEvent removes one event. Returns ErrNotFound when nothing matched.
func (s *Store) DeleteEvent(ctx context.Context, source, rideID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM events WHERE source = $1 AND ride_id = $2`, source, rideID)
	if err != nil {
		return fmt.Errorf("deleting event %s/%s: %w", source, rideID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, source, rideID)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*event.Event, error) {
	var (
		ev         event.Event
		dateStart  time.Time
		dateEnd    sql.NullTime
		judgesJSON []byte
		distJSON   []byte
	)

	err := row.Scan(
		&ev.Source, &ev.RideID, &ev.Name, &ev.Region, &dateStart, &dateEnd,
		&ev.LocationName, &ev.City, &ev.State, &ev.Country,
		&ev.RideManager, &ev.ManagerPhone, &ev.ManagerEmail, &ev.Website, &ev.FlyerURL,
		&ev.IsCanceled, &ev.IsMultiDayEvent, &ev.IsPioneerRide, &ev.RideDays,
		&ev.EventType, &ev.HasIntroRide, &ev.Description, &ev.Directions,
		&judgesJSON, &distJSON)
	if err != nil {
		return nil, err
	}

	ev.DateStart = dateStart.Format(event.DateFormat)
	if dateEnd.Valid {
		ev.DateEnd = dateEnd.Time.Format(event.DateFormat)
	}

	if len(judgesJSON) > 0 {
		if err := json.Unmarshal(judgesJSON, &ev.ControlJudges); err != nil {
			return nil, fmt.Errorf("decoding control judges for %s/%s: %w", ev.Source, ev.RideID, err)
		}
	}
	if len(distJSON) > 0 {
		if err := json.Unmarshal(distJSON, &ev.Distances); err != nil {
			return nil, fmt.Errorf("decoding distances for %s/%s: %w", ev.Source, ev.RideID, err)
		}
	}

	return &ev, nil
}

func marshalNested(ev *event.Event) (judges, distances []byte, err error) {
	if judges, err = json.Marshal(ev.ControlJudges); err != nil {
		return nil, nil, fmt.Errorf("encoding control judges: %w", err)
	}
	if distances, err = json.Marshal(ev.Distances); err != nil {
		return nil, nil, fmt.Errorf("encoding distances: %w", err)
	}
	return judges, distances, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
