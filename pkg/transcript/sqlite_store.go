package transcript

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"

	"github.com/pulselog/pulselog/pkg/telemetry"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists transcript events for the history command.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// StoreConfig holds SQLite store configuration.
type StoreConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore(cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Append persists one event.
func (s *SQLiteStore) Append(ctx context.Context, event telemetry.Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	query := `
		INSERT INTO events (id, ts, type, source, message, level, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp.UnixNano(),
		event.Type,
		event.Source,
		event.Message,
		event.Level.String(),
		string(attrs),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ListOptions narrows a List query.
type ListOptions struct {
	// Limit caps the number of returned events; zero means no cap.
	Limit int

	// MinLevel drops events below this severity when set.
	MinLevel *telemetry.Level

	// Type restricts to one event type when non-empty.
	Type string
}

// List returns the most recent events matching opts, oldest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]telemetry.Event, error) {
	query := `
		SELECT id, ts, type, source, message, level, attributes
		FROM events
	`
	var where []string
	args := []interface{}{}
	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, opts.Type)
	}
	if opts.MinLevel != nil {
		// Levels are stored by name; expand the threshold into the set of
		// matching names so LIMIT applies after the filter.
		var placeholders []string
		for _, level := range telemetry.Levels {
			if level >= *opts.MinLevel {
				placeholders = append(placeholders, "?")
				args = append(args, level.String())
			}
		}
		where = append(where, fmt.Sprintf("level IN (%s)", strings.Join(placeholders, ", ")))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ts DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []telemetry.Event
	for rows.Next() {
		var (
			event     telemetry.Event
			ts        int64
			levelName string
			attrs     string
		)
		if err := rows.Scan(&event.ID, &ts, &event.Type, &event.Source, &event.Message, &levelName, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Timestamp = time.Unix(0, ts)
		if level, err := telemetry.ParseLevel(levelName); err == nil {
			event.Level = level
		}
		if attrs != "" && attrs != "null" {
			if err := json.Unmarshal([]byte(attrs), &event.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode attributes: %w", err)
			}
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	// Rows arrive newest first; flip to chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out, nil
}

// Count returns the number of persisted events.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// Prune deletes events older than the cutoff and reports how many went.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE ts < ?", before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return result.RowsAffected()
}

// Attach subscribes the store to an event publisher. Persistence failures
// are reported through errs when non-nil; the stream itself never stalls.
func (s *SQLiteStore) Attach(events *telemetry.EventPublisher, errs func(error)) {
	events.Subscribe(func(event telemetry.Event) {
		if err := s.Append(context.Background(), event); err != nil && errs != nil {
			errs(err)
		}
	}, nil)
}
