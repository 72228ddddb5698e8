// Package sqlstore implements the persistence gateways on database/sql.
//
// SQLite (modernc.org/sqlite) is the default backend; Postgres is reached
// through lib/pq. Both share one schema and one set of queries written with
// "?" placeholders, which are rebound to "$n" for Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
	// Registers the pure-Go "sqlite" driver, no CGO needed in Alpine images.
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the connection pool shared by the three repositories.
type Store struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
	newID    func() uuid.UUID
}

type Option func(*Store)

// WithClock replaces the clock used to stamp CreatedAt on first save.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the generator used for new identifiers.
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *Store) { s.newID = newID }
}

// Open connects to the database and applies the schema.
//
// For SQLite dsn is a file path; WAL, foreign keys and a busy timeout are
// switched on through the driver's pragma parameters. For Postgres dsn is a
// lib/pq connection string.
//
//	store, err := sqlstore.Open("sqlite", "./data/payment.db")
func Open(driver, dsn string, opts ...Option) (*Store, error) {
	s := &Store{now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	switch driver {
	case DriverSQLite:
		s.db, err = sql.Open(DriverSQLite, fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", dsn))
		if err == nil {
			// One writer connection. Every query inside a transaction must go
			// through the *sql.Tx or it waits on itself.
			s.db.SetMaxOpenConns(1)
		}
	case DriverPostgres:
		s.postgres = true
		s.db, err = sql.Open(DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}

	if err := s.applySchema(); err != nil {
		_ = s.db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{s: s} }
func (s *Store) Orders() *OrderRepository       { return &OrderRepository{s: s} }
func (s *Store) Products() *ProductRepository   { return &ProductRepository{s: s} }

func (s *Store) applySchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlstore: apply schema: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rebind rewrites "?" placeholders into "$1", "$2", ... for Postgres.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inTx runs fn in a transaction and commits when it returns nil.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fail(op, err)
	}
	return nil
}

// stamp returns the identifier and creation time to store, generating them
// only when the entity does not carry them yet.
func (s *Store) stamp(id uuid.UUID, createdAt time.Time) (uuid.UUID, time.Time) {
	if id == uuid.Nil {
		id = s.newID()
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	return id, normalizeTime(createdAt)
}

type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows with scan and always closes them.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// inClause returns "?, ?, ?" and the matching argument list.
func inClause(ids []uuid.UUID) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}
