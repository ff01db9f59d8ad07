// Package sqlstore implements the canonical store on database/sql for
// SQLite, SQL Server and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/database"
	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/utils"
)

// Store is a store.Catalog over one SQL database.
type Store struct {
	db *sql.DB
	d  dialect
}

var _ store.Catalog = (*Store)(nil)

// Open connects to dsn with the named dialect (sqlite, sqlserver, postgres)
// and creates the schema if it is missing.
func Open(ctx context.Context, dialectName, dsn string) (*Store, error) {
	d, err := lookupDialect(dialectName)
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectSQL(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, d: d}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. The caller runs Migrate.
func New(db *sql.DB, dialectName string) (*Store, error) {
	d, err := lookupDialect(dialectName)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, d: d}, nil
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.d.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s schema: %w", s.d.name, err)
		}
	}
	logger.Debugf("Canonical %s schema ready", s.d.name)
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Users() store.UserRepository { return &userRepo{s} }

func (s *Store) Requests() store.RequestRepository { return &requestRepo{s} }

func (s *Store) Environments() store.EnvironmentRepository { return &environmentRepo{s} }

func (s *Store) ConfigEntries() store.ConfigEntryRepository { return &configEntryRepo{s} }

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) insert(ctx context.Context, q querier, table string, cols []string, args ...any) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, s.d.insert(table, cols), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return id, nil
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var raw any
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&raw); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return utils.ConvertToInt(raw)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.rebind(query), args...)
}

func selectList(cols []string) string { return strings.Join(cols, ", ") }

// nullTime keeps the driver value so both native timestamps and SQLite text
// decode through utils.ConvertDateTime.
type nullTime struct {
	raw any
}

func (n *nullTime) Scan(src any) error {
	n.raw = src
	return nil
}

func (n nullTime) required() (time.Time, error) {
	if n.raw == nil {
		return time.Time{}, nil
	}
	return utils.ConvertDateTime(n.raw)
}

func (n nullTime) optional() (*time.Time, error) {
	if n.raw == nil {
		return nil, nil
	}
	t, err := utils.ConvertDateTime(n.raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
