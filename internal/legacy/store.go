// Package legacy reads schema-less legacy SQLite files as ordered rows of
// tagged scalar values.
package legacy

import (
	"context"
	"database/sql"
	"strings"

	"github.com/BartekS5/legacysync/pkg/database"
)

const listTablesQuery = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`

// Store is a read-only handle on one legacy file. Open it for a single
// analysis or import call and Close it before returning.
type Store struct {
	db *sql.DB
}

// Open opens the legacy file at path read-only.
func Open(path string) (*Store, error) {
	db, err := database.OpenLegacySQLite(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ListTables returns user tables in catalog order, skipping sqlite_* tables.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.Query(ctx, listTablesQuery)
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Get("name"); ok && v.Text() != "" {
			tables = append(tables, v.Text())
		}
	}
	return tables, nil
}

// DescribeTable returns one row per column with cid, name, type, notnull,
// dflt_value and pk.
func (s *Store) DescribeTable(ctx context.Context, table string) ([]Row, error) {
	return s.Query(ctx, "PRAGMA table_info("+QuoteIdent(table)+")")
}

// Query runs a read statement and materializes every row. NULL cells are
// kept as Null values.
func (s *Store) Query(ctx context.Context, query string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []Row
	for rows.Next() {
		columns := make([]interface{}, len(cols))
		columnPointers := make([]interface{}, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}
		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		var r Row
		for i, colName := range cols {
			r.add(colName, FromDriver(columns[i]))
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// QuoteIdent quotes a table or column name for SQLite.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
