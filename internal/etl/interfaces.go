package etl

import (
	"context"

	"github.com/BartekS5/legacysync/internal/legacy"
)

// RowSource is one opened legacy store. It is opened for a single analysis or
// import call and closed before that call returns.
type RowSource interface {
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]legacy.Row, error)
	Query(ctx context.Context, query string) ([]legacy.Row, error)
	Close() error
}

// Opener opens the legacy store file at path.
type Opener func(path string) (RowSource, error)

// OpenLegacy opens a legacy SQLite file read-only.
func OpenLegacy(path string) (RowSource, error) {
	s, err := legacy.Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
