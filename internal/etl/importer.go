package etl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BartekS5/legacysync/internal/legacy"
	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/models"
)

// ErrStoreNotFound is returned when a legacy store file is missing.
var ErrStoreNotFound = errors.New("legacy store not found")

// Sources locates the legacy store files.
type Sources struct {
	DataDir      string
	UserStore    string
	RequestStore string
}

// Dir returns the absolute data directory.
func (s Sources) Dir() string {
	abs, err := filepath.Abs(s.DataDir)
	if err != nil {
		return s.DataDir
	}
	return abs
}

func (s Sources) path(file string) string { return filepath.Join(s.Dir(), file) }

type RecordStatus string

const (
	RecordImported  RecordStatus = "imported"
	RecordDuplicate RecordStatus = "duplicate"
	RecordSkipped   RecordStatus = "skipped"
	RecordFailed    RecordStatus = "failed"
)

// RecordResult is the outcome of one legacy row. Index is the row position
// within its table.
type RecordResult struct {
	Index  int          `json:"index" yaml:"index"`
	Status RecordStatus `json:"status" yaml:"status"`
	Reason string       `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// TableSummary counts the outcomes of one table. Records lists every row
// that was not imported.
type TableSummary struct {
	Table      string         `json:"table" yaml:"table"`
	Rows       int            `json:"rows" yaml:"rows"`
	Imported   int            `json:"imported" yaml:"imported"`
	Duplicates int            `json:"duplicates" yaml:"duplicates"`
	Skipped    int            `json:"skipped" yaml:"skipped"`
	Failed     int            `json:"failed" yaml:"failed"`
	Records    []RecordResult `json:"records,omitempty" yaml:"records,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func (t *TableSummary) record(index int, status RecordStatus, reason string) {
	switch status {
	case RecordImported:
		t.Imported++
		return
	case RecordDuplicate:
		t.Duplicates++
	case RecordSkipped:
		t.Skipped++
	case RecordFailed:
		t.Failed++
	}
	t.Records = append(t.Records, RecordResult{Index: index, Status: status, Reason: reason})
}

// ImportResult summarizes the import of one legacy store.
type ImportResult struct {
	Source   string         `json:"source" yaml:"source"`
	Tables   []TableSummary `json:"tables,omitempty" yaml:"tables,omitempty"`
	Imported int            `json:"imported" yaml:"imported"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether at least one record was inserted.
func (r *ImportResult) OK() bool { return r != nil && r.Imported > 0 }

// MigrationResult is the user import followed by the request import.
type MigrationResult struct {
	Users    *ImportResult `json:"users" yaml:"users"`
	Requests *ImportResult `json:"requests" yaml:"requests"`
	Success  bool          `json:"success" yaml:"success"`
}

// Importer copies legacy users and requests into the canonical store.
// Everything runs sequentially; one write is outstanding at a time.
type Importer struct {
	sources Sources
	catalog store.Catalog
	mapper  *Mapper
	open    Opener
}

func NewImporter(sources Sources, catalog store.Catalog, mapper *Mapper) *Importer {
	return &Importer{sources: sources, catalog: catalog, mapper: mapper, open: OpenLegacy}
}

// WithOpener replaces how legacy files are opened.
func (i *Importer) WithOpener(open Opener) *Importer {
	i.open = open
	return i
}

// Migrate imports users, then requests. Success means either import
// inserted at least one record. A failing import is recorded in its result
// and does not stop the other.
func (i *Importer) Migrate(ctx context.Context) *MigrationResult {
	logger.Info("Starting legacy data migration")

	users, err := i.ImportUsers(ctx)
	if err != nil {
		logger.Warnf("User import failed: %v", err)
	}
	requests, err := i.ImportRequests(ctx)
	if err != nil {
		logger.Warnf("Request import failed: %v", err)
	}

	res := &MigrationResult{Users: users, Requests: requests, Success: users.OK() || requests.OK()}
	if res.Success {
		logger.Info("Legacy data migration finished successfully")
	} else {
		logger.Warn("Legacy data migration found nothing to import")
	}
	return res
}

// ImportUsers inserts every mappable user whose email is not already known.
func (i *Importer) ImportUsers(ctx context.Context) (*ImportResult, error) {
	return i.importStore(ctx, i.sources.UserStore, i.mapper.Aliases.UserTables, func(ctx context.Context, row legacy.Row) (RecordStatus, error) {
		u, err := i.mapper.MapUser(row)
		if err != nil {
			return skipOrFail(err), err
		}
		_, err = i.catalog.Users().FindByEmail(ctx, u.Email)
		if err == nil {
			return RecordDuplicate, fmt.Errorf("email %s already exists", u.Email)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return RecordFailed, err
		}
		if err := i.catalog.Users().Add(ctx, u); err != nil {
			return RecordFailed, err
		}
		return RecordImported, nil
	})
}

// ImportRequests inserts every mappable request. Requests have no natural
// key, so rows already imported by an earlier run are inserted again.
func (i *Importer) ImportRequests(ctx context.Context) (*ImportResult, error) {
	env, err := i.defaultEnvironment(ctx)
	if err != nil && !errors.Is(err, ErrNoEnvironment) {
		return &ImportResult{Source: i.sources.RequestStore, Error: err.Error()}, err
	}
	return i.importStore(ctx, i.sources.RequestStore, i.mapper.Aliases.RequestTables, func(ctx context.Context, row legacy.Row) (RecordStatus, error) {
		r, err := i.mapper.MapRequest(row, env)
		if err != nil {
			return skipOrFail(err), err
		}
		if err := i.catalog.Requests().Add(ctx, r); err != nil {
			return RecordFailed, err
		}
		return RecordImported, nil
	})
}

// defaultEnvironment prefers id 1, then the first environment listed.
func (i *Importer) defaultEnvironment(ctx context.Context) (*models.Environment, error) {
	envs := i.catalog.Environments()
	env, err := envs.GetByID(ctx, 1)
	if err == nil {
		return env, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up environment: %w", err)
	}
	all, err := envs.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrNoEnvironment
	}
	return &all[0], nil
}

func skipOrFail(err error) RecordStatus {
	if IsSkip(err) {
		return RecordSkipped
	}
	return RecordFailed
}

type rowHandler func(ctx context.Context, row legacy.Row) (RecordStatus, error)

func (i *Importer) importStore(ctx context.Context, file string, keywords []string, handle rowHandler) (*ImportResult, error) {
	result := &ImportResult{Source: file}
	path := i.sources.path(file)

	if _, err := os.Stat(path); err != nil {
		err = fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		result.Error = err.Error()
		return result, err
	}

	src, err := i.open(path)
	if err != nil {
		err = fmt.Errorf("failed to open legacy store '%s': %w", path, err)
		result.Error = err.Error()
		return result, err
	}
	defer src.Close()

	tables, err := src.ListTables(ctx)
	if err != nil {
		err = fmt.Errorf("failed to list tables of '%s': %w", file, err)
		result.Error = err.Error()
		return result, err
	}
	logger.Infof("Tables found in %s: %s", file, strings.Join(tables, ", "))

	for _, table := range SelectTables(tables, keywords) {
		if err := ctx.Err(); err != nil {
			result.Error = err.Error()
			return result, err
		}
		summary := i.importTable(ctx, src, table, handle)
		result.Imported += summary.Imported
		result.Tables = append(result.Tables, summary)
	}

	logger.Infof("Import of %s finished: %d records imported", file, result.Imported)
	return result, nil
}

func (i *Importer) importTable(ctx context.Context, src RowSource, table string, handle rowHandler) TableSummary {
	summary := TableSummary{Table: table}

	if cols, err := src.DescribeTable(ctx, table); err == nil {
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			if v, ok := c.GetFold("name"); ok {
				names = append(names, v.Text())
			}
		}
		logger.Debugf("Table %s columns: %s", table, strings.Join(names, ", "))
	}

	rows, err := src.Query(ctx, "SELECT * FROM "+legacy.QuoteIdent(table))
	if err != nil {
		logger.Warnf("Failed to read table %s: %v", table, err)
		summary.Error = err.Error()
		return summary
	}
	summary.Rows = len(rows)

	for idx, row := range rows {
		status, err := handle(ctx, row)
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		switch status {
		case RecordSkipped, RecordFailed:
			logger.Warnf("Row %d of %s not imported: %s", idx, table, reason)
			logger.Debugf("Row %d of %s: %v", idx, table, row.Map())
		case RecordDuplicate:
			logger.Debugf("Row %d of %s already imported: %s", idx, table, reason)
		}
		summary.record(idx, status, reason)
	}
	return summary
}
