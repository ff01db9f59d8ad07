package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BartekS5/legacysync/internal/ini"
	"github.com/BartekS5/legacysync/internal/legacy"
	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/utils"
)

type ColumnInfo struct {
	CID        int64  `json:"cid" yaml:"cid"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	NotNull    bool   `json:"notNull" yaml:"notNull"`
	Default    string `json:"default,omitempty" yaml:"default,omitempty"`
	PrimaryKey bool   `json:"primaryKey" yaml:"primaryKey"`
}

type TableInfo struct {
	Name     string       `json:"name" yaml:"name"`
	Columns  []ColumnInfo `json:"columns" yaml:"columns"`
	RowCount int64        `json:"rowCount" yaml:"rowCount"`
	Error    string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// StoreAnalysis describes one legacy store file.
type StoreAnalysis struct {
	Name   string      `json:"name" yaml:"name"`
	Path   string      `json:"path" yaml:"path"`
	Tables []TableInfo `json:"tables" yaml:"tables"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
}

// Analysis is the diagnostic report over every known store present.
type Analysis struct {
	Directory string          `json:"directory" yaml:"directory"`
	Stores    []StoreAnalysis `json:"stores" yaml:"stores"`
}

// Analyzer lists tables, columns and row counts of the legacy stores.
type Analyzer struct {
	sources Sources
	open    Opener
}

func NewAnalyzer(sources Sources) *Analyzer {
	return &Analyzer{sources: sources, open: OpenLegacy}
}

func (a *Analyzer) WithOpener(open Opener) *Analyzer {
	a.open = open
	return a
}

// Analyze returns ini.ErrDataDirNotFound with an empty report when the data
// directory is missing. Stores that are absent are left out; per-store and
// per-table errors are recorded in the report.
func (a *Analyzer) Analyze(ctx context.Context) (*Analysis, error) {
	dir := a.sources.Dir()
	res := &Analysis{Directory: dir}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warnf("Legacy data directory not found: %s", dir)
		return res, fmt.Errorf("%w: %s", ini.ErrDataDirNotFound, dir)
	}

	for _, file := range []string{a.sources.UserStore, a.sources.RequestStore} {
		if file == "" {
			continue
		}
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err != nil {
			logger.Debugf("Legacy store %s not present", path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Stores = append(res.Stores, a.analyzeStore(ctx, path))
	}

	logger.Info("Legacy store analysis finished")
	return res, nil
}

func (a *Analyzer) analyzeStore(ctx context.Context, path string) StoreAnalysis {
	base := filepath.Base(path)
	sa := StoreAnalysis{Name: strings.TrimSuffix(base, filepath.Ext(base)), Path: path}

	src, err := a.open(path)
	if err != nil {
		sa.Error = err.Error()
		return sa
	}
	defer src.Close()

	tables, err := src.ListTables(ctx)
	if err != nil {
		sa.Error = err.Error()
		return sa
	}

	for _, t := range tables {
		ti := TableInfo{Name: t}
		cols, err := src.DescribeTable(ctx, t)
		if err != nil {
			ti.Error = err.Error()
			sa.Tables = append(sa.Tables, ti)
			continue
		}
		for _, c := range cols {
			ti.Columns = append(ti.Columns, columnInfo(c))
		}

		n, err := countRows(ctx, src, t)
		if err != nil {
			ti.Error = err.Error()
		}
		ti.RowCount = n
		logger.Debugf("%s.%s: %d columns, %d rows", sa.Name, t, len(ti.Columns), n)
		sa.Tables = append(sa.Tables, ti)
	}
	return sa
}

func columnInfo(r legacy.Row) ColumnInfo {
	ci := ColumnInfo{}
	if v, ok := r.GetFold("cid"); ok {
		ci.CID, _ = utils.ConvertToInt(v.Interface())
	}
	if v, ok := r.GetFold("name"); ok {
		ci.Name = v.Text()
	}
	if v, ok := r.GetFold("type"); ok {
		ci.Type = v.Text()
	}
	if v, ok := r.GetFold("notnull"); ok {
		n, _ := utils.ConvertToInt(v.Interface())
		ci.NotNull = n != 0
	}
	if v, ok := r.GetFold("dflt_value"); ok {
		ci.Default = v.Text()
	}
	if v, ok := r.GetFold("pk"); ok {
		n, _ := utils.ConvertToInt(v.Interface())
		ci.PrimaryKey = n != 0
	}
	return ci
}

func countRows(ctx context.Context, src RowSource, table string) (int64, error) {
	rows, err := src.Query(ctx, "SELECT COUNT(*) as total FROM "+legacy.QuoteIdent(table))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	v, ok := rows[0].Get("total")
	if !ok {
		return 0, nil
	}
	return utils.ConvertToInt(v.Interface())
}
