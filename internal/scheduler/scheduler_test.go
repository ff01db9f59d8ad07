package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/legacysync/internal/etl"
	"github.com/BartekS5/legacysync/internal/ini"
	"github.com/BartekS5/legacysync/internal/legacy/legacytest"
	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/internal/store/storetest"
	"github.com/BartekS5/legacysync/pkg/models"
)

type fakeStages struct {
	calls      []string
	syncErr    error
	analyzeErr error
	validErr   error
	migration  *etl.MigrationResult
	onImport   func()
}

func (f *fakeStages) SyncDirectory(ctx context.Context, dir, pattern string) (*ini.SyncResult, error) {
	f.calls = append(f.calls, "sync:"+pattern)
	return &ini.SyncResult{Directory: dir}, f.syncErr
}

func (f *fakeStages) Analyze(ctx context.Context) (*etl.Analysis, error) {
	f.calls = append(f.calls, "analyze")
	return &etl.Analysis{}, f.analyzeErr
}

func (f *fakeStages) Migrate(ctx context.Context) *etl.MigrationResult {
	f.calls = append(f.calls, "import")
	if f.onImport != nil {
		f.onImport()
	}
	if f.migration != nil {
		return f.migration
	}
	return &etl.MigrationResult{}
}

func (f *fakeStages) Validate(ctx context.Context) (*etl.Validation, error) {
	f.calls = append(f.calls, "validate")
	if f.validErr != nil {
		return &etl.Validation{Error: f.validErr.Error()}, f.validErr
	}
	return &etl.Validation{OK: true}, nil
}

func newTestScheduler(f *fakeStages, enabled bool) *Scheduler {
	return New(Options{Enabled: enabled, DataDir: "DATA"}, f, f, f, f)
}

func TestRun_FullSequence(t *testing.T) {
	f := &fakeStages{migration: &etl.MigrationResult{Success: true}}

	rep, err := newTestScheduler(f, true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, rep.Final)
	assert.Equal(t, []State{Idle, Delaying, SyncingConfig, AnalyzingStores, Importing, Validating, Done}, rep.History)
	assert.Equal(t, []string{"sync:*.ini", "analyze", "import", "validate"}, f.calls)
	assert.True(t, rep.Migration.Success)
	assert.True(t, rep.Validation.OK)
}

func TestRun_DisabledIsNoop(t *testing.T) {
	f := &fakeStages{}

	rep, err := newTestScheduler(f, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, rep.Final)
	assert.Equal(t, []State{Idle, Delaying, Done}, rep.History)
	assert.Empty(t, f.calls)
}

func TestRun_ConfigAndAnalysisFailuresAreSoft(t *testing.T) {
	f := &fakeStages{
		syncErr:    errors.New("invalid pattern"),
		analyzeErr: errors.New("store locked"),
	}

	rep, err := newTestScheduler(f, true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, rep.Final)
	assert.Equal(t, []string{"sync:*.ini", "analyze", "import", "validate"}, f.calls)
}

func TestRun_MissingDataDirEndsDone(t *testing.T) {
	f := &fakeStages{
		syncErr:    fmt.Errorf("%w: /x/DATA", ini.ErrDataDirNotFound),
		analyzeErr: fmt.Errorf("%w: /x/DATA", ini.ErrDataDirNotFound),
	}

	rep, err := newTestScheduler(f, true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Done, rep.Final)
	assert.Equal(t, []State{Idle, Delaying, SyncingConfig, AnalyzingStores, Done}, rep.History)
	assert.Equal(t, []string{"sync:*.ini", "analyze"}, f.calls)
}

func TestRun_ValidationFailure(t *testing.T) {
	f := &fakeStages{validErr: errors.New("count failed")}

	rep, err := newTestScheduler(f, true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Failed, rep.Final)
	assert.Equal(t, Validating, rep.FailedStage)
	assert.Equal(t, "count failed", rep.Error)
	assert.NotNil(t, rep.Migration)
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	f := &fakeStages{}
	s := New(Options{Enabled: true, Delay: time.Hour}, f, f, f, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Failed, rep.Final)
	assert.Equal(t, Delaying, rep.FailedStage)
	assert.Equal(t, context.Canceled.Error(), rep.Error)
	assert.Empty(t, f.calls)
}

func TestRun_CancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeStages{onImport: cancel}

	rep, err := newTestScheduler(f, true).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Failed, rep.Final)
	assert.Equal(t, Importing, rep.FailedStage)
	assert.Equal(t, []string{"sync:*.ini", "analyze", "import"}, f.calls)
}

func TestRun_OnlyOnce(t *testing.T) {
	f := &fakeStages{}
	s := newTestScheduler(f, true)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyStarted)

	select {
	case rep, ok := <-s.Start(context.Background()):
		assert.False(t, ok)
		assert.Nil(t, rep)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not close its channel")
	}
	assert.Len(t, f.calls, 4)
}

func TestStart_DeliversReport(t *testing.T) {
	s := newTestScheduler(&fakeStages{}, false)

	select {
	case rep := <-s.Start(context.Background()):
		require.NotNil(t, rep)
		assert.Equal(t, Done, rep.Final)
	case <-time.After(5 * time.Second):
		t.Fatal("no report")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "a.ini"), []byte("[DB]\nHost=localhost\nPort=1433\n"), 0o644))
	legacytest.Create(t, filepath.Join(dataDir, "colaboradores.db"),
		`CREATE TABLE tbl_colab (login TEXT, nome TEXT)`,
		`INSERT INTO tbl_colab VALUES ('jsilva', 'João Silva')`,
	)
	legacytest.Create(t, filepath.Join(dataDir, "dados2025.db"),
		`CREATE TABLE pedidos (titulo TEXT, solicitante TEXT)`,
		`INSERT INTO pedidos VALUES ('Criar tabela', 'jsilva')`,
	)

	catalog := storetest.NewSQLite(t)
	require.NoError(t, store.SeedDefaults(ctx, catalog, "empresa.com.br"))
	sources := etl.Sources{DataDir: dataDir, UserStore: "colaboradores.db", RequestStore: "dados2025.db"}

	s := New(Options{Enabled: true, DataDir: dataDir},
		ini.NewService(catalog.ConfigEntries()),
		etl.NewAnalyzer(sources),
		etl.NewImporter(sources, catalog, etl.NewMapper(models.DefaultFieldAliases(), "empresa.com.br")),
		etl.NewValidator(catalog),
	)

	rep, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Done, rep.Final)
	assert.Equal(t, 1, rep.Config.Loaded)
	require.Len(t, rep.Analysis.Stores, 2)
	assert.True(t, rep.Migration.Success)
	assert.EqualValues(t, 2, rep.Validation.Users)
	assert.EqualValues(t, 1, rep.Validation.Requests)
	assert.EqualValues(t, 4, rep.Validation.Environments)
}
