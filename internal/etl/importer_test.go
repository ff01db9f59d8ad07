package etl_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BartekS5/legacysync/internal/etl"
	"github.com/BartekS5/legacysync/internal/legacy/legacytest"
	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/internal/store/sqlstore"
	"github.com/BartekS5/legacysync/internal/store/storetest"
	"github.com/BartekS5/legacysync/pkg/logger"
	"github.com/BartekS5/legacysync/pkg/models"
)

type fixture struct {
	sources etl.Sources
	catalog *sqlstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		sources: etl.Sources{DataDir: t.TempDir(), UserStore: "colaboradores.db", RequestStore: "dados2025.db"},
		catalog: storetest.NewSQLite(t),
	}
}

func (f *fixture) userStore(t *testing.T, stmts ...string) {
	legacytest.Create(t, filepath.Join(f.sources.DataDir, f.sources.UserStore), stmts...)
}

func (f *fixture) requestStore(t *testing.T, stmts ...string) {
	legacytest.Create(t, filepath.Join(f.sources.DataDir, f.sources.RequestStore), stmts...)
}

func (f *fixture) importer() *etl.Importer {
	return etl.NewImporter(f.sources, f.catalog, etl.NewMapper(models.DefaultFieldAliases(), "empresa.com.br"))
}

func TestImportUsers_FallsBackToFirstTable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.userStore(t,
		`CREATE TABLE tbl_colab (Login TEXT, Nome TEXT, Email TEXT, Setor TEXT)`,
		`CREATE TABLE log (msg TEXT)`,
		`INSERT INTO tbl_colab VALUES ('jsilva', 'João Silva', 'jsilva@empresa.com.br', 'TI')`,
		`INSERT INTO tbl_colab VALUES ('msouza', 'Maria Souza', NULL, NULL)`,
		`INSERT INTO log VALUES ('ignored')`,
	)

	res, err := f.importer().ImportUsers(ctx)
	require.NoError(t, err)
	require.Len(t, res.Tables, 1)
	assert.Equal(t, "tbl_colab", res.Tables[0].Table)
	assert.Equal(t, 2, res.Imported)
	assert.True(t, res.OK())

	u, err := f.catalog.Users().FindByEmail(ctx, "msouza@empresa.com.br")
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", u.Name)
	assert.Equal(t, "Não informado", u.Area)
	assert.Equal(t, models.ActorMigration, u.CreatedBy)
}

func TestImportUsers_RerunSkipsExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.userStore(t,
		`CREATE TABLE usuarios (login TEXT, nome TEXT, email TEXT)`,
		`INSERT INTO usuarios VALUES ('a', 'Ana', 'ANA@corp.com')`,
		`INSERT INTO usuarios VALUES ('b', 'Bruno', 'bruno@corp.com')`,
	)
	imp := f.importer()

	first, err := imp.ImportUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Imported)

	second, err := imp.ImportUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Tables[0].Duplicates)
	assert.False(t, second.OK())

	n, err := f.catalog.Users().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestImportUsers_RecordFailuresDoNotStopTable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Replace(zap.New(core))()

	ctx := context.Background()
	f := newFixture(t)
	f.userStore(t,
		`CREATE TABLE pessoas (login TEXT, nome TEXT)`,
		`INSERT INTO pessoas VALUES ('', 'Sem Login')`,
		`INSERT INTO pessoas VALUES ('c', NULL)`,
		`INSERT INTO pessoas VALUES ('d', 'Diego')`,
	)

	res, err := f.importer().ImportUsers(ctx)
	require.NoError(t, err)
	summary := res.Tables[0]
	assert.Equal(t, 3, summary.Rows)
	// A null name falls back to the login.
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Records, 1)
	assert.Equal(t, 0, summary.Records[0].Index)
	assert.Equal(t, etl.RecordSkipped, summary.Records[0].Status)
	assert.Equal(t, etl.ErrMissingLogin.Error(), summary.Records[0].Reason)

	assert.Equal(t, 1, logs.FilterMessageSnippet("not imported").Len())
}

func TestImportUsers_DuplicateLoginFailsRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, store.SeedDefaults(ctx, f.catalog, "empresa.com.br"))
	f.userStore(t,
		`CREATE TABLE usuarios (login TEXT, nome TEXT, email TEXT)`,
		`INSERT INTO usuarios VALUES ('jdoe', 'John', 'a@x.com')`,
		`INSERT INTO usuarios VALUES ('jdoe', 'John Two', 'b@x.com')`,
		`INSERT INTO usuarios VALUES ('admin', 'Legacy Admin', 'root@x.com')`,
	)

	res, err := f.importer().ImportUsers(ctx)
	require.NoError(t, err)
	summary := res.Tables[0]
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Records, 2)
	assert.Equal(t, 1, summary.Records[0].Index)
	assert.Equal(t, etl.RecordFailed, summary.Records[0].Status)
	assert.Equal(t, 2, summary.Records[1].Index)

	all, err := f.catalog.Users().GetAll(ctx)
	require.NoError(t, err)
	logins := map[string]int{}
	for _, u := range all {
		logins[u.Login]++
	}
	assert.Equal(t, 1, logins["jdoe"])
	assert.Equal(t, 1, logins["admin"])
}

func TestImportUsers_EmailDedupFoldsUnicode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.userStore(t,
		`CREATE TABLE usuarios (login TEXT, nome TEXT, email TEXT)`,
		`INSERT INTO usuarios VALUES ('joao1', 'João', 'JOÃO@x.com')`,
		`INSERT INTO usuarios VALUES ('joao2', 'João Dois', 'joão@x.com')`,
	)

	res, err := f.importer().ImportUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Tables[0].Duplicates)
}

func TestImportUsers_MissingStore(t *testing.T) {
	f := newFixture(t)

	res, err := f.importer().ImportUsers(context.Background())
	assert.ErrorIs(t, err, etl.ErrStoreNotFound)
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Error)
}

func TestImportRequests_NoDedupAcrossRuns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, store.SeedDefaults(ctx, f.catalog, "empresa.com.br"))
	f.requestStore(t,
		`CREATE TABLE solicitacoes (titulo TEXT, descricao TEXT, solicitante TEXT, area TEXT)`,
		`INSERT INTO solicitacoes VALUES ('Nova tabela', 'Criar PCT', 'jsilva', 'TI')`,
		`INSERT INTO solicitacoes VALUES (NULL, NULL, 'msouza', NULL)`,
	)
	imp := f.importer()

	for run := 0; run < 2; run++ {
		res, err := imp.ImportRequests(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, 1, res.Tables[0].Skipped)
	}

	all, err := f.catalog.Requests().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].Number, all[1].Number)
	assert.Equal(t, "Criar PCT", all[0].Description)
	assert.EqualValues(t, 1, all[0].EnvironmentID)
}

func TestImportRequests_WithoutEnvironment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.requestStore(t,
		`CREATE TABLE tickets (title TEXT, user TEXT)`,
		`INSERT INTO tickets VALUES ('Ajuste', 'ana')`,
	)

	res, err := f.importer().ImportRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	require.Len(t, res.Tables[0].Records, 1)
	assert.Equal(t, etl.ErrNoEnvironment.Error(), res.Tables[0].Records[0].Reason)
}

func TestMigrate_SuccessWhenEitherImports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.userStore(t,
		`CREATE TABLE colaboradores (login TEXT, nome TEXT)`,
		`INSERT INTO colaboradores VALUES ('x', 'Xavier')`,
	)

	res := f.importer().Migrate(ctx)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Users.Imported)
	assert.Contains(t, res.Requests.Error, "legacy store not found")
}

func TestMigrate_NothingToImport(t *testing.T) {
	res := newFixture(t).importer().Migrate(context.Background())
	assert.False(t, res.Success)
}
