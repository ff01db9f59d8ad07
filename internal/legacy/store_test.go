package legacy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/legacysync/internal/legacy"
	"github.com/BartekS5/legacysync/internal/legacy/legacytest"
)

func openFixture(t *testing.T) *legacy.Store {
	t.Helper()
	path := legacytest.Create(t, filepath.Join(t.TempDir(), "colaboradores.db"),
		`CREATE TABLE tbl_colab (id INTEGER PRIMARY KEY, login TEXT NOT NULL, nome TEXT, salario REAL, ativo BOOLEAN)`,
		`CREATE TABLE log (msg TEXT)`,
		`INSERT INTO tbl_colab (id, login, nome, salario, ativo) VALUES (1, 'jsilva', 'João Silva', 1234.5, 1)`,
		`INSERT INTO tbl_colab (id, login, nome, salario, ativo) VALUES (2, 'msouza', NULL, NULL, 0)`,
	)
	s, err := legacy.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestListTablesExcludesCatalog(t *testing.T) {
	s := openFixture(t)

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tbl_colab", "log"}, tables)
}

func TestDescribeTable(t *testing.T) {
	s := openFixture(t)

	cols, err := s.DescribeTable(context.Background(), "tbl_colab")
	require.NoError(t, err)
	require.Len(t, cols, 5)

	name, ok := cols[1].Get("name")
	require.True(t, ok)
	assert.Equal(t, "login", name.Text())

	typ, _ := cols[1].Get("type")
	assert.Equal(t, "TEXT", typ.Text())
	notnull, _ := cols[1].Get("notnull")
	assert.Equal(t, "1", notnull.Text())
	pk, _ := cols[0].Get("pk")
	assert.Equal(t, "1", pk.Text())
}

func TestQueryKeepsNullCells(t *testing.T) {
	s := openFixture(t)

	rows, err := s.Query(context.Background(), `SELECT id, login, nome, salario FROM tbl_colab ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 4, rows[1].FieldCount())
	assert.Equal(t, []string{"id", "login", "nome", "salario"}, rows[1].Columns())

	nome, ok := rows[1].Get("nome")
	require.True(t, ok, "null cell must not be dropped")
	assert.True(t, nome.IsNull())

	id, _ := rows[0].Get("id")
	assert.Equal(t, legacy.KindInt, id.Kind())
	sal, _ := rows[0].Get("salario")
	assert.Equal(t, legacy.KindFloat, sal.Kind())
	assert.Equal(t, "1234.5", sal.Text())
	n, _ := rows[0].Get("nome")
	assert.Equal(t, "João Silva", n.Text())
}

func TestQuerySyntaxErrorPropagates(t *testing.T) {
	s := openFixture(t)

	_, err := s.Query(context.Background(), `SELEC nothing`)
	assert.Error(t, err)

	_, err = s.Query(context.Background(), `SELECT * FROM missing_table`)
	assert.Error(t, err)
}

func TestListTablesWithHashInDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "legacy#2025")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := legacytest.Create(t, filepath.Join(dir, "colaboradores.db"),
		`CREATE TABLE usuarios (login TEXT)`,
		`INSERT INTO usuarios VALUES ('jdoe')`,
	)

	s, err := legacy.Open(path)
	require.NoError(t, err)
	defer s.Close()

	tables, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"usuarios"}, tables)

	rows, err := s.Query(context.Background(), `SELECT * FROM usuarios`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := legacy.Open(filepath.Join(t.TempDir(), "dados2025.db"))
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"tbl"`, legacy.QuoteIdent("tbl"))
	assert.Equal(t, `"we""ird"`, legacy.QuoteIdent(`we"ird`))
}
