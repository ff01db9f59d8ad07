package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonical.db")

	db, err := ConnectSQL(DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestOpenLegacySQLiteIsReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	rw, err := ConnectSQL(DriverSQLite, path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := OpenLegacySQLite(path)
	require.NoError(t, err)
	defer ro.Close()

	var n int
	require.NoError(t, ro.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 0, n)

	_, err = ro.Exec(`INSERT INTO t VALUES (1)`)
	assert.Error(t, err)
}

func TestOpenLegacySQLiteMissingFile(t *testing.T) {
	_, err := OpenLegacySQLite(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestLegacyDSNEscapesPath(t *testing.T) {
	assert.Equal(t, "file:/data/legacy%232025/a%3Fb%25.db?mode=ro&_pragma=busy_timeout(5000)",
		legacyDSN("/data/legacy#2025/a?b%.db"))
}

func TestOpenLegacySQLiteReservedCharsInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "legacy#2025 50%")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "colaboradores.db")

	rw, err := ConnectSQL(DriverSQLite, path)
	require.NoError(t, err)
	_, err = rw.Exec(`CREATE TABLE usuarios (login TEXT)`)
	require.NoError(t, err)
	_, err = rw.Exec(`INSERT INTO usuarios VALUES ('ana')`)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := OpenLegacySQLite(path)
	require.NoError(t, err)
	defer ro.Close()

	var n int
	require.NoError(t, ro.QueryRow(`SELECT COUNT(*) FROM usuarios`).Scan(&n))
	assert.Equal(t, 1, n)
}
