package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "DATA", cfg.DataDir)
	assert.False(t, cfg.Legacy.AutoSyncOnStartup)
	assert.Equal(t, 10*time.Second, cfg.Legacy.StartupDelay)
	assert.Equal(t, "colaboradores.db", cfg.Legacy.UserStore)
	assert.Equal(t, "dados2025.db", cfg.Legacy.RequestStore)
	assert.Equal(t, "*.ini", cfg.Legacy.IniPattern)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.True(t, cfg.Store.SeedDefaults)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacysync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/legado
legacy:
  auto_sync_on_startup: true
  startup_delay: 2s
store:
  driver: postgres
  dsn: postgres://file
`), 0o644))

	t.Setenv("LEGACYSYNC_LEGACY_EMAIL_DOMAIN", "banrisul.com.br")
	t.Setenv("SQL_CONNECTION_STRING", "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/legado", cfg.DataDir)
	assert.True(t, cfg.Legacy.AutoSyncOnStartup)
	assert.Equal(t, 2*time.Second, cfg.Legacy.StartupDelay)
	assert.Equal(t, "banrisul.com.br", cfg.Legacy.EmailDomain)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://env", cfg.Store.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("LEGACYSYNC_STORE_DRIVER", "oracle")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown store.driver")

	t.Setenv("LEGACYSYNC_STORE_DRIVER", StoreMongo)
	_, err = Load("")
	assert.ErrorContains(t, err, "store.mongo_uri")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFieldAliases(t *testing.T) {
	aliases, err := LoadFieldAliases("")
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "user", "usuario", "id"}, aliases.User.Login)

	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"login":["matricula"]},"userTables":["func"]}`), 0o644))

	aliases, err = LoadFieldAliases(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"matricula"}, aliases.User.Login)
	assert.Equal(t, []string{"nome", "name", "usuario", "login"}, aliases.User.Name)
	assert.Equal(t, []string{"func"}, aliases.UserTables)
	assert.Equal(t, []string{"solicit", "request", "pedido", "ticket"}, aliases.RequestTables)

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err = LoadFieldAliases(path)
	assert.ErrorContains(t, err, "failed to parse mapping file")
}
