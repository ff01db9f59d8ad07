// Package config loads process settings through viper: defaults, an
// optional YAML file, then LEGACYSYNC_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers accepted in store.driver.
const (
	StoreSQLite    = "sqlite"
	StoreSQLServer = "sqlserver"
	StorePostgres  = "postgres"
	StoreMongo     = "mongo"
)

type Config struct {
	DataDir string       `mapstructure:"data_dir" yaml:"data_dir"`
	Legacy  LegacyConfig `mapstructure:"legacy" yaml:"legacy"`
	Store   StoreConfig  `mapstructure:"store" yaml:"store"`
	Log     LogConfig    `mapstructure:"log" yaml:"log"`
}

type LegacyConfig struct {
	AutoSyncOnStartup bool          `mapstructure:"auto_sync_on_startup" yaml:"auto_sync_on_startup"`
	StartupDelay      time.Duration `mapstructure:"startup_delay" yaml:"startup_delay"`
	UserStore         string        `mapstructure:"user_store" yaml:"user_store"`
	RequestStore      string        `mapstructure:"request_store" yaml:"request_store"`
	EmailDomain       string        `mapstructure:"email_domain" yaml:"email_domain"`
	IniPattern        string        `mapstructure:"ini_pattern" yaml:"ini_pattern"`
	MappingFile       string        `mapstructure:"mapping_file" yaml:"mapping_file"`
}

type StoreConfig struct {
	Driver        string `mapstructure:"driver" yaml:"driver"`
	DSN           string `mapstructure:"dsn" yaml:"dsn"`
	MongoURI      string `mapstructure:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
	SeedDefaults  bool   `mapstructure:"seed_defaults" yaml:"seed_defaults"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "DATA")
	v.SetDefault("legacy.auto_sync_on_startup", false)
	v.SetDefault("legacy.startup_delay", "10s")
	v.SetDefault("legacy.user_store", "colaboradores.db")
	v.SetDefault("legacy.request_store", "dados2025.db")
	v.SetDefault("legacy.email_domain", "empresa.com.br")
	v.SetDefault("legacy.ini_pattern", "*.ini")
	v.SetDefault("legacy.mapping_file", "")
	v.SetDefault("store.driver", StoreSQLite)
	v.SetDefault("store.dsn", "legacysync.db")
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "legacysync")
	v.SetDefault("store.seed_defaults", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads the YAML file at path when path is non-empty. Environment
// variables override the file; the connection string names used by
// earlier deployments are still honored.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("LEGACYSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("store.dsn", "LEGACYSYNC_STORE_DSN", "SQL_CONNECTION_STRING")
	_ = v.BindEnv("store.mongo_uri", "LEGACYSYNC_STORE_MONGO_URI", "MONGO_CONNECTION_STRING")
	_ = v.BindEnv("data_dir", "LEGACYSYNC_DATA_DIR", "PASTA_DATA")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreSQLite, StoreSQLServer, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set for driver %s", c.Store.Driver)
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri must be set for driver %s", StoreMongo)
		}
	default:
		return fmt.Errorf("unknown store.driver '%s'", c.Store.Driver)
	}
	if c.Legacy.StartupDelay < 0 {
		return fmt.Errorf("legacy.startup_delay must not be negative")
	}
	return nil
}
