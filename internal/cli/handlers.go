package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BartekS5/legacysync/internal/config"
	"github.com/BartekS5/legacysync/internal/etl"
	"github.com/BartekS5/legacysync/internal/ini"
	"github.com/BartekS5/legacysync/internal/scheduler"
	"github.com/BartekS5/legacysync/internal/store"
	"github.com/BartekS5/legacysync/internal/store/mongostore"
	"github.com/BartekS5/legacysync/internal/store/sqlstore"
	"github.com/BartekS5/legacysync/pkg/logger"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

func openCatalog(ctx context.Context, cfg *config.Config) (store.Catalog, error) {
	var (
		c   store.Catalog
		err error
	)
	switch cfg.Store.Driver {
	case config.StoreMongo:
		c, err = mongostore.Open(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	default:
		c, err = sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open canonical store: %w", err)
	}

	if cfg.Store.SeedDefaults {
		if err := store.SeedDefaults(ctx, c, cfg.Legacy.EmailDomain); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func sources(cfg *config.Config) etl.Sources {
	return etl.Sources{
		DataDir:      cfg.DataDir,
		UserStore:    cfg.Legacy.UserStore,
		RequestStore: cfg.Legacy.RequestStore,
	}
}

func buildScheduler(cfg *config.Config, c store.Catalog, opts scheduler.Options) (*scheduler.Scheduler, error) {
	aliases, err := config.LoadFieldAliases(cfg.Legacy.MappingFile)
	if err != nil {
		return nil, err
	}
	src := sources(cfg)
	return scheduler.New(opts,
		ini.NewService(c.ConfigEntries()),
		etl.NewAnalyzer(src),
		etl.NewImporter(src, c, etl.NewMapper(aliases, cfg.Legacy.EmailDomain)),
		etl.NewValidator(c),
	), nil
}

func schedulerOptions(cfg *config.Config) scheduler.Options {
	return scheduler.Options{
		Enabled:    cfg.Legacy.AutoSyncOnStartup,
		Delay:      cfg.Legacy.StartupDelay,
		DataDir:    cfg.DataDir,
		IniPattern: cfg.Legacy.IniPattern,
	}
}

// runServe starts the sync in the background and blocks until ctx ends.
func runServe(ctx context.Context, cfg *config.Config) error {
	c, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	s, err := buildScheduler(cfg, c, schedulerOptions(cfg))
	if err != nil {
		return err
	}

	logger.Info("legacysync started, waiting for signal")
	reports := s.Start(ctx)
	for {
		select {
		case rep, ok := <-reports:
			if ok && rep != nil && rep.Final == scheduler.Failed {
				logger.Warnf("Startup sync failed at %s: %s", rep.FailedStage, rep.Error)
			}
			reports = nil
		case <-ctx.Done():
			logger.Info("Shutting down")
			return nil
		}
	}
}

func runSync(ctx context.Context, cfg *config.Config, opts *SyncOptions, w io.Writer) error {
	c, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	so := schedulerOptions(cfg)
	if opts.Force {
		so.Enabled = true
	}
	if opts.NoDelay {
		so.Delay = 0
	}
	s, err := buildScheduler(cfg, c, so)
	if err != nil {
		return err
	}

	rep, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := writeOutput(w, opts.Format, rep); err != nil {
		return err
	}
	if rep.Final == scheduler.Failed {
		return fmt.Errorf("sync failed during %s: %s", rep.FailedStage, rep.Error)
	}
	return nil
}

func runAnalyze(ctx context.Context, cfg *config.Config, format string, w io.Writer) error {
	analysis, err := etl.NewAnalyzer(sources(cfg)).Analyze(ctx)
	if err != nil {
		return err
	}
	return writeOutput(w, format, analysis)
}

func withIniService(ctx context.Context, cfg *config.Config, fn func(context.Context, *ini.Service) error) error {
	c, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, ini.NewService(c.ConfigEntries()))
}

func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format '%s'", format)
	}
}

func errKeyNotFound(args []string) error {
	return fmt.Errorf("key not found: %s [%s] %s", args[0], args[1], args[2])
}
