// Package scheduler runs the one-shot startup sync: delay, load legacy
// configuration files, analyze legacy stores, import, validate.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BartekS5/legacysync/internal/etl"
	"github.com/BartekS5/legacysync/internal/ini"
	"github.com/BartekS5/legacysync/pkg/logger"
)

// ErrAlreadyStarted is returned by every Run after the first.
var ErrAlreadyStarted = errors.New("startup sync already started")

type ConfigSyncer interface {
	SyncDirectory(ctx context.Context, dir, pattern string) (*ini.SyncResult, error)
}

type StoreAnalyzer interface {
	Analyze(ctx context.Context) (*etl.Analysis, error)
}

type LegacyImporter interface {
	Migrate(ctx context.Context) *etl.MigrationResult
}

type MigrationValidator interface {
	Validate(ctx context.Context) (*etl.Validation, error)
}

type Options struct {
	// Enabled false turns the run into a no-op that ends in Done.
	Enabled    bool
	Delay      time.Duration
	DataDir    string
	IniPattern string
}

// Report is what one run did.
type Report struct {
	History     []State              `json:"history" yaml:"history"`
	Final       State                `json:"final" yaml:"final"`
	FailedStage State                `json:"failedStage,omitempty" yaml:"failedStage,omitempty"`
	Error       string               `json:"error,omitempty" yaml:"error,omitempty"`
	Config      *ini.SyncResult      `json:"config,omitempty" yaml:"config,omitempty"`
	Analysis    *etl.Analysis        `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Migration   *etl.MigrationResult `json:"migration,omitempty" yaml:"migration,omitempty"`
	Validation  *etl.Validation      `json:"validation,omitempty" yaml:"validation,omitempty"`
	StartedAt   time.Time            `json:"startedAt" yaml:"startedAt"`
	FinishedAt  time.Time            `json:"finishedAt" yaml:"finishedAt"`
}

type Scheduler struct {
	opts      Options
	config    ConfigSyncer
	analyzer  StoreAnalyzer
	importer  LegacyImporter
	validator MigrationValidator

	once sync.Once
}

func New(opts Options, config ConfigSyncer, analyzer StoreAnalyzer, importer LegacyImporter, validator MigrationValidator) *Scheduler {
	if opts.IniPattern == "" {
		opts.IniPattern = "*.ini"
	}
	return &Scheduler{
		opts:      opts,
		config:    config,
		analyzer:  analyzer,
		importer:  importer,
		validator: validator,
	}
}

// Start runs the sequence in a background goroutine. The channel receives
// the report, or nothing if the scheduler already ran, and is then closed.
func (s *Scheduler) Start(ctx context.Context) <-chan *Report {
	out := make(chan *Report, 1)
	go func() {
		defer close(out)
		if rep, err := s.Run(ctx); err == nil {
			out <- rep
		}
	}()
	return out
}

// Run executes the sequence once per Scheduler. Stages run strictly in
// order; ctx is observed during the delay and between stages.
func (s *Scheduler) Run(ctx context.Context) (*Report, error) {
	var (
		rep *Report
		ran bool
	)
	s.once.Do(func() {
		ran = true
		rep = s.run(ctx)
	})
	if !ran {
		return nil, ErrAlreadyStarted
	}
	return rep, nil
}

func (s *Scheduler) run(ctx context.Context) *Report {
	m := newMachine()
	rep := &Report{StartedAt: time.Now()}
	defer func() {
		rep.History = m.history
		rep.Final = m.current
		rep.FailedStage = m.failedStage
		rep.FinishedAt = time.Now()
		logger.Infof("Startup sync finished in state %s", rep.Final)
	}()

	step := func(to State) {
		if err := m.transition(to); err != nil {
			// Only reachable through a programming error in run.
			panic(err)
		}
		logger.Debugf("Startup sync: %s", to)
	}
	fail := func(err error) {
		rep.Error = err.Error()
		logger.Errorf("Startup sync failed during %s: %v", m.current, err)
		step(Failed)
	}

	step(Delaying)
	if err := wait(ctx, s.opts.Delay); err != nil {
		fail(err)
		return rep
	}
	if !s.opts.Enabled {
		logger.Info("Legacy auto sync on startup is disabled")
		step(Done)
		return rep
	}

	step(SyncingConfig)
	cfg, err := s.config.SyncDirectory(ctx, s.opts.DataDir, s.opts.IniPattern)
	rep.Config = cfg
	if err != nil {
		logger.Warnf("Configuration sync incomplete: %v", err)
	}
	if err := ctx.Err(); err != nil {
		fail(err)
		return rep
	}

	step(AnalyzingStores)
	analysis, err := s.analyzer.Analyze(ctx)
	rep.Analysis = analysis
	if errors.Is(err, ini.ErrDataDirNotFound) {
		logger.Warnf("Nothing to import: %v", err)
		step(Done)
		return rep
	}
	if err != nil {
		logger.Warnf("Legacy store analysis incomplete: %v", err)
	}
	if err := ctx.Err(); err != nil {
		fail(err)
		return rep
	}

	step(Importing)
	rep.Migration = s.importer.Migrate(ctx)
	if err := ctx.Err(); err != nil {
		fail(err)
		return rep
	}

	step(Validating)
	validation, err := s.validator.Validate(ctx)
	rep.Validation = validation
	if err != nil {
		fail(err)
		return rep
	}

	step(Done)
	return rep
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
