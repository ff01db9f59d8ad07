package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/legacysync/internal/config"
	"github.com/BartekS5/legacysync/pkg/logger"
)

type RootOptions struct {
	ConfigFile string
	LogLevel   string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "legacysync",
		Short: "legacysync - legacy data reconciliation and import",
		Long: `legacysync loads legacy INI configuration files and SQLite stores into the
canonical database: it analyzes unknown legacy schemas, maps users and change
requests heuristically and imports them without duplicating users.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile)
			if err != nil {
				return err
			}
			if opts.LogLevel != "" {
				cfg.Log.Level = opts.LogLevel
			}
			if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		NewServeCmd(opts),
		NewSyncCmd(opts),
		NewAnalyzeCmd(opts),
		NewIniCmd(opts),
	)

	return rootCmd
}
