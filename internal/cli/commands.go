package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BartekS5/legacysync/internal/ini"
	"github.com/BartekS5/legacysync/pkg/logger"
)

type SyncOptions struct {
	Force   bool
	NoDelay bool
	Format  string
}

func NewServeCmd(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the startup sync once in the background and wait for a signal",
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, root.cfg)
		},
	}
}

func NewSyncCmd(root *RootOptions) *cobra.Command {
	opts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the startup sync in the foreground and print its report",
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSync(ctx, root.cfg, opts, c.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Run even when legacy.auto_sync_on_startup is false")
	cmd.Flags().BoolVar(&opts.NoDelay, "no-delay", false, "Skip the startup delay")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", formatYAML, "Report format (yaml, json)")
	return cmd
}

func NewAnalyzeCmd(root *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Describe the tables, columns and row counts of the legacy stores",
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalyze(c.Context(), root.cfg, format, c.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatYAML, "Output format (yaml, json)")
	return cmd
}

func NewIniCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ini",
		Short: "Legacy INI configuration operations",
	}

	load := &cobra.Command{
		Use:   "load <file>",
		Short: "Parse an INI file and replace its stored entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withIniService(c.Context(), root.cfg, func(ctx context.Context, svc *ini.Service) error {
				n, err := svc.LoadFile(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "%d entries loaded from %s\n", n, args[0])
				return nil
			})
		},
	}

	export := &cobra.Command{
		Use:   "export <name> <dest>",
		Short: "Write the stored entries of an INI file to dest",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return withIniService(c.Context(), root.cfg, func(ctx context.Context, svc *ini.Service) error {
				return svc.Export(ctx, args[0], args[1])
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <name> <section> <key>",
		Short: "Print a stored value",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return withIniService(c.Context(), root.cfg, func(ctx context.Context, svc *ini.Service) error {
				v, ok, err := svc.Value(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				if !ok {
					return errKeyNotFound(args)
				}
				fmt.Fprintln(c.OutOrStdout(), v)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <name> <section> <key> <value>",
		Short: "Change a stored value",
		Args:  cobra.ExactArgs(4),
		RunE: func(c *cobra.Command, args []string) error {
			return withIniService(c.Context(), root.cfg, func(ctx context.Context, svc *ini.Service) error {
				ok, err := svc.Update(ctx, args[0], args[1], args[2], args[3])
				if err != nil {
					return err
				}
				if !ok {
					return errKeyNotFound(args)
				}
				logger.Infof("Updated %s [%s] %s", args[0], args[1], args[2])
				return nil
			})
		},
	}

	cmd.AddCommand(load, export, get, set)
	return cmd
}
