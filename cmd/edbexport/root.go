package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/andreyvit/edbexport/store"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	storePath string

	cfg    *Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edbexport",
	Short: "Export a document store to self-describing XML",
	Long: `edbexport keeps dynamically typed objects in a Bolt database and exports
them to an XML document suitable for backups, diagnostics and migration.

Every property is written as an element named after its value kind, so the
document can be read back without a schema. Settings whose key starts with a
configured prefix are redacted from the export.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = LoadConfig(cfgFile)
		} else {
			cfg, err = DefaultConfig()
		}
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("store") {
			cfg.Store.Path = storePath
		}
		logger = cfg.NewLogger(verbose)
		return nil
	},
}

// Execute runs the root command, cancelling it on interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&storePath, "store", "s", DefaultStorePath, "store database file")
}

func openStore(readOnly bool) (*store.DB, error) {
	if readOnly {
		if _, err := os.Stat(cfg.Store.Path); err != nil {
			return nil, fmt.Errorf("store %s: %w", cfg.Store.Path, err)
		}
	}
	return store.Open(cfg.Store.Path, store.Options{
		Logger:   logger,
		Verbose:  verbose,
		MmapSize: cfg.Store.MmapSize,
		ReadOnly: readOnly,
	})
}
