package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/andreyvit/edbexport"
	"github.com/spf13/cobra"
)

var (
	exportOutput       string
	exportIndent       bool
	exportBinaryLimit  int
	exportSkip         []string
	exportRedactPrefix []string
	exportFixture      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to XML",
	Long: `Export writes every collection of the store, with its index declarations
and objects, to an XML document. Damaged records are reported inline as
Exception elements and the export carries on.

With --fixture, the YAML fixture is exported directly and no store is opened.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.Export.Output = exportOutput
		}
		if flags.Changed("indent") {
			cfg.Export.Indent = exportIndent
		}
		if flags.Changed("binary-limit") {
			cfg.Export.BinaryDataSizeLimit = exportBinaryLimit
		}
		if flags.Changed("skip") {
			cfg.Export.SkipCollections = exportSkip
		}
		if flags.Changed("redact-prefix") {
			cfg.Export.Redaction.Prefixes = exportRedactPrefix
		}
		if err := Validate(cfg); err != nil {
			return err
		}

		summary, err := runExport(cmd.Context(), cfg, exportFixture, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d collections, %d objects (%d redacted, %d errors, %d exceptions), %d bytes, xxhash %016x\n",
			summary.Collections, summary.Objects, summary.Redacted, summary.Errors, summary.Exceptions, summary.Bytes, summary.Checksum)
		return nil
	},
}

func init() {
	flags := exportCmd.Flags()
	flags.StringVarP(&exportOutput, "output", "o", DefaultOutput, `output file, or "-" for standard output`)
	flags.BoolVar(&exportIndent, "indent", false, "indent the XML")
	flags.IntVar(&exportBinaryLimit, "binary-limit", edbexport.DefaultBinaryDataSizeLimit, "largest blob exported in full, in bytes")
	flags.StringSliceVar(&exportSkip, "skip", nil, "collections to leave out")
	flags.StringSliceVar(&exportRedactPrefix, "redact-prefix", nil, "redact settings whose key starts with this prefix")
	flags.StringVar(&exportFixture, "fixture", "", "export this YAML fixture instead of the store")
	rootCmd.AddCommand(exportCmd)
}

// runExport exports the configured store, or the fixture when one is given,
// to cfg.Export.Output. Standard output means stdout.
func runExport(ctx context.Context, cfg *Config, fixture string, stdout io.Writer) (edbexport.Summary, error) {
	opt := cfg.ExportOptions(logger, verbose)
	if len(opt.Redaction.Prefixes) == 0 {
		logger.LogAttrs(ctx, slog.LevelWarn, "export: no redaction prefixes configured, settings are exported in full",
			slog.String("collection", edbexport.DefaultRedactedCollection))
	}

	var exp *edbexport.Exporter
	if cfg.Export.Output == "-" {
		exp = edbexport.NewExporter(stdout, opt)
	} else {
		var err error
		exp, err = edbexport.CreateFile(cfg.Export.Output, opt)
		if err != nil {
			return edbexport.Summary{}, err
		}
	}

	err := drive(ctx, cfg, fixture, exp)
	if cerr := exp.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, edbexport.ErrStop) {
		logger.LogAttrs(ctx, slog.LevelInfo, "export: stopped early")
		err = nil
	}
	return exp.Summary(), err
}

func drive(ctx context.Context, cfg *Config, fixture string, sink edbexport.Sink) error {
	if fixture != "" {
		fx, err := LoadFixture(fixture)
		if err != nil {
			return err
		}
		db, err := fx.Database()
		if err != nil {
			return err
		}
		return edbexport.Walk(ctx, db, sink)
	}

	db, err := openStore(true)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Export(ctx, sink)
}
