package main

import (
	"context"
	"fmt"

	"github.com/andreyvit/edbexport/store"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed FIXTURE.yaml...",
	Short: "Load YAML fixtures into the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := runSeed(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d objects into %s\n", n, cfg.Store.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, paths []string) (int, error) {
	var fixtures []*Fixture
	for _, path := range paths {
		fx, err := LoadFixture(path)
		if err != nil {
			return 0, err
		}
		fixtures = append(fixtures, fx)
	}

	db, err := openStore(false)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var total int
	err = db.Write(func(tx *store.Tx) error {
		for _, fx := range fixtures {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := fx.Seed(tx)
			total += n
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
