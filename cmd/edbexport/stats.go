package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andreyvit/edbexport/store"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-collection statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(true)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Read(func(tx *store.Tx) error {
			return writeStats(cmd.OutOrStdout(), tx)
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:    "dump",
	Short:  "Print every record of the store for debugging",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore(true)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Read(func(tx *store.Tx) error {
			_, err := io.WriteString(cmd.OutOrStdout(), tx.Dump(store.DumpAll))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(dumpCmd)
}

func writeStats(w io.Writer, tx *store.Tx) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tOBJECTS\tINDICES\tDATA\tDELETED")
	var total int
	for _, name := range tx.Collections() {
		s, err := tx.Stats(name)
		if err != nil {
			return err
		}
		total += s.Objects
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", name, s.Objects, s.Indices, s.DataSize, s.DeletionCounter)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\t%d\t\n", total, tx.Size())
	return tw.Flush()
}
