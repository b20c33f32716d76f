// Command ckptdump is an operator introspection tool for checkpoint
// stores: it lists the split files in a directory, opens a store
// read-only, and prints its bitmap and I/O counters.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dendrite-db/checkpointfile/checkpoint"
)

var rootCmd = &cobra.Command{
	Use:   "ckptdump [command] (flags)",
	Short: "checkpoint file store introspection tool",
}

func main() {
	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(lsCmd, statCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var lsCmd = &cobra.Command{
	Use:   "ls <dir>",
	Short: "list checkpoint files in a directory and decode their names",
	Args:  cobra.ExactArgs(1),
	RunE:  runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	dir := args[0]
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type row struct {
		name    string
		pgID    checkpoint.PartitionGroupID
		splitID checkpoint.SplitID
	}
	var rows []row
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		pgID, splitID, ok := checkpoint.CheckFileName(e.Name())
		if !ok {
			continue
		}
		rows = append(rows, row{e.Name(), pgID, splitID})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].pgID != rows[j].pgID {
			return rows[i].pgID < rows[j].pgID
		}
		return rows[i].splitID < rows[j].splitID
	})

	tw := newTable(cmd, []string{"FILE", "PG ID", "SPLIT ID"})
	for _, r := range rows {
		tw.Append([]string{r.name, r.pgID.String(), r.splitID.String()})
	}
	tw.Render()
	return nil
}

var (
	statBlockExp   uint
	statPgID       int64
	statSplitCount int
	statStripeSize int
)

var statCmd = &cobra.Command{
	Use:   "stat <dir>",
	Short: "open a checkpoint store read-only and print its counters",
	Long: `
Opens the store in a single directory in check-only mode (no files are
created or modified) and prints its bitmap and I/O counters as a table.
`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func init() {
	statCmd.Flags().UintVar(&statBlockExp, "block-exp", 16, "log2 of the block size in bytes")
	statCmd.Flags().Int64Var(&statPgID, "pg-id", 0, "partition group id")
	statCmd.Flags().IntVar(&statSplitCount, "splits", 1, "number of split files")
	statCmd.Flags().IntVar(&statStripeSize, "stripe-size", 1, "stripe size in blocks (ignored when splits == 1)")
}

func runStat(cmd *cobra.Command, args []string) error {
	dir := args[0]
	cfg := checkpoint.Config{
		BlockExp:   statBlockExp,
		PgID:       checkpoint.PartitionGroupID(statPgID),
		SplitCount: statSplitCount,
		StripeSize: statStripeSize,
		Dirs:       []string{dir},
	}
	f, err := checkpoint.New(cfg, nil)
	if err != nil {
		return err
	}
	if _, err := f.Open(true, false); err != nil {
		return err
	}
	defer f.Close()

	size, err := f.GetFileSize()
	if err != nil {
		return err
	}
	allocSize, err := f.GetFileAllocateSize()
	if err != nil {
		return err
	}

	m := f.Metrics()
	tw := newTable(cmd, []string{"METRIC", "VALUE"})
	tw.Append([]string{"blockNum", fmt.Sprint(m.BlockNum)})
	tw.Append([]string{"freeUseBitNum", fmt.Sprint(m.FreeUseBitNum)})
	tw.Append([]string{"readBlockCount", fmt.Sprint(m.ReadBlockCount)})
	tw.Append([]string{"writeBlockCount", fmt.Sprint(m.WriteBlockCount)})
	tw.Append([]string{"readRetryCount", fmt.Sprint(m.ReadRetryCount)})
	tw.Append([]string{"writeRetryCount", fmt.Sprint(m.WriteRetryCount)})
	tw.Append([]string{"fileSize", fmt.Sprint(size)})
	tw.Append([]string{"fileAllocateSize", fmt.Sprint(allocSize)})
	tw.Render()

	fmt.Fprintln(cmd.OutOrStdout(), f.Dump())
	return nil
}
