package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// newTable builds a tablewriter.Table writing to cmd's configured output,
// with borders disabled for output that greps and pipes cleanly.
func newTable(cmd *cobra.Command, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader(header)
	tw.SetAutoWrapText(false)
	tw.SetBorder(false)
	return tw
}
