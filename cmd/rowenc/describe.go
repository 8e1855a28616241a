package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Print the columns of the schema descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.loadSchema()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tTABLE\tTYPE")
			for i, col := range ctx.Columns() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, col.Name, col.Table, col.Type)
			}
			return tw.Flush()
		},
	}
}
