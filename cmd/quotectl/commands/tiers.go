package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"staypricing/internal/domain/membership"
)

func tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Print the membership discount bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIER\tTRIPS\tDISCOUNT")
			for _, band := range membership.DefaultTable {
				trips := fmt.Sprintf("%d+", band.MinTrips)
				if band.MaxTrips > 0 {
					trips = fmt.Sprintf("%d-%d", band.MinTrips, band.MaxTrips)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s%%\n", band.Name, trips, band.Percent.String())
			}
			return tw.Flush()
		},
	}
}
