package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Check a listing configuration for integrity errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(path)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, %d seasonal, %d early-bird)\n",
				path, cfg.Kind, len(cfg.Discounts.Seasonal), len(cfg.Discounts.EarlyBird))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "listing configuration JSON file")
	return cmd
}
