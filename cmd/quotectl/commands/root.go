// Package commands implements quotectl, an offline pricing calculator over a
// listing configuration file.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/infra/config"
	"staypricing/internal/infra/currency"
)

const defaultRates = "EUR=0.92,GBP=0.79,JPY=149.5"

type globals struct {
	rates     string
	converter *currency.Converter
}

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree; tests drive it with SetArgs and SetOut.
func NewRoot() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "quotectl",
		Short:        "Price stays and experiences from a listing configuration",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rates, err := config.ParseRates(g.rates)
			if err != nil {
				return err
			}
			g.converter, err = currency.NewConverter(rates)
			return err
		},
	}

	root.PersistentFlags().StringVar(&g.rates, "rates", envOr("CURRENCY_RATES", defaultRates), "USD conversion rates, CODE=rate pairs")

	root.AddCommand(quoteCmd(g), tiersCmd(), validateConfigCmd())
	return root
}

func loadConfiguration(path string) (domainpricing.Configuration, error) {
	if path == "" {
		return domainpricing.Configuration{}, fmt.Errorf("--config is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domainpricing.Configuration{}, err
	}
	var cfg domainpricing.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domainpricing.Configuration{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Kind == "" {
		cfg.Kind = domainpricing.KindStay
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
