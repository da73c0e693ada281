package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"staypricing/internal/domain/membership"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/daterange"
	"staypricing/internal/domain/shared/money"
)

const dateLayout = "2006-01-02"

type quoteOptions struct {
	configPath string
	checkIn    string
	checkOut   string
	date       string
	bookedAt   string
	guests     int
	trips      int
	anonymous  bool
	currency   string
}

func quoteCmd(g *globals) *cobra.Command {
	var opts quoteOptions
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute a price breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfiguration(opts.configPath)
			if err != nil {
				return err
			}
			params, err := opts.params()
			if err != nil {
				return err
			}
			percent := membership.ResolveDiscountPercent(opts.trips, !opts.anonymous)
			b, err := domainpricing.Compute(cfg, params, percent)
			if err != nil {
				return err
			}
			return printBreakdown(cmd.OutOrStdout(), g, b, opts.currency)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "listing configuration JSON file")
	cmd.Flags().StringVar(&opts.checkIn, "check-in", "", "check-in date (YYYY-MM-DD), stays only")
	cmd.Flags().StringVar(&opts.checkOut, "check-out", "", "check-out date (YYYY-MM-DD), stays only")
	cmd.Flags().StringVar(&opts.date, "date", "", "experience date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.bookedAt, "booked-at", "", "booking date for early-bird rules (default today)")
	cmd.Flags().IntVar(&opts.guests, "guests", 1, "number of guests")
	cmd.Flags().IntVar(&opts.trips, "trips", 0, "completed trips of the guest")
	cmd.Flags().BoolVar(&opts.anonymous, "anonymous", false, "price for a guest who is not signed in")
	cmd.Flags().StringVar(&opts.currency, "currency", money.Canonical, "display currency")
	return cmd
}

func (o quoteOptions) params() (domainpricing.Params, error) {
	p := domainpricing.Params{Guests: o.guests, BookedAt: time.Now().UTC()}
	var err error
	if o.bookedAt != "" {
		if p.BookedAt, err = parseDay("booked-at", o.bookedAt); err != nil {
			return p, err
		}
	}
	if o.date != "" {
		if p.Date, err = parseDay("date", o.date); err != nil {
			return p, err
		}
	}
	if o.checkIn != "" || o.checkOut != "" {
		in, err := parseDay("check-in", o.checkIn)
		if err != nil {
			return p, err
		}
		out, err := parseDay("check-out", o.checkOut)
		if err != nil {
			return p, err
		}
		p.Range = daterange.DateRange{CheckIn: in, CheckOut: out}
	}
	return p, nil
}

func parseDay(flag, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, raw)
	}
	return t, nil
}

func printBreakdown(w io.Writer, g *globals, b domainpricing.Breakdown, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	lines := []struct {
		label  string
		amount money.Money
	}{
		{"subtotal", b.Subtotal},
		{"discount", b.Discount},
		{"cleaning fee", b.CleaningFee},
		{"extra guest fee", b.ExtraGuestFee},
		{"service fee", b.ServiceFee},
		{"tax", b.TaxFee},
		{"total", b.Total},
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "units\t%d\n", b.Units)
	fmt.Fprintf(tw, "discount percent\t%s\n", b.DiscountPercent.String())
	for _, a := range b.Applied {
		label := string(a.Source)
		if a.RuleID != "" {
			label += " " + a.RuleID
		}
		fmt.Fprintf(tw, "  applied\t%s %s%%\n", label, a.Percent.String())
	}
	for _, line := range lines {
		display, err := g.converter.ToDisplay(line.amount, code)
		if err != nil {
			return err
		}
		text, err := g.converter.Format(display, code)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", line.label, text)
	}
	return tw.Flush()
}
