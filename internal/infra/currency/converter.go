// Package currency converts canonical USD amounts for display. Nothing it
// returns is fed back into pricing.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	xcurrency "golang.org/x/text/currency"

	"staypricing/internal/app/policies"
	"staypricing/internal/domain/shared/money"
)

var (
	ErrUnsupportedCurrency = errors.New("currency: unsupported currency")
	ErrNotCanonical        = errors.New("currency: amount is not in " + money.Canonical)
)

// Converter holds a fixed table of USD multipliers. It is safe for concurrent use.
type Converter struct {
	rates map[string]decimal.Decimal
}

// NewConverter validates every code as ISO 4217. USD is always present at 1.
func NewConverter(rates map[string]decimal.Decimal) (*Converter, error) {
	table := map[string]decimal.Decimal{money.Canonical: decimal.NewFromInt(1)}
	for code, rate := range rates {
		unit, err := xcurrency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("currency: rate for %s must be positive", code)
		}
		table[unit.String()] = rate
	}
	return &Converter{rates: table}, nil
}

func (c *Converter) rate(code string) (string, decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rate, ok := c.rates[code]
	if !ok {
		return "", decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return code, rate, nil
}

// ToDisplay converts a USD amount into code without rounding.
func (c *Converter) ToDisplay(amount money.Money, code string) (money.Money, error) {
	if amount.Currency != "" && amount.Currency != money.Canonical {
		return money.Money{}, ErrNotCanonical
	}
	code, rate, err := c.rate(code)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: amount.Amount.Mul(rate), Currency: code}, nil
}

// ToCanonical converts an amount entered in code back to USD.
func (c *Converter) ToCanonical(amount money.Money, code string) (money.Money, error) {
	code, rate, err := c.rate(code)
	if err != nil {
		return money.Money{}, err
	}
	if amount.Currency != "" && amount.Currency != code {
		return money.Money{}, money.ErrCurrencyMismatch
	}
	return money.Money{Amount: amount.Amount.Div(rate), Currency: money.Canonical}, nil
}

// Format rounds to the currency's standard scale, e.g. "EUR 92.00" or "JPY 14950".
func (c *Converter) Format(amount money.Money, code string) (string, error) {
	code, _, err := c.rate(code)
	if err != nil {
		return "", err
	}
	if amount.Currency != "" && amount.Currency != code {
		return "", money.ErrCurrencyMismatch
	}
	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	scale, _ := xcurrency.Standard.Rounding(unit)
	return code + " " + amount.Amount.StringFixed(int32(scale)), nil
}

// Codes lists the supported display currencies in alphabetical order.
func (c *Converter) Codes() []string {
	out := make([]string, 0, len(c.rates))
	for code := range c.rates {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

var _ policies.CurrencyPort = (*Converter)(nil)
