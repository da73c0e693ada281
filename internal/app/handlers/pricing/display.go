package pricing

import (
	"errors"
	"strings"

	"staypricing/internal/app/dto"
	"staypricing/internal/app/policies"
	domainpricing "staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

var ErrCurrencyUnavailable = errors.New("pricing: currency conversion unavailable")

func quoteDTO(currency policies.CurrencyPort, q *domainpricing.Quote, code string) (*dto.Quote, error) {
	out := &dto.Quote{
		ID:                q.ID,
		ListingID:         q.ListingID,
		Kind:              string(q.Kind),
		MembershipPercent: q.MembershipPercent,
		Breakdown:         q.Breakdown,
		CreatedAt:         q.CreatedAt,
		ExpiresAt:         q.ExpiresAt,
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return out, nil
	}
	if currency == nil {
		return nil, ErrCurrencyUnavailable
	}
	display, err := renderBreakdown(currency, q.Breakdown, code)
	if err != nil {
		return nil, err
	}
	out.Display = display
	return out, nil
}

// renderBreakdown converts each line independently. Totals are not re-summed
// in the display currency.
func renderBreakdown(currency policies.CurrencyPort, b domainpricing.Breakdown, code string) (*dto.DisplayBreakdown, error) {
	out := &dto.DisplayBreakdown{Currency: code}
	lines := []struct {
		amount money.Money
		dst    *string
	}{
		{b.Subtotal, &out.Subtotal},
		{b.Discount, &out.Discount},
		{b.CleaningFee, &out.CleaningFee},
		{b.ExtraGuestFee, &out.ExtraGuestFee},
		{b.ServiceFee, &out.ServiceFee},
		{b.TaxFee, &out.TaxFee},
		{b.Total, &out.Total},
	}
	for _, line := range lines {
		converted, err := currency.ToDisplay(line.amount, code)
		if err != nil {
			return nil, err
		}
		formatted, err := currency.Format(converted, code)
		if err != nil {
			return nil, err
		}
		*line.dst = formatted
	}
	return out, nil
}
