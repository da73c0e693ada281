package pricing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"staypricing/internal/app/dto"
	handlersupport "staypricing/internal/app/handlers/support"
	"staypricing/internal/app/policies"
	"staypricing/internal/app/queries"
	"staypricing/internal/app/uow"
)

const getQuoteKey = "pricing.quotes.get"

var ErrQuoteNotVisible = errors.New("pricing: quote belongs to another guest")

type GetQuoteQuery struct {
	QuoteID  string
	GuestID  string
	Currency string
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
	Currency   policies.CurrencyPort
	Logger     *slog.Logger
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (*dto.Quote, error) {
	id := strings.TrimSpace(q.QuoteID)
	if id == "" {
		return nil, errors.New("quote id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	quote, err := unit.Quotes().ByID(execCtx, id)
	if err != nil {
		return nil, err
	}
	if quote.GuestID != "" && quote.GuestID != q.GuestID {
		return nil, ErrQuoteNotVisible
	}
	return quoteDTO(h.Currency, quote, q.Currency)
}

var _ queries.Handler[GetQuoteQuery, *dto.Quote] = (*GetQuoteHandler)(nil)
