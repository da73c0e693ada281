package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	pricingapp "staypricing/internal/app/handlers/pricing"
	"staypricing/internal/app/queries"
	domainpricing "staypricing/internal/domain/pricing"
)

type QuoteHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createQuoteRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Date     string `json:"date"`
	Guests   int    `json:"guests"`
	Currency string `json:"currency"`
}

// Create prices a listing for the caller. Anonymous callers get no membership discount.
func (h QuoteHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := pricingapp.CreateQuoteCommand{
		ListingID: c.Param("id"),
		GuestID:   optionalUserID(c),
		Guests:    req.Guests,
		Currency:  firstNonEmpty(req.Currency, c.Query("currency")),
	}
	var err error
	if cmd.CheckIn, err = parseDate("check_in", req.CheckIn); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.CheckOut, err = parseDate("check_out", req.CheckOut); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.Date, err = parseDate("date", req.Date); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[pricingapp.CreateQuoteCommand, *dto.Quote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/quotes/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h QuoteHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := pricingapp.GetQuoteQuery{
		QuoteID:  c.Param("id"),
		GuestID:  optionalUserID(c),
		Currency: c.Query("currency"),
	}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, *dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Tiers lists the loyalty bands, plus the caller's own standing when known.
func (h QuoteHandler) Tiers(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := pricingapp.MembershipTiersQuery{GuestID: optionalUserID(c)}
	result, err := queries.Ask[pricingapp.MembershipTiersQuery, dto.MembershipTiers](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseDate accepts a civil date or an RFC 3339 timestamp. Empty is zero.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domainpricing.ErrInvalidParams, field)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var _ QuoteHTTP = QuoteHandler{}
