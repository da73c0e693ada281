package ginserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	draftapp "staypricing/internal/app/handlers/drafts"
	"staypricing/internal/app/queries"
	domainlistings "staypricing/internal/domain/listings"
)

// DraftHandler serves the host listing editor.
type DraftHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type startDraftRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (h DraftHandler) Start(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	var req startDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := draftapp.StartDraftCommand{HostScope: host, Kind: req.Kind}
	result, err := commands.Dispatch[draftapp.StartDraftCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.created(c, result, err)
}

// OpenFromListing re-opens a published listing for editing.
func (h DraftHandler) OpenFromListing(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.OpenListingDraftCommand{HostScope: host, ListingID: c.Param("id")}
	result, err := commands.Dispatch[draftapp.OpenListingDraftCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.created(c, result, err)
}

func (h DraftHandler) Get(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	q := draftapp.GetDraftQuery{HostScope: host, DraftID: c.Param("id")}
	result, err := queries.Ask[draftapp.GetDraftQuery, *dto.Draft](c.Request.Context(), h.Queries, q)
	h.respond(c, result, err)
}

func (h DraftHandler) Validate(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	q := draftapp.ValidateDraftQuery{HostScope: host, DraftID: c.Param("id")}
	result, err := queries.Ask[draftapp.ValidateDraftQuery, domainlistings.ValidationResult](c.Request.Context(), h.Queries, q)
	h.respond(c, result, err)
}

// UpdateSection merges the JSON body into one section of the draft.
func (h DraftHandler) UpdateSection(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "section payload must be a JSON object"})
		return
	}
	cmd := draftapp.UpdateSectionCommand{
		HostScope: host,
		DraftID:   c.Param("id"),
		Section:   c.Param("section"),
		Payload:   json.RawMessage(body),
	}
	result, err := commands.Dispatch[draftapp.UpdateSectionCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

// Navigate accepts "next", "back" or a step id as the :step parameter.
func (h DraftHandler) Navigate(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.NavigateCommand{HostScope: host, DraftID: c.Param("id")}
	switch step := c.Param("step"); step {
	case string(draftapp.DirectionNext), string(draftapp.DirectionBack):
		cmd.Direction = draftapp.Direction(step)
	default:
		cmd.Direction = draftapp.DirectionTo
		cmd.Step = step
	}
	result, err := commands.Dispatch[draftapp.NavigateCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

type longStayRequest struct {
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

func (h DraftHandler) SetLongStay(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	var req longStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := draftapp.SetLongStayCommand{HostScope: host, DraftID: c.Param("id"), Weekly: req.Weekly, Monthly: req.Monthly}
	result, err := commands.Dispatch[draftapp.SetLongStayCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

type percentRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

func (h DraftHandler) SetPropertyDiscount(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	var req percentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := draftapp.SetPropertyDiscountCommand{HostScope: host, DraftID: c.Param("id"), Percent: req.Percent}
	result, err := commands.Dispatch[draftapp.SetPropertyDiscountCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

type seasonalRequest struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Percent decimal.Decimal `json:"percent"`
}

func (h DraftHandler) AddSeasonal(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	var req seasonalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := draftapp.AddSeasonalCommand{HostScope: host, DraftID: c.Param("id"), Percent: req.Percent}
	var err error
	if cmd.From, err = parseDate("from", req.From); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if cmd.To, err = parseDate("to", req.To); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	result, err := commands.Dispatch[draftapp.AddSeasonalCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.created(c, result, err)
}

func (h DraftHandler) RemoveSeasonal(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.RemoveSeasonalCommand{HostScope: host, DraftID: c.Param("id"), RuleID: c.Param("rule")}
	result, err := commands.Dispatch[draftapp.RemoveSeasonalCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

type earlyBirdRequest struct {
	DaysBefore int             `json:"days_before"`
	Percent    decimal.Decimal `json:"percent"`
}

func (h DraftHandler) AddEarlyBird(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	var req earlyBirdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := draftapp.AddEarlyBirdCommand{HostScope: host, DraftID: c.Param("id"), DaysBefore: req.DaysBefore, Percent: req.Percent}
	result, err := commands.Dispatch[draftapp.AddEarlyBirdCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.created(c, result, err)
}

func (h DraftHandler) RemoveEarlyBird(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.RemoveEarlyBirdCommand{HostScope: host, DraftID: c.Param("id"), RuleID: c.Param("rule")}
	result, err := commands.Dispatch[draftapp.RemoveEarlyBirdCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

func (h DraftHandler) Publish(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.PublishDraftCommand{HostScope: host, DraftID: c.Param("id")}
	result, err := commands.Dispatch[draftapp.PublishDraftCommand, *dto.PublishResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/host/listings/%s", result.ListingID))
	c.JSON(http.StatusOK, result)
}

func (h DraftHandler) Reset(c *gin.Context) {
	host, ok := h.host(c)
	if !ok {
		return
	}
	cmd := draftapp.ResetDraftCommand{HostScope: host, DraftID: c.Param("id")}
	result, err := commands.Dispatch[draftapp.ResetDraftCommand, *dto.Draft](c.Request.Context(), h.Commands, cmd)
	h.respond(c, result, err)
}

func (h DraftHandler) host(c *gin.Context) (draftapp.HostScope, bool) {
	p, ok := requireRole(c, draftapp.HostRole)
	if !ok {
		return draftapp.HostScope{}, false
	}
	if h.Commands == nil || h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "buses unavailable"})
		return draftapp.HostScope{}, false
	}
	return draftapp.HostScope{HostID: p.ID}, true
}

func (h DraftHandler) respond(c *gin.Context, result any, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h DraftHandler) created(c *gin.Context, result *dto.Draft, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/host/drafts/%s", result.Draft.ID))
	c.JSON(http.StatusCreated, result)
}

var _ DraftHTTP = DraftHandler{}
