package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	draftapp "staypricing/internal/app/handlers/drafts"
	"staypricing/internal/app/queries"
)

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h HostListingHandler) List(c *gin.Context) {
	principal, ok := requireRole(c, draftapp.HostRole)
	if !ok {
		return
	}
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := draftapp.ListHostListingsQuery{HostScope: draftapp.HostScope{HostID: principal.ID}}
	result, err := queries.Ask[draftapp.ListHostListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type suspendListingRequest struct {
	Reason string `json:"reason"`
}

func (h HostListingHandler) Suspend(c *gin.Context) {
	principal, ok := requireRole(c, draftapp.HostRole)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req suspendListingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := draftapp.SuspendListingCommand{
		HostScope: draftapp.HostScope{HostID: principal.ID},
		ListingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[draftapp.SuspendListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ HostListingHTTP = HostListingHandler{}
