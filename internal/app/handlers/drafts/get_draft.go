package drafts

import (
	"context"
	"log/slog"

	"staypricing/internal/app/dto"
	handlersupport "staypricing/internal/app/handlers/support"
	"staypricing/internal/app/queries"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
)

const (
	getDraftKey      = "host.drafts.get"
	validateDraftKey = "host.drafts.validate"
)

type GetDraftQuery struct {
	HostScope
	DraftID string
}

func (q GetDraftQuery) Key() string     { return getDraftKey }
func (q GetDraftQuery) Validate() error { return validateDraftRef(q.HostScope, q.DraftID) }

type GetDraftHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *GetDraftHandler) Handle(ctx context.Context, q GetDraftQuery) (*dto.Draft, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	draft, err := loadOwned(execCtx, unit, q.HostID, q.DraftID)
	if err != nil {
		return nil, err
	}
	out := dto.NewDraft(draft)
	return &out, nil
}

// ValidateDraftQuery runs the pre-publish checks without publishing.
type ValidateDraftQuery struct {
	HostScope
	DraftID string
}

func (q ValidateDraftQuery) Key() string     { return validateDraftKey }
func (q ValidateDraftQuery) Validate() error { return validateDraftRef(q.HostScope, q.DraftID) }

type ValidateDraftHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ValidateDraftHandler) Handle(ctx context.Context, q ValidateDraftQuery) (domainlistings.ValidationResult, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return domainlistings.ValidationResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	draft, err := loadOwned(execCtx, unit, q.HostID, q.DraftID)
	if err != nil {
		return domainlistings.ValidationResult{}, err
	}
	return draft.ValidateAll(), nil
}

var (
	_ queries.Handler[GetDraftQuery, *dto.Draft]                           = (*GetDraftHandler)(nil)
	_ queries.Handler[ValidateDraftQuery, domainlistings.ValidationResult] = (*ValidateDraftHandler)(nil)
)
