package drafts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"staypricing/internal/app/dto"
	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// HostRole is the role every draft command requires.
const HostRole = "host"

var errDraftIDRequired = errors.New("draft id is required")

// HostScope is embedded by commands only hosts may send.
type HostScope struct {
	HostID string
}

func (HostScope) RequiredRole() string { return HostRole }

func (s HostScope) validate() error {
	if strings.TrimSpace(s.HostID) == "" {
		return errors.New("host id is required")
	}
	return nil
}

func validateDraftRef(scope HostScope, draftID string) error {
	if err := scope.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(draftID) == "" {
		return errDraftIDRequired
	}
	return nil
}

// Base carries what every draft handler shares.
type Base struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
	Rules  domainpricing.Validator
}

func (b Base) now() time.Time {
	if b.Now != nil {
		return b.Now().UTC()
	}
	return time.Now().UTC()
}

func (b Base) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

// rules binds the rule validator to the handler clock when it has none.
func (b Base) rules() domainpricing.Validator {
	v := b.Rules
	if v.Now == nil {
		v.Now = b.now
	}
	return v
}

func loadOwned(ctx context.Context, unit uow.UnitOfWork, hostID, draftID string) (*domainlistings.Draft, error) {
	draft, err := unit.Drafts().ByID(ctx, domainlistings.DraftID(draftID))
	if err != nil {
		return nil, err
	}
	if !draft.OwnedBy(domainlistings.HostID(hostID)) {
		return nil, domainlistings.ErrNotOwner
	}
	return draft, nil
}

// mutate loads the draft, applies fn and persists it before returning, so the
// next read sees the change.
func (b Base) mutate(ctx context.Context, hostID, draftID string, fn func(d *domainlistings.Draft, now time.Time) error) (*dto.Draft, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	draft, err := loadOwned(ctx, unit, hostID, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(draft, b.now()); err != nil {
		return nil, err
	}
	return b.save(ctx, unit, draft)
}

func (b Base) save(ctx context.Context, unit uow.UnitOfWork, draft *domainlistings.Draft) (*dto.Draft, error) {
	if err := unit.Drafts().Save(ctx, draft); err != nil {
		return nil, domainlistings.Remote("save draft", err)
	}
	out := dto.NewDraft(draft)
	return &out, nil
}

func parseKind(raw string) (domainpricing.Kind, error) {
	kind := domainpricing.Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown listing kind %q", raw)
	}
	return kind, nil
}
