package drafts

import (
	"context"
	"fmt"
	"time"

	"staypricing/internal/app/commands"
	"staypricing/internal/app/dto"
	domainlistings "staypricing/internal/domain/listings"
)

const navigateKey = "host.drafts.navigate"

type Direction string

const (
	DirectionNext Direction = "next"
	DirectionBack Direction = "back"
	DirectionTo   Direction = "to"
)

// NavigateCommand moves the draft cursor. Step is only read for DirectionTo.
type NavigateCommand struct {
	HostScope
	DraftID   string
	Direction Direction
	Step      string
}

func (c NavigateCommand) Key() string { return navigateKey }

func (c NavigateCommand) Validate() error {
	if err := validateDraftRef(c.HostScope, c.DraftID); err != nil {
		return err
	}
	switch c.Direction {
	case DirectionNext, DirectionBack:
		return nil
	case DirectionTo:
		if c.Step == "" {
			return domainlistings.ErrUnknownStep
		}
		return nil
	default:
		return fmt.Errorf("unknown direction %q", c.Direction)
	}
}

type NavigateHandler struct {
	Base
}

func (h *NavigateHandler) Handle(ctx context.Context, cmd NavigateCommand) (*dto.Draft, error) {
	return h.mutate(ctx, cmd.HostID, cmd.DraftID, func(d *domainlistings.Draft, now time.Time) error {
		switch cmd.Direction {
		case DirectionNext:
			return d.Next(now)
		case DirectionBack:
			return d.Back(now)
		default:
			return d.MoveTo(domainlistings.StepID(cmd.Step), now)
		}
	})
}

var _ commands.Handler[NavigateCommand, *dto.Draft] = (*NavigateHandler)(nil)
