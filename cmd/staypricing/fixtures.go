package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"staypricing/internal/app/uow"
	domainlistings "staypricing/internal/domain/listings"
	domainpricing "staypricing/internal/domain/pricing"
)

// listingFixture describes a listing as the sections a host would fill in.
type listingFixture struct {
	ID       string                     `json:"id"`
	Host     string                     `json:"host"`
	Kind     string                     `json:"kind"`
	Sections map[string]json.RawMessage `json:"sections"`
	Weekly   *decimal.Decimal           `json:"weekly_discount"`
	Monthly  *decimal.Decimal           `json:"monthly_discount"`
	Property *decimal.Decimal           `json:"property_discount"`
}

// loadListingFixtures publishes every fixture through the draft flow so that
// fixtures obey the same validation as hosts do.
func loadListingFixtures(ctx context.Context, factory uow.UoWFactory, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now().UTC()
	rules := domainpricing.Validator{Now: func() time.Time { return now }}
	for _, fx := range fixtures {
		listing, cfg, err := fx.publish(rules, now)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := storeFixture(ctx, factory, listing, &cfg); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", fx.ID)
	}
	return nil
}

func (fx listingFixture) publish(rules domainpricing.Validator, now time.Time) (*domainlistings.Listing, domainpricing.Configuration, error) {
	draft, err := domainlistings.NewDraft(domainlistings.DraftID("fixture-"+fx.ID), domainlistings.HostID(fx.Host), domainpricing.Kind(fx.Kind), now)
	if err != nil {
		return nil, domainpricing.Configuration{}, err
	}
	for name, raw := range fx.Sections {
		patch, err := domainlistings.NewPatch(domainlistings.Section(name))
		if err != nil {
			return nil, domainpricing.Configuration{}, fmt.Errorf("section %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, patch); err != nil {
			return nil, domainpricing.Configuration{}, fmt.Errorf("section %s: %w", name, err)
		}
		if err := draft.UpdateField(patch, now); err != nil {
			return nil, domainpricing.Configuration{}, fmt.Errorf("section %s: %w", name, err)
		}
	}
	if fx.Weekly != nil || fx.Monthly != nil {
		if err := rules.SetLongStay(&draft.Pricing, orZero(fx.Weekly), orZero(fx.Monthly)); err != nil {
			return nil, domainpricing.Configuration{}, err
		}
	}
	if fx.Property != nil {
		if err := rules.SetPropertyDiscount(&draft.Pricing, *fx.Property); err != nil {
			return nil, domainpricing.Configuration{}, err
		}
	}
	listing, cfg, err := domainlistings.Publish(domainlistings.ListingID(fx.ID), draft, now)
	if err != nil {
		return nil, domainpricing.Configuration{}, err
	}
	listing.ClearEvents()
	return listing, cfg, nil
}

func storeFixture(ctx context.Context, factory uow.UoWFactory, listing *domainlistings.Listing, cfg *domainpricing.Configuration) error {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	if err := unit.Configurations().Save(ctx, cfg); err != nil {
		_ = unit.Rollback(ctx)
		return err
	}
	return unit.Commit(ctx)
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
