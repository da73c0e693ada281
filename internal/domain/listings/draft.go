package listings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

type DraftID string

type Address struct {
	Line1   string  `json:"line1"`
	Line2   string  `json:"line2,omitempty"`
	City    string  `json:"city"`
	Region  string  `json:"region,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Details holds the capacity of a stay or the group size and length of an experience.
type Details struct {
	Accommodates    int `json:"accommodates"`
	Bedrooms        int `json:"bedrooms"`
	Beds            int `json:"beds"`
	Bathrooms       int `json:"bathrooms"`
	DurationMinutes int `json:"duration_minutes,omitempty"`
}

type Activity struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type Safety struct {
	HouseRules   []string `json:"house_rules"`
	SafetyItems  []string `json:"safety_items"`
	Acknowledged bool     `json:"acknowledged"`
}

// Draft is the in-progress listing of one host session.
type Draft struct {
	ID           DraftID               `json:"id"`
	Host         HostID                `json:"host_id"`
	Kind         pricing.Kind          `json:"kind"`
	ListingID    ListingID             `json:"listing_id,omitempty"`
	Step         StepID                `json:"step"`
	Category     string                `json:"category"`
	PropertyType string                `json:"property_type,omitempty"`
	Location     Address               `json:"location"`
	Details      Details               `json:"details"`
	Amenities    []string              `json:"amenities"`
	Photos       []string              `json:"photos"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Itinerary    []Activity            `json:"itinerary,omitempty"`
	Pricing      pricing.Configuration `json:"pricing"`
	WeekendPrice money.Money           `json:"weekend_price"`
	Safety       Safety                `json:"safety"`
	Version      int64                 `json:"version"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type DraftRepository interface {
	ByID(ctx context.Context, id DraftID) (*Draft, error)
	Save(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, id DraftID) error
}

// NewDraft starts an empty draft on the first step of the kind's flow.
func NewDraft(id DraftID, host HostID, kind pricing.Kind, now time.Time) (*Draft, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("listings: draft id is required")
	}
	if strings.TrimSpace(string(host)) == "" {
		return nil, fmt.Errorf("listings: host is required")
	}
	flow, err := FlowFor(kind)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	d := &Draft{ID: id, Host: host, Kind: kind, CreatedAt: now}
	d.clear(flow, now)
	return d, nil
}

func (d *Draft) clear(flow Flow, now time.Time) {
	listingID := d.ListingID
	d.Step = flow.First()
	d.Category = ""
	d.PropertyType = ""
	d.Location = Address{}
	d.Details = Details{}
	d.Amenities = nil
	d.Photos = nil
	d.Title = ""
	d.Description = ""
	d.Itinerary = nil
	d.Pricing = pricing.NewConfiguration(string(listingID), d.Kind)
	d.WeekendPrice = money.Zero(money.Canonical)
	d.Safety = Safety{}
	d.UpdatedAt = now
}

// Flow returns the step sequence of this draft.
func (d *Draft) Flow() Flow {
	flow, err := FlowFor(d.Kind)
	if err != nil {
		panic(err)
	}
	return flow
}

// OwnedBy reports whether host may edit the draft.
func (d *Draft) OwnedBy(host HostID) bool {
	return d.Host == host
}

// UpdateField merges patch into its own section and leaves the others untouched.
func (d *Draft) UpdateField(patch Patch, now time.Time) error {
	if patch == nil {
		return ErrUnknownSection
	}
	if !d.Flow().allows(patch.Section()) {
		return fmt.Errorf("%w: %s", ErrSectionNotInFlow, patch.Section())
	}
	if err := patch.apply(d); err != nil {
		return err
	}
	d.Touch(now)
	return nil
}

// Touch marks the draft as modified, e.g. after a discount rule edit.
func (d *Draft) Touch(now time.Time) {
	d.Pricing.Kind = d.Kind
	d.Pricing.MaxOccupancy = d.Details.Accommodates
	d.UpdatedAt = now.UTC()
}

// ValidateStep runs the predicate of one step; nil means complete.
func (d *Draft) ValidateStep(id StepID) error {
	step, ok := d.Flow().Step(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}
	if step.Check == nil {
		return nil
	}
	if err := step.Check(d); err != nil {
		return &StepIncompleteError{Step: id, Reason: err.Error()}
	}
	return nil
}

// CanMoveToStep allows any backward move. A forward move needs every step
// before the target to be complete.
func (d *Draft) CanMoveToStep(id StepID) bool {
	return d.blockingStep(id) == nil
}

func (d *Draft) blockingStep(target StepID) error {
	flow := d.Flow()
	to := flow.Index(target)
	if to < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownStep, target)
	}
	if to <= flow.Index(d.Step) {
		return nil
	}
	for _, step := range flow.Steps[:to] {
		if err := d.ValidateStep(step.ID); err != nil {
			return err
		}
	}
	return nil
}

// MoveTo navigates to id, refusing forward moves over incomplete steps.
func (d *Draft) MoveTo(id StepID, now time.Time) error {
	if err := d.blockingStep(id); err != nil {
		return err
	}
	d.Step = id
	d.UpdatedAt = now.UTC()
	return nil
}

// Next advances one step.
func (d *Draft) Next(now time.Time) error {
	next, ok := d.Flow().Next(d.Step)
	if !ok {
		return fmt.Errorf("%w: %s is the last step", ErrInvalidState, d.Step)
	}
	return d.MoveTo(next, now)
}

// Back goes one step back; it never fails except on the first step.
func (d *Draft) Back(now time.Time) error {
	prev, ok := d.Flow().Prev(d.Step)
	if !ok {
		return fmt.Errorf("%w: %s is the first step", ErrInvalidState, d.Step)
	}
	return d.MoveTo(prev, now)
}

// Steps lists every step with its navigation state relative to the current step.
func (d *Draft) Steps() []StepView {
	flow := d.Flow()
	views := make([]StepView, 0, len(flow.Steps))
	for _, step := range flow.Steps {
		prev, _ := flow.Prev(step.ID)
		next, _ := flow.Next(step.ID)
		views = append(views, StepView{
			ID:       step.ID,
			Title:    step.Title,
			Prev:     prev,
			Next:     next,
			IsLast:   flow.IsLast(step.ID),
			Complete: d.ValidateStep(step.ID) == nil,
			Enabled:  d.CanMoveToStep(step.ID),
		})
	}
	return views
}

// ValidationResult is the aggregate pre-publish verdict.
type ValidationResult struct {
	OK      bool   `json:"ok"`
	Step    StepID `json:"step,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidateAll runs every step predicate in flow order and then the cross-field
// checks. The first failure wins.
func (d *Draft) ValidateAll() ValidationResult {
	flow := d.Flow()
	for _, step := range flow.Steps {
		if step.Check == nil {
			continue
		}
		if err := step.Check(d); err != nil {
			return ValidationResult{Step: step.ID, Message: fmt.Sprintf("%s: %s", step.Title, err)}
		}
	}
	if d.Pricing.ExtraGuestThreshold > d.Details.Accommodates {
		return ValidationResult{
			Step:    StepFees,
			Message: fmt.Sprintf("Fees: extra guest threshold %d exceeds the %d guests the listing accommodates", d.Pricing.ExtraGuestThreshold, d.Details.Accommodates),
		}
	}
	cfg := d.PricingConfiguration()
	if err := cfg.Validate(); err != nil {
		return ValidationResult{Step: StepFees, Message: "Pricing: " + err.Error()}
	}
	return ValidationResult{OK: true}
}

// PricingConfiguration returns a copy of the configuration the draft would publish.
func (d *Draft) PricingConfiguration() pricing.Configuration {
	cfg := d.Pricing.Clone()
	cfg.ListingID = string(d.ListingID)
	cfg.Kind = d.Kind
	cfg.MaxOccupancy = d.Details.Accommodates
	return cfg
}

// Reset clears everything back to the first step. The draft keeps its identity.
func (d *Draft) Reset(now time.Time) {
	d.clear(d.Flow(), now.UTC())
}
