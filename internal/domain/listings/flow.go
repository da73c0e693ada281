package listings

import (
	"errors"
	"fmt"
	"strings"

	"staypricing/internal/domain/pricing"
)

type StepID string

const (
	StepCategory     StepID = "category"
	StepType         StepID = "type"
	StepLocation     StepID = "location"
	StepItinerary    StepID = "itinerary"
	StepDetails      StepID = "details"
	StepAmenities    StepID = "amenities"
	StepPhotos       StepID = "photos"
	StepTitle        StepID = "title"
	StepDescription  StepID = "description"
	StepFees         StepID = "fees"
	StepWeekdayPrice StepID = "weekday-price"
	StepWeekendPrice StepID = "weekend-price"
	StepDiscounts    StepID = "discounts"
	StepSafety       StepID = "safety"
	StepPreview      StepID = "preview"
)

const (
	maxTitleLength       = 50
	maxDescriptionLength = 500
)

// Step describes one wizard screen and the predicate gating moves past it.
type Step struct {
	ID    StepID
	Title string
	Check func(*Draft) error
}

// Flow is an ordered list of steps; prev/next come from the order.
type Flow struct {
	Kind     pricing.Kind
	Steps    []Step
	Sections []Section
}

var stayFlow = Flow{
	Kind: pricing.KindStay,
	Steps: []Step{
		{StepCategory, "Category", checkCategory},
		{StepType, "Type of place", checkPropertyType},
		{StepLocation, "Location", checkLocation},
		{StepDetails, "Basics", checkStayDetails},
		{StepAmenities, "Amenities", nil},
		{StepPhotos, "Photos", checkPhotos},
		{StepTitle, "Title", checkTitle},
		{StepDescription, "Description", checkDescription},
		{StepFees, "Fees", checkFees},
		{StepWeekdayPrice, "Weekday price", checkWeekdayPrice},
		{StepWeekendPrice, "Weekend price", checkWeekendPrice},
		{StepDiscounts, "Discounts", checkDiscounts},
		{StepSafety, "Safety", checkSafety},
		{StepPreview, "Preview", nil},
	},
	Sections: []Section{
		SectionCategory, SectionType, SectionLocation, SectionDetails, SectionAmenities,
		SectionPhotos, SectionTitle, SectionDescription, SectionFees, SectionPrice, SectionSafety,
	},
}

var experienceFlow = Flow{
	Kind: pricing.KindExperience,
	Steps: []Step{
		{StepCategory, "Category", checkCategory},
		{StepLocation, "Location", checkLocation},
		{StepItinerary, "Itinerary", checkItinerary},
		{StepDetails, "Group and duration", checkExperienceDetails},
		{StepPhotos, "Photos", checkPhotos},
		{StepTitle, "Title", checkTitle},
		{StepDescription, "Description", checkDescription},
		{StepFees, "Price and fees", checkExperienceFees},
		{StepDiscounts, "Discounts", checkDiscounts},
		{StepPreview, "Preview", nil},
	},
	Sections: []Section{
		SectionCategory, SectionLocation, SectionItinerary, SectionDetails,
		SectionPhotos, SectionTitle, SectionDescription, SectionFees, SectionPrice,
	},
}

// FlowFor returns the step sequence for a listing kind.
func FlowFor(kind pricing.Kind) (Flow, error) {
	switch kind {
	case pricing.KindStay:
		return stayFlow, nil
	case pricing.KindExperience:
		return experienceFlow, nil
	default:
		return Flow{}, fmt.Errorf("listings: unknown listing kind %q", kind)
	}
}

func (f Flow) First() StepID { return f.Steps[0].ID }

func (f Flow) Index(id StepID) int {
	for i, s := range f.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (f Flow) Step(id StepID) (Step, bool) {
	i := f.Index(id)
	if i < 0 {
		return Step{}, false
	}
	return f.Steps[i], true
}

// Prev returns the step before id; ok is false on the first step.
func (f Flow) Prev(id StepID) (StepID, bool) {
	i := f.Index(id)
	if i <= 0 {
		return "", false
	}
	return f.Steps[i-1].ID, true
}

// Next returns the step after id; ok is false on the last step.
func (f Flow) Next(id StepID) (StepID, bool) {
	i := f.Index(id)
	if i < 0 || i == len(f.Steps)-1 {
		return "", false
	}
	return f.Steps[i+1].ID, true
}

func (f Flow) IsLast(id StepID) bool {
	return f.Index(id) == len(f.Steps)-1
}

func (f Flow) allows(section Section) bool {
	for _, s := range f.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// StepView is the navigation state of one step for display.
type StepView struct {
	ID       StepID `json:"id"`
	Title    string `json:"title"`
	Prev     StepID `json:"prev,omitempty"`
	Next     StepID `json:"next,omitempty"`
	IsLast   bool   `json:"is_last"`
	Complete bool   `json:"complete"`
	Enabled  bool   `json:"enabled"`
}

var (
	errCategory     = errors.New("choose a category")
	errPropertyType = errors.New("choose the type of place")
	errAddress      = errors.New("enter a street, city and country")
	errAccommodates = errors.New("at least one guest must fit")
	errBeds         = errors.New("add at least one bed")
	errRooms        = errors.New("room counts must not be negative")
	errDuration     = errors.New("set how long the experience lasts")
	errPhotos       = errors.New("add at least one photo")
	errItinerary    = errors.New("add at least one activity")
	errActivity     = errors.New("every activity needs a title")
	errTitle        = errors.New("add a title")
	errDescription  = errors.New("add a description")
	errBasePrice    = errors.New("set a price above zero")
	errSafety       = errors.New("confirm the safety disclosures")
)

var propertyTypes = map[string]struct{}{
	"entire_place": {},
	"private_room": {},
	"shared_room":  {},
}

func checkCategory(d *Draft) error {
	if strings.TrimSpace(d.Category) == "" {
		return errCategory
	}
	return nil
}

func checkPropertyType(d *Draft) error {
	if _, ok := propertyTypes[d.PropertyType]; !ok {
		return errPropertyType
	}
	return nil
}

func checkLocation(d *Draft) error {
	if !d.Location.Valid() {
		return errAddress
	}
	return nil
}

func checkStayDetails(d *Draft) error {
	if d.Details.Accommodates < 1 {
		return errAccommodates
	}
	if d.Details.Beds < 1 {
		return errBeds
	}
	if d.Details.Bedrooms < 0 || d.Details.Bathrooms < 0 {
		return errRooms
	}
	return nil
}

func checkExperienceDetails(d *Draft) error {
	if d.Details.Accommodates < 1 {
		return errAccommodates
	}
	if d.Details.DurationMinutes < 1 {
		return errDuration
	}
	return nil
}

func checkPhotos(d *Draft) error {
	if len(d.Photos) == 0 {
		return errPhotos
	}
	return nil
}

func checkItinerary(d *Draft) error {
	if len(d.Itinerary) == 0 {
		return errItinerary
	}
	for _, a := range d.Itinerary {
		if strings.TrimSpace(a.Title) == "" {
			return errActivity
		}
	}
	return nil
}

func checkTitle(d *Draft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return errTitle
	}
	if len([]rune(title)) > maxTitleLength {
		return fmt.Errorf("keep the title under %d characters", maxTitleLength)
	}
	return nil
}

func checkDescription(d *Draft) error {
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return errDescription
	}
	if len([]rune(desc)) > maxDescriptionLength {
		return fmt.Errorf("keep the description under %d characters", maxDescriptionLength)
	}
	return nil
}

func checkFees(d *Draft) error {
	cfg := d.Pricing
	if cfg.CleaningFee.IsNegative() || cfg.ExtraGuestFee.IsNegative() {
		return errors.New("fees must not be negative")
	}
	if cfg.ExtraGuestThreshold < 1 {
		return errors.New("extra guest threshold must be at least 1")
	}
	if err := cfg.ServiceFee.Validate("service fee"); err != nil {
		return stepReason(err)
	}
	if err := cfg.TaxFee.Validate("tax fee"); err != nil {
		return stepReason(err)
	}
	return nil
}

func checkExperienceFees(d *Draft) error {
	if !d.Pricing.BasePrice.Amount.IsPositive() {
		return errBasePrice
	}
	return checkFees(d)
}

func checkWeekdayPrice(d *Draft) error {
	if !d.Pricing.BasePrice.Amount.IsPositive() {
		return errBasePrice
	}
	return nil
}

func checkWeekendPrice(d *Draft) error {
	if d.WeekendPrice.IsNegative() {
		return errors.New("weekend price must not be negative")
	}
	return nil
}

func checkDiscounts(d *Draft) error {
	if err := d.Pricing.Discounts.Validate(d.Kind); err != nil {
		return stepReason(err)
	}
	return nil
}

// stepReason turns a configuration error into a message for the step view.
func stepReason(err error) error {
	var invalidErr *pricing.ConfigurationInvalidError
	if errors.As(err, &invalidErr) {
		return fmt.Errorf("%s %s", invalidErr.Field, invalidErr.Reason)
	}
	return err
}

func checkSafety(d *Draft) error {
	if !d.Safety.Acknowledged {
		return errSafety
	}
	return nil
}
