package listings

import (
	"errors"
	"strings"

	"staypricing/internal/domain/pricing"
	"staypricing/internal/domain/shared/money"
)

// Section names a part of the draft a patch may touch.
type Section string

const (
	SectionCategory    Section = "category"
	SectionType        Section = "type"
	SectionLocation    Section = "location"
	SectionDetails     Section = "details"
	SectionAmenities   Section = "amenities"
	SectionPhotos      Section = "photos"
	SectionTitle       Section = "title"
	SectionDescription Section = "description"
	SectionItinerary   Section = "itinerary"
	SectionFees        Section = "fees"
	SectionPrice       Section = "price"
	SectionSafety      Section = "safety"
)

// Patch is a partial update of one section. Nil fields are left as they are.
type Patch interface {
	Section() Section
	apply(d *Draft) error
}

// NewPatch returns an empty patch for section, ready to be decoded into.
func NewPatch(section Section) (Patch, error) {
	switch section {
	case SectionCategory:
		return &CategoryPatch{}, nil
	case SectionType:
		return &TypePatch{}, nil
	case SectionLocation:
		return &LocationPatch{}, nil
	case SectionDetails:
		return &DetailsPatch{}, nil
	case SectionAmenities:
		return &AmenitiesPatch{}, nil
	case SectionPhotos:
		return &PhotosPatch{}, nil
	case SectionTitle:
		return &TitlePatch{}, nil
	case SectionDescription:
		return &DescriptionPatch{}, nil
	case SectionItinerary:
		return &ItineraryPatch{}, nil
	case SectionFees:
		return &FeesPatch{}, nil
	case SectionPrice:
		return &PricePatch{}, nil
	case SectionSafety:
		return &SafetyPatch{}, nil
	default:
		return nil, ErrUnknownSection
	}
}

type CategoryPatch struct {
	Category *string `json:"category"`
}

func (p *CategoryPatch) Section() Section { return SectionCategory }

func (p *CategoryPatch) apply(d *Draft) error {
	if p.Category != nil {
		d.Category = strings.TrimSpace(*p.Category)
	}
	return nil
}

type TypePatch struct {
	PropertyType *string `json:"property_type"`
}

func (p *TypePatch) Section() Section { return SectionType }

func (p *TypePatch) apply(d *Draft) error {
	if p.PropertyType != nil {
		d.PropertyType = strings.TrimSpace(*p.PropertyType)
	}
	return nil
}

type LocationPatch struct {
	Line1   *string  `json:"line1"`
	Line2   *string  `json:"line2"`
	City    *string  `json:"city"`
	Region  *string  `json:"region"`
	Country *string  `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (p *LocationPatch) Section() Section { return SectionLocation }

func (p *LocationPatch) apply(d *Draft) error {
	a := d.Location
	setString(&a.Line1, p.Line1)
	setString(&a.Line2, p.Line2)
	setString(&a.City, p.City)
	setString(&a.Region, p.Region)
	setString(&a.Country, p.Country)
	if p.Lat != nil {
		a.Lat = *p.Lat
	}
	if p.Lon != nil {
		a.Lon = *p.Lon
	}
	d.Location = a
	return nil
}

type DetailsPatch struct {
	Accommodates    *int `json:"accommodates"`
	Bedrooms        *int `json:"bedrooms"`
	Beds            *int `json:"beds"`
	Bathrooms       *int `json:"bathrooms"`
	DurationMinutes *int `json:"duration_minutes"`
}

func (p *DetailsPatch) Section() Section { return SectionDetails }

func (p *DetailsPatch) apply(d *Draft) error {
	details := d.Details
	setInt(&details.Accommodates, p.Accommodates)
	setInt(&details.Bedrooms, p.Bedrooms)
	setInt(&details.Beds, p.Beds)
	setInt(&details.Bathrooms, p.Bathrooms)
	setInt(&details.DurationMinutes, p.DurationMinutes)
	d.Details = details
	return nil
}

type AmenitiesPatch struct {
	Amenities *[]string `json:"amenities"`
}

func (p *AmenitiesPatch) Section() Section { return SectionAmenities }

func (p *AmenitiesPatch) apply(d *Draft) error {
	if p.Amenities != nil {
		d.Amenities = normalizeList(*p.Amenities)
	}
	return nil
}

type PhotosPatch struct {
	Photos *[]string `json:"photos"`
}

func (p *PhotosPatch) Section() Section { return SectionPhotos }

func (p *PhotosPatch) apply(d *Draft) error {
	if p.Photos != nil {
		d.Photos = normalizeList(*p.Photos)
	}
	return nil
}

type TitlePatch struct {
	Title *string `json:"title"`
}

func (p *TitlePatch) Section() Section { return SectionTitle }

func (p *TitlePatch) apply(d *Draft) error {
	setString(&d.Title, p.Title)
	return nil
}

type DescriptionPatch struct {
	Description *string `json:"description"`
}

func (p *DescriptionPatch) Section() Section { return SectionDescription }

func (p *DescriptionPatch) apply(d *Draft) error {
	setString(&d.Description, p.Description)
	return nil
}

type ItineraryPatch struct {
	Activities *[]Activity `json:"activities"`
}

func (p *ItineraryPatch) Section() Section { return SectionItinerary }

func (p *ItineraryPatch) apply(d *Draft) error {
	if p.Activities != nil {
		d.Itinerary = append([]Activity(nil), (*p.Activities)...)
	}
	return nil
}

// FeesPatch edits the fee side of the pricing configuration.
type FeesPatch struct {
	CleaningFee         *money.Money     `json:"cleaning_fee"`
	ExtraGuestFee       *money.Money     `json:"extra_guest_fee"`
	ExtraGuestThreshold *int             `json:"extra_guest_threshold"`
	ServiceFee          *pricing.FeeRule `json:"service_fee"`
	TaxFee              *pricing.FeeRule `json:"tax_fee"`
}

func (p *FeesPatch) Section() Section { return SectionFees }

func (p *FeesPatch) apply(d *Draft) error {
	cfg := d.Pricing
	if p.CleaningFee != nil {
		m, err := usd(*p.CleaningFee)
		if err != nil {
			return err
		}
		cfg.CleaningFee = m
	}
	if p.ExtraGuestFee != nil {
		m, err := usd(*p.ExtraGuestFee)
		if err != nil {
			return err
		}
		cfg.ExtraGuestFee = m
	}
	setInt(&cfg.ExtraGuestThreshold, p.ExtraGuestThreshold)
	if p.ServiceFee != nil {
		cfg.ServiceFee = *p.ServiceFee
	}
	if p.TaxFee != nil {
		cfg.TaxFee = *p.TaxFee
	}
	d.Pricing = cfg
	return nil
}

// PricePatch sets the weekday base price and the weekend price.
type PricePatch struct {
	WeekdayPrice *money.Money `json:"weekday_price"`
	WeekendPrice *money.Money `json:"weekend_price"`
}

func (p *PricePatch) Section() Section { return SectionPrice }

func (p *PricePatch) apply(d *Draft) error {
	weekday, weekend := d.Pricing.BasePrice, d.WeekendPrice
	var err error
	if p.WeekdayPrice != nil {
		if weekday, err = usd(*p.WeekdayPrice); err != nil {
			return err
		}
	}
	if p.WeekendPrice != nil {
		if weekend, err = usd(*p.WeekendPrice); err != nil {
			return err
		}
	}
	d.Pricing.BasePrice = weekday
	d.WeekendPrice = weekend
	return nil
}

type SafetyPatch struct {
	HouseRules   *[]string `json:"house_rules"`
	SafetyItems  *[]string `json:"safety_items"`
	Acknowledged *bool     `json:"acknowledged"`
}

func (p *SafetyPatch) Section() Section { return SectionSafety }

func (p *SafetyPatch) apply(d *Draft) error {
	s := d.Safety
	if p.HouseRules != nil {
		s.HouseRules = normalizeList(*p.HouseRules)
	}
	if p.SafetyItems != nil {
		s.SafetyItems = normalizeList(*p.SafetyItems)
	}
	if p.Acknowledged != nil {
		s.Acknowledged = *p.Acknowledged
	}
	d.Safety = s
	return nil
}

var ErrNotCanonical = errors.New("listings: prices must be entered in " + money.Canonical)

func usd(m money.Money) (money.Money, error) {
	switch strings.ToUpper(m.Currency) {
	case "", money.Canonical:
		return money.Money{Amount: m.Amount, Currency: money.Canonical}, nil
	default:
		return money.Money{}, ErrNotCanonical
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
