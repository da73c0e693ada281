package dto

import (
	domainlistings "staypricing/internal/domain/listings"
)

// Draft is the editor view: the draft itself, its steps and the pre-publish verdict.
type Draft struct {
	Draft      *domainlistings.Draft           `json:"draft"`
	Steps      []domainlistings.StepView       `json:"steps"`
	Validation domainlistings.ValidationResult `json:"validation"`
}

func NewDraft(d *domainlistings.Draft) Draft {
	return Draft{Draft: d, Steps: d.Steps(), Validation: d.ValidateAll()}
}

type PublishResult struct {
	OK        bool   `json:"ok"`
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`
}
