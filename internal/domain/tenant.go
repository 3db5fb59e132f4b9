package domain

import "time"

// Industry codes with dedicated lexicons. Anything else falls back to the
// generic lexicon.
const (
	IndustryHVAC               = "hvac"
	IndustryPlumbing           = "plumbing"
	IndustryElectrical         = "electrical"
	IndustryPropertyManagement = "property_management"
	IndustryGeneric            = "generic"
)

// Tenant is an organization running the phone assistant; the unit of data
// isolation for every record in this service.
type Tenant struct {
	ID                   string
	Name                 string
	Industry             string
	PrimaryLanguage      string
	SupportedLanguages   []string
	UrgencyThreshold     *float64
	TechnicianPhones     []string
	CustomerConfirmation bool
	ServiceWindowStart   string
	ServiceWindowEnd     string
	Timezone             string
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Threshold returns the tenant-configured urgency threshold, or fallback
// when unset.
func (t *Tenant) Threshold(fallback float64) float64 {
	if t.UrgencyThreshold != nil {
		return *t.UrgencyThreshold
	}
	return fallback
}
