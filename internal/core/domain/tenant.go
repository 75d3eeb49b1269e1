package domain

// Tenant is the slice of the tenant directory this engine consumes:
// display name and the feature flags referenced by the system prompt.
type Tenant struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Active                 bool   `json:"is_active"`
	HasCalendarIntegration bool   `json:"has_calendar_integration"`
}
