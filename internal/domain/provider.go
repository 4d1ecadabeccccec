package domain

import "time"

// VerificationStatus is the admin-controlled discoverability gate.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// ValidVerificationStatus reports whether s is a known status.
func ValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// Provider is the service-professional entity, 1:1 with a User of
// role=provider. RatingAverage and TotalReviews are derived columns:
// only the reviews trigger writes them, never application code.
type Provider struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	BusinessName       string             `json:"business_name"`
	Bio                string             `json:"bio,omitempty"`
	ExperienceYears    int                `json:"experience_years"`
	ServiceAreas       []string           `json:"service_areas"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	RatingAverage      float64            `json:"rating_average"`
	TotalReviews       int                `json:"total_reviews"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`

	Profile  *Profile          `json:"profile,omitempty"`  // embedded on detail reads
	Services []ProviderService `json:"services,omitempty"` // embedded on detail reads
}

// ProviderService joins a provider to a service it offers.
type ProviderService struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	ServiceID   string    `json:"service_id"`
	CustomPrice *float64  `json:"custom_price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Service     *Service  `json:"service,omitempty"`
}

// ProviderAvailability is a weekly recurring slot.
// DayOfWeek is 0 (Sunday) through 6; EndTime must be after StartTime.
type ProviderAvailability struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	DayOfWeek  int       `json:"day_of_week"`
	StartTime  string    `json:"start_time"` // HH:MM
	EndTime    string    `json:"end_time"`   // HH:MM
	CreatedAt  time.Time `json:"created_at"`
}

// --- Provider API types ---

type RegisterProviderRequest struct {
	BusinessName    string   `json:"businessName"`
	Bio             string   `json:"bio,omitempty"`
	ExperienceYears int      `json:"experienceYears"`
	ServiceAreas    []string `json:"serviceAreas"`
}

type UpdateProviderRequest struct {
	BusinessName    string   `json:"businessName,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	ExperienceYears *int     `json:"experienceYears,omitempty"`
	ServiceAreas    []string `json:"serviceAreas,omitempty"`
}

type AttachServiceRequest struct {
	ServiceID   string   `json:"serviceId"`
	CustomPrice *float64 `json:"customPrice,omitempty"`
}

type AvailabilityRequest struct {
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// ProviderFilter narrows public provider listings.
type ProviderFilter struct {
	ServiceID string
	Area      string
	// IncludeUnverified is only honored for admins.
	IncludeUnverified bool
	// Status narrows the listing to one verification status (admin).
	Status VerificationStatus
}
