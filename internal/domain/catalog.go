package domain

import "time"

// ServiceCategory is a taxonomy node. is_active gates public visibility.
type ServiceCategory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IconURL     string    `json:"icon_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Service belongs to exactly one category. is_active is a soft delete.
type Service struct {
	ID              string           `json:"id"`
	CategoryID      string           `json:"category_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	BasePrice       float64          `json:"base_price"`
	DurationMinutes int              `json:"duration_minutes"`
	ImageURL        string           `json:"image_url,omitempty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Category        *ServiceCategory `json:"category,omitempty"` // embedded on detail reads
}

// --- Catalog API types ---

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type CreateServiceRequest struct {
	CategoryID      string  `json:"categoryId"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	BasePrice       float64 `json:"basePrice"`
	DurationMinutes int     `json:"durationMinutes"`
	ImageURL        string  `json:"imageUrl,omitempty"`
}

type UpdateServiceRequest struct {
	CategoryID      string   `json:"categoryId,omitempty"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	BasePrice       *float64 `json:"basePrice,omitempty"`
	DurationMinutes *int     `json:"durationMinutes,omitempty"`
	ImageURL        string   `json:"imageUrl,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	CategoryID      string
	Search          string
	IncludeInactive bool // admin only
}
