package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Property status values. Status is the only field that changes after creation.
const (
	StatusAvailable     = "Available"
	StatusUnderContract = "Under Contract"
	StatusSold          = "Sold"
)

// Field size limits, matching the properties table schema.
const (
	MaxTitleLen    = 200
	MaxTypeLen     = 50
	MaxLocationLen = 200
)

// TimeLayout is the wire format for created_at.
const TimeLayout = "2006-01-02 15:04:05"

// pricePattern allows up to 12 digits total with 2 decimal places (DECIMAL(12,2)).
var pricePattern = regexp.MustCompile(`^\d{1,10}(\.\d{1,2})?$`)

// Timestamp marshals as "2006-01-02 15:04:05" so records round-trip
// byte-identically through the JSON API.
type Timestamp struct {
	time.Time
}

func Now() Timestamp {
	return Timestamp{time.Now().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid created_at %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Property is the sole entity of the system. Price is kept as a decimal string
// so a stored value reads back exactly as written (no float drift).
// Bedrooms/Bathrooms are optional: nil means "not applicable".
type Property struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	PropertyType string    `json:"property_type"`
	Price        string    `json:"price"`
	SizeSqft     int64     `json:"size_sqft"`
	Bedrooms     *int64    `json:"bedrooms"`
	Bathrooms    *int64    `json:"bathrooms"`
	Location     string    `json:"location"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	CreatedAt    Timestamp `json:"created_at"`
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusUnderContract, StatusSold:
		return true
	}
	return false
}

// Validate checks the create-time constraints on a property. ID and CreatedAt
// are assigned by the backend and are not checked here.
func (p *Property) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(p.Title) > MaxTitleLen {
		return fmt.Errorf("title exceeds %d characters", MaxTitleLen)
	}
	if p.PropertyType == "" {
		return fmt.Errorf("property_type is required")
	}
	if len(p.PropertyType) > MaxTypeLen {
		return fmt.Errorf("property_type exceeds %d characters", MaxTypeLen)
	}
	if p.Location == "" {
		return fmt.Errorf("location is required")
	}
	if len(p.Location) > MaxLocationLen {
		return fmt.Errorf("location exceeds %d characters", MaxLocationLen)
	}
	if p.Price == "" {
		return fmt.Errorf("price is required")
	}
	if !pricePattern.MatchString(p.Price) {
		return fmt.Errorf("price must be a non-negative decimal with at most 2 decimal places")
	}
	if p.SizeSqft < 0 {
		return fmt.Errorf("size_sqft must be non-negative")
	}
	if p.Bedrooms != nil && *p.Bedrooms < 0 {
		return fmt.Errorf("bedrooms must be non-negative")
	}
	if p.Bathrooms != nil && *p.Bathrooms < 0 {
		return fmt.Errorf("bathrooms must be non-negative")
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	if !ValidStatus(p.Status) {
		return fmt.Errorf("status must be one of Available, Under Contract, Sold")
	}
	return nil
}

// SampleProperty is the record seeded into an empty ephemeral store so the
// system is demonstrably functional with zero prior writes.
func SampleProperty() Property {
	bedrooms := int64(3)
	bathrooms := int64(2)
	return Property{
		Title:        "Test Property 1",
		PropertyType: "Apartment",
		Price:        "450000",
		SizeSqft:     1200,
		Bedrooms:     &bedrooms,
		Bathrooms:    &bathrooms,
		Location:     "Kuala Lumpur",
		Status:       StatusAvailable,
		Description:  "This is a test property for development purposes.",
		CreatedAt:    Now(),
	}
}
