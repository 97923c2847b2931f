package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// BusinessType is the category a business profile belongs to.
type BusinessType string

const (
	Technology    BusinessType = "Technology"
	Manufacturing BusinessType = "Manufacturing"
	Software      BusinessType = "Software"
	Consulting    BusinessType = "Consulting"
	Biotechnology BusinessType = "Biotechnology"
	Healthcare    BusinessType = "Healthcare"
	ECommerce     BusinessType = "E-commerce"
	Other         BusinessType = "Other"
)

// Field limits, counted in characters.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
)

// BusinessTypes lists the accepted categories in display order.
var BusinessTypes = []BusinessType{
	Technology,
	Manufacturing,
	Software,
	Consulting,
	Biotechnology,
	Healthcare,
	ECommerce,
	Other,
}

// Valid reports whether t is one of the accepted categories.
func (t BusinessType) Valid() bool {
	for _, bt := range BusinessTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// ParseBusinessType matches s case-insensitively against the accepted categories.
func ParseBusinessType(s string) (BusinessType, error) {
	s = strings.TrimSpace(s)
	for _, bt := range BusinessTypes {
		if strings.EqualFold(s, string(bt)) {
			return bt, nil
		}
	}
	return "", Validationf("unknown business type %q", s)
}

// BusinessProfile is the three-field description submitted by a user.
type BusinessProfile struct {
	Name        string       `json:"name" yaml:"name"`
	Type        BusinessType `json:"type" yaml:"type"`
	Description string       `json:"description,omitempty" yaml:"description"`
}

// Validate returns a ValidationError failure if the profile cannot be submitted.
func (p BusinessProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("business name is required")
	}
	if n := utf8.RuneCountInString(p.Name); n > MaxNameLength {
		return Validationf("business name is %d characters, limit is %d", n, MaxNameLength)
	}
	if p.Type == "" {
		return Validationf("business type is required")
	}
	if !p.Type.Valid() {
		return Validationf("unknown business type %q", string(p.Type))
	}
	if n := utf8.RuneCountInString(p.Description); n > MaxDescriptionLength {
		return Validationf("description is %d characters, limit is %d", n, MaxDescriptionLength)
	}
	return nil
}

// String renders the profile for log lines.
func (p BusinessProfile) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Type)
}
