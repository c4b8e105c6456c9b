package address

import (
	"context"
	"strings"
)

// DefaultCountry is assigned to every Address; lookups are scoped to Canada.
const DefaultCountry = "Canada"

// Address is a structured postal address produced from a lookup suggestion.
// Addresses are values: copy them freely, never mutate one in place.
type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province" validate:"required,ca_province"`
	PostalCode string `json:"postal_code" validate:"required,ca_postal"`
	Country    string `json:"country"`

	// DisplayText is the provider's label, shown verbatim in suggestion lists.
	DisplayText string `json:"display_text"`
}

// New synthesizes an Address outside of a lookup, e.g. for previews and tests.
// DisplayText falls back to the street.
func New(street, city, province, postalCode string) Address {
	return Address{
		Street:      street,
		City:        city,
		Province:    province,
		PostalCode:  postalCode,
		Country:     DefaultCountry,
		DisplayText: street,
	}
}

// ShortLabel is the one-line label used in suggestion lists: "DisplayText, City".
func (a Address) ShortLabel() string {
	if a.City == "" {
		return a.DisplayText
	}
	return a.DisplayText + ", " + a.City
}

// FullLabel joins the non-empty parts: "Street, City, Province PostalCode".
func (a Address) FullLabel() string {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
	}

	for _, part := range []string{a.Street, a.City, a.Province} {
		if part == "" {
			continue
		}
		sep()
		b.WriteString(part)
	}

	if a.PostalCode != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.PostalCode)
	}

	return b.String()
}

func (a Address) String() string {
	return a.FullLabel()
}

// IsDegenerate reports whether the address only carries the provider label,
// i.e. its description could not be split into street, city and province.
func (a Address) IsDegenerate() bool {
	return a.City == "" && a.Province == "" && a.PostalCode == ""
}

// RawSuggestion is a single lookup result as the provider returns it.
type RawSuggestion struct {
	ID          string
	Text        string
	Description string
}

// Validator checks whether an address is complete and well-formed.
type Validator interface {
	// Validate checks the address and returns a normalized copy.
	// Even if IsValid is false, NormalizedAddress may contain corrections.
	Validate(ctx context.Context, addr Address) (*ValidationResult, error)
}

// ValidationResult contains the outcome of address validation.
type ValidationResult struct {
	IsValid           bool
	NormalizedAddress *Address
	Errors            []ValidationError
	Warnings          []string
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
