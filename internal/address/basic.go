package address

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// provinces lists the Canada Post two-letter province and territory codes.
var provinces = map[string]string{
	"AB": "Alberta",
	"BC": "British Columbia",
	"MB": "Manitoba",
	"NB": "New Brunswick",
	"NL": "Newfoundland and Labrador",
	"NS": "Nova Scotia",
	"NT": "Northwest Territories",
	"NU": "Nunavut",
	"ON": "Ontario",
	"PE": "Prince Edward Island",
	"QC": "Quebec",
	"SK": "Saskatchewan",
	"YT": "Yukon",
}

// Canadian postal codes never use D, F, I, O, Q or U, and never start with W or Z.
var regexPostal = regexp.MustCompile(`^[ABCEGHJ-NPRSTVXY]\d[ABCEGHJ-NPRSTV-Z] \d[ABCEGHJ-NPRSTV-Z]\d$`)

// BasicValidator performs format validation without external API calls:
// required fields, province code and postal code shape.
type BasicValidator struct {
	validate *validator.Validate
}

// NewBasicValidator creates a new basic address validator.
func NewBasicValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("ca_province", func(fl validator.FieldLevel) bool {
		_, ok := provinces[fl.Field().String()]
		return ok
	})
	_ = v.RegisterValidation("ca_postal", func(fl validator.FieldLevel) bool {
		return regexPostal.MatchString(fl.Field().String())
	})

	return &BasicValidator{validate: v}
}

// Validate normalizes the address and checks it field by field.
func (v *BasicValidator) Validate(ctx context.Context, addr Address) (*ValidationResult, error) {
	normalized := Normalize(addr)
	result := &ValidationResult{
		IsValid:           true,
		NormalizedAddress: &normalized,
	}

	if normalized.Country != DefaultCountry {
		result.Warnings = append(result.Warnings, fmt.Sprintf("country %q is outside the lookup area", normalized.Country))
	}

	err := v.validate.StructCtx(ctx, normalized)
	if err == nil {
		return result, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate address: %w", err)
	}

	result.IsValid = false
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}

	return result, nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "ca_province":
		return "must be a two-letter Canadian province or territory code"
	case "ca_postal":
		return "must look like A1A 1A1"
	default:
		return "is invalid"
	}
}

// Normalize trims every field, upper-cases province and postal code and puts the
// postal code into "A1A 1A1" form. An empty country becomes DefaultCountry.
func Normalize(addr Address) Address {
	out := Address{
		Street:      strings.TrimSpace(addr.Street),
		City:        strings.TrimSpace(addr.City),
		Province:    strings.ToUpper(strings.TrimSpace(addr.Province)),
		PostalCode:  normalizePostal(addr.PostalCode),
		Country:     strings.TrimSpace(addr.Country),
		DisplayText: strings.TrimSpace(addr.DisplayText),
	}
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	return out
}

func normalizePostal(s string) string {
	compact := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if len(compact) != 6 {
		return strings.ToUpper(strings.TrimSpace(s))
	}
	return compact[:3] + " " + compact[3:]
}

// ProvinceName returns the full name for a province code, e.g. "ON" -> "Ontario".
func ProvinceName(code string) (string, bool) {
	name, ok := provinces[strings.ToUpper(code)]
	return name, ok
}
