package phone

import "github.com/go-playground/validator/v10"

// ValidationTag is the struct tag registered by RegisterValidation.
const ValidationTag = "phone10"

// RegisterValidation adds the phone10 rule to v. A string field passes when it
// holds exactly ten digits, punctuation allowed.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(ValidationTag, func(fl validator.FieldLevel) bool {
		return IsValid(fl.Field().String())
	})
}
