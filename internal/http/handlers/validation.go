package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationMessage turns validator errors into a single client message.
// Missing fields take precedence over malformed ones.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgMissingFields
		}
	}
	switch fe := verrs[0]; fe.Tag() {
	case "email":
		return "Invalid email address"
	case "min":
		return "Password is too short"
	default:
		return "Invalid " + fe.Field()
	}
}
