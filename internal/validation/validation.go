package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apierrors "github.com/upfeed/upfeed/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Check runs struct-tag validation on a service input and translates any
// failures into field errors keyed by the lowercased field name.
func Check(input interface{}) []apierrors.FieldError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.NewFieldError("input", "invalid input")
	}

	fieldErrs := make([]apierrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, apierrors.FieldError{
			Field:   fieldName(fe.Field()),
			Message: message(fe),
		})
	}
	return fieldErrs
}

func fieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldName(fe.Field()))
	case "min":
		return fmt.Sprintf("length must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("length must be at most %s", fe.Param())
	case "email":
		return "invalid email"
	case "excludes":
		return fmt.Sprintf("cannot include %q", fe.Param())
	default:
		return fmt.Sprintf("invalid %s", fieldName(fe.Field()))
	}
}
