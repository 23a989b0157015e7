package services

import (
	"errors"
	"reflect"
	"strings"

	"bookstore/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports field names the way they appear in request bodies.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError turns the first failed rule into a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("Invalid input: %v", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.Validation("%s is required", fe.Field())
	case "gte", "min":
		return apperror.Validation("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return apperror.Validation("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return apperror.Validation("%s must be a valid email address", fe.Field())
	default:
		return apperror.Validation("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
	}
}

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return validationError(err)
	}
	return nil
}
