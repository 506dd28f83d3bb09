// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"crewz/internal/models"

	"github.com/go-playground/validator/v10"
)

// FirstVehicleYear is the year of the first production automobile.
const FirstVehicleYear = 1886

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("vehicle_year", func(fl validator.FieldLevel) bool {
		return ValidateVehicleYear(int(fl.Field().Int()), time.Now()) == nil
	})

	return v
}

// Struct validates s against its `validate` tags and returns a validation AppError naming the
// first failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "username":
		return ValidateUsername(fmt.Sprint(fe.Value())).Error()
	case "password":
		return ValidatePassword(fmt.Sprint(fe.Value())).Error()
	case "vehicle_year":
		if y, ok := fe.Value().(int); ok {
			return ValidateVehicleYear(y, time.Now()).Error()
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ValidateVehicleYear accepts years from the first automobile up to next year's model year.
func ValidateVehicleYear(year int, now time.Time) error {
	latest := now.Year() + 1
	if year < FirstVehicleYear || year > latest {
		return fmt.Errorf("year must be between %d and %d", FirstVehicleYear, latest)
	}
	return nil
}
