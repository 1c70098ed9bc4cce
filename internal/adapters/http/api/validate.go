package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/fuelsense/internal/domain/vehicle"
)

// ValidationRule registers one custom tag on a validator.
type ValidationRule struct {
	Rule func(v *validator.Validate)
}

// Validator wraps validator.Validate and reports failures by JSON field name.
type Validator struct {
	validator *validator.Validate
}

// NewValidator returns a validator with the vehicle rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for _, r := range NewVehicleValidationRules() {
		r.Rule(v)
	}
	return &Validator{validator: v}
}

// Struct validates s. The returned error lists every failing field.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "engine_size":
		return rangeMessage(fe, vehicle.EngineSizeRange)
	case "cylinders":
		return rangeMessage(fe, vehicle.CylindersRange)
	case "co2_rating":
		return rangeMessage(fe, vehicle.CO2RatingRange)
	default:
		return fmt.Sprintf("%s: unknown option %v", fe.Field(), fe.Value())
	}
}

func rangeMessage(fe validator.FieldError, r vehicle.Range) string {
	return fmt.Sprintf("%s must be between %d and %d, got %v", fe.Field(), r.Min, r.Max, fe.Value())
}

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

// NewVehicleValidationRules returns the tags used by types.PredictRequest.
func NewVehicleValidationRules() []ValidationRule {
	return []ValidationRule{
		{Rule: registerFn("vehicle_class", optionValidator(func(s string) error { _, err := vehicle.ParseClass(s); return err }))},
		{Rule: registerFn("transmission", optionValidator(func(s string) error { _, err := vehicle.ParseTransmission(s); return err }))},
		{Rule: registerFn("fuel_type", optionValidator(func(s string) error { _, err := vehicle.ParseFuel(s); return err }))},
		{Rule: registerFn("engine_size", rangeValidator(vehicle.EngineSizeRange))},
		{Rule: registerFn("cylinders", rangeValidator(vehicle.CylindersRange))},
		{Rule: registerFn("co2_rating", rangeValidator(vehicle.CO2RatingRange))},
	}
}

func optionValidator(parse func(string) error) func(fl validator.FieldLevel) bool {
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return parse(val) == nil
	}
}

func rangeValidator(r vehicle.Range) func(fl validator.FieldLevel) bool {
	return func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return r.Contains(int(fl.Field().Int()))
		default:
			return false
		}
	}
}
