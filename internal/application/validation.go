package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("field"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of input and converts failures into a
// ValidationError keyed by the field tag.
func validateStruct(input any) *ValidationError {
	vErr := &ValidationError{}

	err := structValidator.Struct(input)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("form", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fieldKey(fe), fieldMessage(fe))
	}
	return vErr
}

// fieldKey drops slice indexes so every add-on maps to "addons".
func fieldKey(fe validator.FieldError) string {
	key, _, _ := strings.Cut(fe.Field(), "[")
	return key
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fieldKey(fe), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s is invalid", label)
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", label)
	case "oneof":
		return fmt.Sprintf("%s contains an unknown option", label)
	}
	return fmt.Sprintf("%s is invalid", label)
}
