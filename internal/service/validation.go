package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bilemo/bilemo/internal/apierr"
)

// Validator checks struct tags and reports client-facing violations.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator that names fields by their json tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Violations returns every failed constraint of s, or nil.
func (v *Validator) Violations(s any) ([]apierr.Violation, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apierr.FromValidator(verrs), nil
	}
	return nil, err
}

// hasViolation reports whether field already failed a constraint.
func hasViolation(violations []apierr.Violation, field string) bool {
	for _, v := range violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
