package errors

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidation converts the result of validator.Struct into an
// INVALID_CONFIG error naming the first failing field. Other errors are
// wrapped unchanged; nil stays nil.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Wrap(ErrCodeInvalidConfig, err, "invalid options")
	}

	e := verrs[0]
	field := fieldName(e.Namespace())
	var msg string
	switch e.Tag() {
	case "required":
		msg = fmt.Sprintf("%s: field is required", field)
	case "min", "gte":
		msg = fmt.Sprintf("%s: must be at least %s", field, e.Param())
	case "max", "lte":
		msg = fmt.Sprintf("%s: must not exceed %s", field, e.Param())
	case "gt":
		msg = fmt.Sprintf("%s: must be greater than %s", field, e.Param())
	case "lt":
		msg = fmt.Sprintf("%s: must be less than %s", field, e.Param())
	case FiniteTag:
		msg = fmt.Sprintf("%s: must be a finite number", field)
	case "oneof":
		msg = fmt.Sprintf("%s: must be one of [%s]", field, e.Param())
	default:
		msg = fmt.Sprintf("%s: validation failed (%s)", field, e.Tag())
	}
	return New(ErrCodeInvalidConfig, "%s", msg)
}

// fieldName drops the struct name from a validator namespace such as
// "Options.LinkDistance".
func fieldName(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// FiniteTag is the validation tag registered by [NewValidator] that rejects
// NaN and infinite floats.
const FiniteTag = "finite"

// NewValidator returns a validator with the finite tag registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(FiniteTag, func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}
