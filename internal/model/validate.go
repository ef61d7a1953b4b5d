package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/raysh454/scanconfirm/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(requireTarget, ScanRequest{})
	return v
}

func requireTarget(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(ScanRequest)
	if !ok {
		return
	}
	if r.Rustscan == nil && r.Zap == nil {
		sl.ReportError(r.Rustscan, "targets", "Targets", "required_target", "")
	}
}

// Validate checks the request shape: a valid email and at least one
// non-blank target. Target URIs are not parsed. Failures are apperr
// validation errors listing each offending field.
func Validate(r ScanRequest) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(apperr.FieldError{Field: "body", Message: err.Error()})
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fe.Tag(),
		})
	}
	return apperr.Validation(fields...)
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
