// Package validation holds the write-time validation error type and the shared
// struct validator used by the model packages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every Error and Errors value via errors.Is.
var ErrValidation = errors.New("validation failed")

// Error represents a field validation error
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Is lets callers use errors.Is(err, ErrValidation).
func (e Error) Is(target error) bool { return target == ErrValidation }

// New creates a single field error
func New(field, format string, args ...interface{}) Error {
	return Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errors represents multiple validation errors
type Errors []Error

// Error implements the error interface for Errors
func (ve Errors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return ve[0].Error()
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+" "+e.Message)
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(ve), strings.Join(parts, "; "))
}

func (ve Errors) Is(target error) bool { return target == ErrValidation }

// Add adds a validation error
func (ve *Errors) Add(field, format string, args ...interface{}) {
	*ve = append(*ve, New(field, format, args...))
}

// Merge appends the field errors carried by err. Any other error becomes a
// field-less entry.
func (ve *Errors) Merge(err error) {
	switch e := err.(type) {
	case nil:
	case Errors:
		*ve = append(*ve, e...)
	case Error:
		*ve = append(*ve, e)
	default:
		*ve = append(*ve, New("", "%v", err))
	}
}

// HasErrors returns true if there are validation errors
func (ve Errors) HasErrors() bool {
	return len(ve) > 0
}

// Err returns nil when empty. Returning a nil Errors as error would be non-nil.
func (ve Errors) Err() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates the `validate` tags of s and converts failures into Errors.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Error{Field: fieldPath(fe), Message: describe(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is empty", fe.Param())
	case "min":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
