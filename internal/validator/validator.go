package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their wire name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	return v
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := make(map[string]string, len(validationErrors))
			for _, fe := range validationErrors {
				fields[fieldPath(fe)] = msgForTag(fe)
			}
			return &ValidationError{fields: fields}
		}
		return err
	}
	return nil
}

// ObjectID checks a single path parameter.
func ObjectID(field, value string) error {
	if !primitive.IsValidObjectID(value) {
		return NewFieldError(field, "must be a valid id")
	}
	return nil
}

// ValidationError carries per-field messages and unwraps to domain.ErrInvalidInput.
type ValidationError struct {
	fields map[string]string
}

// NewFieldError builds a ValidationError for one field.
func NewFieldError(field, msg string) *ValidationError {
	return &ValidationError{fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", k, e.fields[k]))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}

// fieldPath drops the top-level struct name from the namespace,
// so "createReviewRequest.images[0]" becomes "images[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "objectid":
		return "must be a valid id"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "number":
		return "must be a non-negative integer"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
