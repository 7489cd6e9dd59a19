package order

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/shopstate/internal/models"
)

var (
	ErrValidation    = errors.New("validation")     // 400
	ErrNotFound      = errors.New("not found")      // 404
	ErrConflict      = errors.New("conflict")       // 409
	ErrPaymentFailed = errors.New("payment failed") // 402
)

// ValidationError maps a json field name to a message a form can show inline.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("validation: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

var fieldLabels = map[string]string{
	"name":        "Name",
	"email":       "Email",
	"phone":       "Phone",
	"address":     "Address",
	"city":        "City",
	"postal_code": "Postal code",
}

// ValidateCustomer trims every field and checks it. The trimmed copy is
// returned so the stored order never carries stray whitespace.
func ValidateCustomer(ci models.CustomerInfo) (models.CustomerInfo, error) {
	ci.Name = strings.TrimSpace(ci.Name)
	ci.Email = strings.TrimSpace(ci.Email)
	ci.Phone = strings.TrimSpace(ci.Phone)
	ci.Address = strings.TrimSpace(ci.Address)
	ci.City = strings.TrimSpace(ci.City)
	ci.PostalCode = strings.TrimSpace(ci.PostalCode)

	err := validate.Struct(ci)
	if err == nil {
		return ci, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ci, fmt.Errorf("validate customer: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = label + " is required"
		default:
			fields[fe.Field()] = label + " is invalid"
		}
	}
	return ci, &ValidationError{Fields: fields}
}
