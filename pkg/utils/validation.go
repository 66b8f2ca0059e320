package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gas-stock/internal/data/entity"

	"github.com/go-playground/validator/v10"
)

var (
	phoneNumberRegex         = regexp.MustCompile(`^\+?\d{10,15}$`)
	regionalPhoneNumberRegex = regexp.MustCompile(`^\+2507\d{8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhoneNumber(fl.Field().String())
	})
	v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return entity.IsValidRole(fl.Field().String())
	})
	return v
}

// ValidatePhoneNumber reports whether phone looks like a phone number:
// an optional leading + followed by 10 to 15 digits. Callers treat an
// empty value as "not provided" and skip the check.
func ValidatePhoneNumber(phone string) bool {
	return phoneNumberRegex.MatchString(phone)
}

// ValidateRegionalPhoneNumber accepts Rwandan mobile numbers only (+2507XXXXXXXX).
func ValidateRegionalPhoneNumber(phone string) bool {
	return regionalPhoneNumberRegex.MatchString(phone)
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[jsonFieldName(err)] = getErrorMessage(err)
		}
	}

	return errors
}

// jsonFieldName maps PhoneNumber to phone_number so errors line up with request keys.
func jsonFieldName(err validator.FieldError) string {
	var b strings.Builder
	for i, r := range err.Field() {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "phone":
		return "Invalid phone number format"
	case "role":
		return "Invalid role"
	case "oneof":
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// FormatValidationErrors flattens the map into one line, sorted by field.
func FormatValidationErrors(errors map[string]string) string {
	var msgs []string
	for field, msg := range errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
