// Package validation holds the registration input policy.
// The HTTP adapter and the terminal client share it so both reject the same input.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/enroll/enroll/internal/auth"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 8

// Validation errors. The messages are shown to end users as-is.
var (
	ErrEmailRequired    = errors.New("Email is required")
	ErrEmailInvalid     = errors.New("Please enter a valid email address")
	ErrPasswordRequired = errors.New("Password is required")
	ErrPasswordTooShort = errors.New("Password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes long")
	ErrPasswordNoLetter = errors.New("Password must contain at least one letter")
	ErrPasswordNoDigit  = errors.New("Password must contain at least one number")
	ErrValueInvalid     = errors.New("Value is invalid")
)

// passwordTag is the struct tag name for the password policy.
const passwordTag = "password"

// Validator checks tagged request structs and reports failures per field.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the password rule registered.
// Field names in reports come from json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails on an empty tag name, which never happens here.
	_ = v.RegisterValidation(passwordTag, func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})

	return &Validator{validate: v}
}

// FieldErrors maps a json field name to a human-readable message.
type FieldErrors map[string]string

// With sets the message for field, replacing any earlier one, and returns
// the updated map. It allocates when f is nil.
func (f FieldErrors) With(field, message string) FieldErrors {
	if f == nil {
		f = make(FieldErrors)
	}
	f[field] = message
	return f
}

// Struct validates s and returns nil when it passes.
func (v *Validator) Struct(s any) FieldErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"body": ErrValueInvalid.Error()}
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = messageFor(fe)
	}
	return fields
}

// Email validates a single address with the same rule as Struct.
func (v *Validator) Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	if err := v.validate.Var(email, "email"); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "password" {
			return ErrPasswordRequired.Error()
		}
		if fe.Field() == "email" {
			return ErrEmailRequired.Error()
		}
		return fe.Field() + " is required"
	case "email":
		return ErrEmailInvalid.Error()
	case passwordTag:
		if err := ValidatePassword(fe.Value().(string)); err != nil {
			return err.Error()
		}
	}
	return ErrValueInvalid.Error()
}

// ValidatePassword applies the password policy and returns the first violation.
// Letters and digits are ASCII only.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > auth.MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}

	if !hasLetter {
		return ErrPasswordNoLetter
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}
