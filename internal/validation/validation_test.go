package validation

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"letters and digits", "longenough1", nil},
		{"seven chars", "short1", ErrPasswordTooShort},
		{"exactly eight", "abcdefg1", nil},
		{"no digit", "alllettersnone", ErrPasswordNoDigit},
		{"no letter", "12345678", ErrPasswordNoLetter},
		{"empty", "", ErrPasswordRequired},
		{"symbols allowed", "Password123!", nil},
		{"non-ascii letters do not count", "ééééééé1", ErrPasswordNoLetter},
		{"multibyte counted by rune", "日本語日本語a1", nil},
		{"max bytes", strings.Repeat("a", 71) + "1", nil},
		{"over max bytes", strings.Repeat("a", 72) + "1", ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidator_Email(t *testing.T) {
	t.Parallel()

	v := New()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid", "alice@example.com", nil},
		{"uppercase", "Alice@Example.COM", nil},
		{"surrounding whitespace", "  alice@example.com  ", nil},
		{"empty", "", ErrEmailRequired},
		{"whitespace only", "   ", ErrEmailRequired},
		{"missing at", "alice.example.com", ErrEmailInvalid},
		{"missing domain", "alice@", ErrEmailInvalid},
		{"inner space", "ali ce@example.com", ErrEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := v.Email(tt.email); err != tt.wantErr {
				t.Errorf("Email(%q) = %v, want %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

type registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

func TestValidator_Struct(t *testing.T) {
	t.Parallel()

	v := New()

	tests := []struct {
		name       string
		input      registration
		wantFields map[string]string
	}{
		{
			name:       "valid",
			input:      registration{Email: "alice@example.com", Password: "longenough1"},
			wantFields: nil,
		},
		{
			name:  "missing password",
			input: registration{Email: "alice@example.com"},
			wantFields: map[string]string{
				"password": ErrPasswordRequired.Error(),
			},
		},
		{
			name:  "bad email and weak password",
			input: registration{Email: "nope", Password: "short1"},
			wantFields: map[string]string{
				"email":    ErrEmailInvalid.Error(),
				"password": ErrPasswordTooShort.Error(),
			},
		},
		{
			name:  "password without digit",
			input: registration{Email: "alice@example.com", Password: "alllettersnone"},
			wantFields: map[string]string{
				"password": ErrPasswordNoDigit.Error(),
			},
		},
		{
			name:  "everything missing",
			input: registration{},
			wantFields: map[string]string{
				"email":    ErrEmailRequired.Error(),
				"password": ErrPasswordRequired.Error(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := v.Struct(tt.input)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("Struct() = %v, want %v", got, tt.wantFields)
			}
			for field, msg := range tt.wantFields {
				if got[field] != msg {
					t.Errorf("field %q = %q, want %q", field, got[field], msg)
				}
			}
		})
	}
}

func TestFieldErrors_With(t *testing.T) {
	t.Parallel()

	var fields FieldErrors
	fields = fields.With("role", "property role should not exist")
	if got := fields["role"]; got != "property role should not exist" {
		t.Errorf("role = %q", got)
	}

	fields = FieldErrors{"email": ErrEmailInvalid.Error()}.With("email", "property email should not be repeated")
	if len(fields) != 1 || fields["email"] != "property email should not be repeated" {
		t.Errorf("expected the later message to replace the earlier one, got %v", fields)
	}
}
