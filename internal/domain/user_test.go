package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  Ada Lovelace ", "  Ada@Example.COM ", " s3cretpass ", 36)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Name != "Ada Lovelace" {
		t.Errorf("Expected trimmed name, got %q", user.Name)
	}

	if user.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}

	if user.Password != "s3cretpass" {
		t.Errorf("Expected trimmed password, got %q", user.Password)
	}

	if user.Age != 36 {
		t.Errorf("Expected age 36, got %d", user.Age)
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		age      int
		want     error
	}{
		{"blank name", "   ", "a@b.co", "s3cretpass", 0, ErrEmptyName},
		{"missing email", "Ada", "", "s3cretpass", 0, ErrEmptyEmail},
		{"malformed email", "Ada", "not-an-email", "s3cretpass", 0, ErrInvalidEmail},
		{"negative age", "Ada", "a@b.co", "s3cretpass", -1, ErrNegativeAge},
		{"missing password", "Ada", "a@b.co", "   ", 0, ErrEmptyPassword},
		{"short password", "Ada", "a@b.co", "abc123", 0, ErrPasswordTooShort},
		{"short after trim", "Ada", "a@b.co", "  abc123  ", 0, ErrPasswordTooShort},
		{"contains password", "Ada", "a@b.co", "myPassWord1", 0, ErrPasswordContainsWord},
		{"too long", "Ada", "a@b.co", strings.Repeat("x", MaxPasswordLength+1), 0, ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password, tt.age)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected error %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected %v to wrap ErrValidation", err)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	validUser := User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		HashedPassword: "$2a$10$hash",
	}

	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidUser := validUser
	invalidUser.ID = uuid.Nil
	if err := invalidUser.Validate(); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	invalidUser = validUser
	invalidUser.HashedPassword = ""
	if err := invalidUser.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	invalidUser = validUser
	invalidUser.Password = "password123"
	if err := invalidUser.Validate(); !errors.Is(err, ErrPasswordContainsWord) {
		t.Errorf("Expected error %v, got %v", ErrPasswordContainsWord, err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  MiXeD@Case.Org\t"); got != "mixed@case.org" {
		t.Errorf("Expected mixed@case.org, got %q", got)
	}
}
