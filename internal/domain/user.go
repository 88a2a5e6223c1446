package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password constraints.
const (
	MinPasswordLength = 7
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
	forbiddenPassword = "password"
)

// User validation errors.
var (
	ErrEmptyUserID          = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmptyEmail           = fmt.Errorf("%w: email is required", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: email is invalid", ErrValidation)
	ErrNegativeAge          = fmt.Errorf("%w: age must be a positive number", ErrValidation)
	ErrEmptyPassword        = fmt.Errorf("%w: password is required", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most %d characters long", ErrValidation, MaxPasswordLength)
	ErrPasswordContainsWord = fmt.Errorf("%w: password cannot contain %q", ErrValidation, forbiddenPassword)
)

var validate = validator.New()

// User is a registered account. Tokens and avatar bytes are held by the
// stores and never travel on this struct.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext, only set between input and hashing
	HashedPassword string    `json:"-"`
	HasAvatar      bool      `json:"has_avatar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser builds a normalized, validated user with a fresh ID.
// The caller hashes Password before the user is stored.
func NewUser(name, email, password string, age int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Age:       age,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Normalize()

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Normalize trims the text fields and lower-cases the email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
	u.Password = strings.TrimSpace(u.Password)
}

// NormalizeEmail returns the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user's fields. A plaintext password is validated when
// present; otherwise a hashed password must already be set.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := ValidateName(u.Name); err != nil {
		return err
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.Age < 0 {
		return ErrNegativeAge
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}

	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidateName rejects blank names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the length bounds and rejects any password
// containing the word "password" in any case.
func ValidatePassword(password string) error {
	password = strings.TrimSpace(password)
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	case strings.Contains(strings.ToLower(password), forbiddenPassword):
		return ErrPasswordContainsWord
	}
	return nil
}
