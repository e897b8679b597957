package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/nikkilog/nikki/internal/model"
)

// ValidateEmail validates email format and length using Go's RFC 5322 parser.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321: local part max 64, domain max 255, total max 254 with @
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}

// ValidatePassword enforces minimum strength and the bcrypt length ceiling.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}

	// bcrypt silently truncates beyond 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "123456", "qwerty", "admin", "letmein",
		"welcome", "monkey", "dragon", "master", "sunshine",
	}
	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}

	return nil
}

// ValidateNickname validates the optional display name.
func ValidateNickname(nickname string) error {
	if len(strings.TrimSpace(nickname)) > 50 {
		return errors.New("nickname is too long (max 50 characters)")
	}
	return nil
}

// ValidateAgeGroup checks membership in the fixed bracket set.
func ValidateAgeGroup(ageGroup string) error {
	if ageGroup == "" {
		return errors.New("age group is required")
	}
	if !model.ValidAgeGroup(ageGroup) {
		return errors.New("invalid age group")
	}
	return nil
}

// Required rejects empty or whitespace-only values.
func Required(label string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// MaxLen rejects values longer than n bytes.
func MaxLen(label string, n int) func(string) error {
	return func(v string) error {
		if len(v) > n {
			return fmt.Errorf("%s is too long (max %d characters)", label, n)
		}
		return nil
	}
}
