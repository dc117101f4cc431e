package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// UsernameRegex validates account names
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// RoleNameRegex validates role names
	RoleNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

	// ExternalIDRegex validates platform account identifiers
	ExternalIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.@-]+$`)
)

// ValidateUsername validates username
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, - allowed)")
	}
	return nil
}

// ValidatePassword requires 8 to 128 characters with at least one letter and
// one digit.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateRoleName validates role name
func ValidateRoleName(name string) error {
	if name == "" {
		return fmt.Errorf("role name is required")
	}
	if len(name) > 32 {
		return fmt.Errorf("role name is too long (max 32 characters)")
	}
	if !RoleNameRegex.MatchString(name) {
		return fmt.Errorf("role name must be lowercase letters, digits, _ or -, starting with a letter")
	}
	return nil
}

// ValidateExternalID validates external platform account id
func ValidateExternalID(id string) error {
	if id == "" {
		return fmt.Errorf("external ID is required")
	}
	if len(id) > 64 {
		return fmt.Errorf("external ID is too long (max 64 characters)")
	}
	if !ExternalIDRegex.MatchString(id) {
		return fmt.Errorf("invalid external ID format")
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
