package auth

import "strings"

// PasswordMinLength is the shortest accepted password.
const PasswordMinLength = 6

// PasswordSpecialChars are the characters satisfying the special character requirement.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordRequirements is the password checklist. Each requirement is tracked on its own so
// clients can render live progress.
type PasswordRequirements struct {
	MinLength      bool `json:"minLength"`
	HasUppercase   bool `json:"hasUppercase"`
	HasLowercase   bool `json:"hasLowercase"`
	HasNumber      bool `json:"hasNumber"`
	HasSpecialChar bool `json:"hasSpecialChar"`
}

// Met reports whether every requirement holds.
func (r PasswordRequirements) Met() bool {
	return r.MinLength && r.HasUppercase && r.HasLowercase && r.HasNumber && r.HasSpecialChar
}

// CheckPassword evaluates password against each requirement.
func CheckPassword(password string) PasswordRequirements {
	r := PasswordRequirements{
		MinLength: len([]rune(password)) >= PasswordMinLength,
	}
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			r.HasUppercase = true
		case c >= 'a' && c <= 'z':
			r.HasLowercase = true
		case c >= '0' && c <= '9':
			r.HasNumber = true
		case strings.ContainsRune(PasswordSpecialChars, c):
			r.HasSpecialChar = true
		}
	}
	return r
}
