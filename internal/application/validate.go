package application

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^[+\d\s\-()]+$`)
	urlPattern      = regexp.MustCompile(`^https?://\S+$`)
	linkedinPattern = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/[A-Za-z0-9_-]+/?$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// PhoneMinDigits is the least number of digits a phone number must contain.
const PhoneMinDigits = 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	rules := map[string]validator.Func{
		"notblank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"appemail": func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		},
		"phone": func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			if !phonePattern.MatchString(s) {
				return false
			}
			digits := 0
			for _, r := range s {
				if r >= '0' && r <= '9' {
					digits++
				}
			}
			return digits >= PhoneMinDigits
		},
		"httpurl": func(fl validator.FieldLevel) bool {
			return urlPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		},
		"linkedin": func(fl validator.FieldLevel) bool {
			return linkedinPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		},
		"digits": func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		},
		"stipend": func(fl validator.FieldLevel) bool {
			n, err := strconv.ParseInt(fl.Field().String(), 10, 64)
			return err == nil && n >= 0 && n < StipendCeiling
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}
	return v
}

// ValidateField checks a single value against f's rules and returns a human readable
// message, or "" when the value is valid.
func ValidateField(f Field, value string, multi []string) string {
	if f.Rules == "" {
		return ""
	}

	var err error
	if f.Multi() {
		if multi == nil {
			multi = []string{}
		}
		err = validate.Var(multi, f.Rules)
	} else {
		err = validate.Var(value, f.Rules)
	}
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("%s is invalid", f.Label)
	}
	return message(f, verrs[0])
}

func message(f Field, fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return fmt.Sprintf("%s is required", f.Label)
	case "appemail":
		return "Please enter a valid email address"
	case "phone":
		return fmt.Sprintf("Please enter a valid phone number with at least %d digits", PhoneMinDigits)
	case "httpurl":
		return fmt.Sprintf("%s must start with http:// or https://", f.Label)
	case "linkedin":
		return "Please enter a valid LinkedIn profile URL (https://linkedin.com/in/your-name)"
	case "min":
		if f.Multi() {
			return fmt.Sprintf("Select at least %s option for %s", fe.Param(), f.Label)
		}
		return fmt.Sprintf("%s must be at least %s characters", f.Label, fe.Param())
	case "digits":
		return fmt.Sprintf("%s must be a whole number", f.Label)
	case "stipend":
		return fmt.Sprintf("%s must be below %d", f.Label, StipendCeiling)
	case "oneof":
		return fmt.Sprintf("Please select a valid option for %s", f.Label)
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", f.Label)
	default:
		return fmt.Sprintf("%s is invalid", f.Label)
	}
}
