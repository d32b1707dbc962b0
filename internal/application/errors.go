package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes reported to clients
const (
	CodeAuthRequired          = "AuthRequired"
	CodeFieldValidationFailed = "FieldValidationFailed"
	CodeSubmissionFailed      = "SubmissionFailed"
	CodeEmailDeliveryFailed   = "EmailDeliveryFailed"
)

var (
	// ErrAuthRequired is returned when submitting without a signed in session.
	ErrAuthRequired = errors.New("please log in to submit your application")
	// ErrSubmissionInFlight is returned when a submission of the same form is running.
	ErrSubmissionInFlight = errors.New("application submission already in progress")
	// ErrAlreadySubmitted is returned for edits or submissions after a successful submit.
	ErrAlreadySubmitted = errors.New("application already submitted")
	// ErrUnknownField is returned for a field name outside the form schema.
	ErrUnknownField = errors.New("unknown application field")
	// ErrWrongFieldKind is returned when setting a single value on a multi select field or the reverse.
	ErrWrongFieldKind = errors.New("value does not match field kind")
)

// FieldErrorMap maps field names to human readable messages.
type FieldErrorMap map[string]string

func (m FieldErrorMap) clone() FieldErrorMap {
	out := make(FieldErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names returns the failing field names, sorted.
func (m FieldErrorMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FieldValidationError reports fields rejected locally or by the intake service.
type FieldValidationError struct {
	Fields FieldErrorMap
	// Remote is true when the intake service rejected the fields.
	Remote bool
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("application has invalid fields: %s", strings.Join(e.Fields.Names(), ", "))
}

// SubmissionError is a transport or server failure of the intake call. The draft is kept so
// the submission can be retried.
type SubmissionError struct {
	Message string
	Err     error
}

// GenericSubmissionMessage is shown for retryable submission failures.
const GenericSubmissionMessage = "Failed to submit application. Please check your connection and try again."

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("submit application: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("submit application: %s", e.Message)
	default:
		return "submit application failed"
	}
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Retryable is always true.
func (e *SubmissionError) Retryable() bool { return true }

// EmailDeliveryError is a failed confirmation email. It never fails the submission.
type EmailDeliveryError struct {
	Err error
}

func (e *EmailDeliveryError) Error() string {
	return fmt.Sprintf("confirmation email not delivered: %v", e.Err)
}

func (e *EmailDeliveryError) Unwrap() error { return e.Err }

// Code returns the client facing error code of err, or "" when err is not a form error.
func Code(err error) string {
	var fve *FieldValidationError
	var se *SubmissionError
	var ede *EmailDeliveryError

	switch {
	case errors.Is(err, ErrAuthRequired):
		return CodeAuthRequired
	case errors.As(err, &fve):
		return CodeFieldValidationFailed
	case errors.As(err, &se):
		return CodeSubmissionFailed
	case errors.As(err, &ede):
		return CodeEmailDeliveryFailed
	default:
		return ""
	}
}
