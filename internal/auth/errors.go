package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned for an action not allowed in the current flow state.
	ErrInvalidTransition = errors.New("action not allowed in the current authentication step")
	// ErrRequestInFlight is returned while another request of the same flow is running.
	ErrRequestInFlight = errors.New("another authentication request is in progress")
	// ErrPasswordMismatch is returned when the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("passwords don't match")
	// ErrInvalidCode is returned when the verification code is not exactly 6 digits.
	ErrInvalidCode = errors.New("please enter the complete 6-digit verification code")
	// ErrBackendUnavailable wraps transport failures reaching the accounts backend.
	ErrBackendUnavailable = errors.New("unable to connect to the server")
)

// PasswordPolicyError reports the failed password checklist.
type PasswordPolicyError struct {
	Requirements PasswordRequirements
}

func (e *PasswordPolicyError) Error() string {
	return "password does not meet all requirements"
}

// RemoteError is a rejection reported by the accounts backend. Message is shown verbatim.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func remoteError(op, msg, fallback string) *RemoteError {
	if msg == "" {
		msg = fallback
	}
	return &RemoteError{Op: op, Message: msg}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}
