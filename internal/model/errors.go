package model

import "errors"

// Error kinds surfaced to callers.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrPersistence      = errors.New("persistence failure")
	ErrOperationFailed  = errors.New("operation failed")
)

var (
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrOTPNotRequested     = errors.New("otp was not requested for this number")
	ErrOTPExpired          = errors.New("otp expired")
	ErrOTPInvalid          = errors.New("otp is invalid")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrPhoneNotVerified    = errors.New("mobile number is not verified")
	ErrRecordingInProgress = errors.New("recording already in progress")
	ErrSessionInactive     = errors.New("emergency session is not active")
	ErrContactLimit        = errors.New("emergency contact limit reached")
	ErrNotAuthority        = errors.New("authority role required")
)

const defaultMessage = "Something went wrong. Please try again."

// UserError pairs an error kind with a short message fit for display.
type UserError struct {
	Kind    error
	Message string
	Err     error
}

// NewUserError creates a UserError of the given kind.
func NewUserError(kind error, message string, err error) *UserError {
	return &UserError{Kind: kind, Message: message, Err: err}
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Message returns the display message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return defaultMessage
}
