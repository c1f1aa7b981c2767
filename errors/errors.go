package errors

import "fmt"

// Validation failures are caller mistakes. They are detected before any
// store access, surfaced as 4xx and never retried.
var (
	ErrValidation      = fmt.Errorf("validation failed")
	ErrBlankSender     = fmt.Errorf("%w: sender id is required and must be a non-empty string", ErrValidation)
	ErrBlankRecipient  = fmt.Errorf("%w: receiver id is required and must be a non-empty string", ErrValidation)
	ErrBlankContent    = fmt.Errorf("%w: message text is required and must be a non-empty string", ErrValidation)
	ErrSenderNotInPair = fmt.Errorf("%w: sender is not a conversation participant", ErrValidation)
	ErrInvalidPassword = fmt.Errorf("%w: password does not meet complexity rules", ErrValidation)
	ErrInvalidAvatar   = fmt.Errorf("%w: avatar payload is not an image", ErrValidation)
)

// ErrStorage wraps backing store faults. Surfaced as 5xx; the internal
// cause stays server-side.
var ErrStorage = fmt.Errorf("storage failure")

var (
	ErrUserAlreadyExists  = fmt.Errorf("user with email or username already exists")
	ErrUserNotFound       = fmt.Errorf("user does not exist")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)
