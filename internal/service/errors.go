package service

import "errors"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
)

// User-facing validation messages.
const (
	MsgTitleRequired    = "Title is required."
	MsgUsernameRequired = "Username is required."
	MsgPasswordRequired = "Password is required."
	MsgFileNotAllowed   = "File type not allowed."
)

// ValidationError is an input problem shown back to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// AsValidation extracts a ValidationError from err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
