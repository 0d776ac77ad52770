package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated rejects a write attempted without a signed-in session.
	ErrUnauthenticated = errors.New("authentication required")
	ErrReportNotFound  = errors.New("report not found")
)

// Messages shown to a signed-out user who tries to submit a form.
const (
	MsgLoginToBook     = "Please login first to book a test"
	MsgLoginToFeedback = "Please login first to submit feedback"
)

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
