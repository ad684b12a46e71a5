package util

import (
	"errors"
	"fmt"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotEnrolled        = errors.New("student not enrolled in course")
	ErrQuizNotAvailable   = errors.New("quiz not published or not accessible")
	ErrDeadlinePassed     = errors.New("quiz deadline has passed")
	ErrAttemptsExceeded   = errors.New("maximum attempts exceeded")
	ErrAttemptConflict    = errors.New("concurrent attempt conflict, please retry")
	ErrScorerUnavailable  = errors.New("external scorer unavailable")
)

// ValidationError marks malformed or inconsistent input. Callers match it
// with errors.As (or IsValidation) to map it to a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
