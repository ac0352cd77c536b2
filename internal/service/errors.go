package service

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers map them onto HTTP statuses with errors.Is.
var (
	ErrExamNotFound           = errors.New("exam not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrCodingQuestionNotFound = errors.New("exam has no coding question")
	ErrCheatingLogNotFound    = errors.New("cheating log not found")
	ErrForbidden              = errors.New("forbidden")
	ErrValidation             = errors.New("validation failed")
	ErrStorage                = errors.New("storage failure")
)

// storageErr wraps a store failure so callers can match both ErrStorage and
// the underlying cause.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
