// File: /utils/errors.go
package utils

import "fmt"

// Application error kinds. Services return these; controllers map them to
// HTTP status codes in one place (SendAppError).
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindConflict
	KindValidation
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
func IsValidation(err error) bool { return isKind(err, KindValidation) }

func isKind(err error, kind ErrorKind) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Kind == kind
}
