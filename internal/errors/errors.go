// Package errors defines the domain error taxonomy shared across
// services. Business failures carry a stable machine-readable code;
// transport layers map codes to status responses.
package errors

import "fmt"

// DomainError is a caller-visible business failure.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// WithDetail returns a copy of e with extra context appended to the
// message. The code is preserved so callers can still match on it.
func (e *DomainError) WithDetail(format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...)),
	}
}

// Is lets errors.Is match two domain errors by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}
