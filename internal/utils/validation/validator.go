// Package validation holds small request-level validation helpers.
package validation

import (
	"fmt"
	"regexp"
)

var (
	currencyRegex = regexp.MustCompile(`^[A-Za-z]{2,10}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 \-]{7,18}$`)
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	Errors []ValidationError
}

func New() *Validator {
	return &Validator{
		Errors: make([]ValidationError, 0),
	}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// First returns the first error message, or "" when valid.
func (v *Validator) First() string {
	if len(v.Errors) == 0 {
		return ""
	}
	return v.Errors[0].Error()
}

func (v *Validator) CheckAmount(amount float64) {
	v.Check(amount > 0, "amount", "must be greater than 0")
}

func (v *Validator) CheckCurrency(symbol string) {
	v.Check(currencyRegex.MatchString(symbol), "currency", "must be a currency code")
}

func (v *Validator) CheckPhone(number string) {
	v.Check(phoneRegex.MatchString(number), "phone_number", "must be a phone number")
}
