package ledger

import "errors"

// Service errors
var (
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrConcurrentModification  = errors.New("wallet modified concurrently, retries exhausted")
	ErrNegativeBalance         = errors.New("operation would drive balance negative")
)
