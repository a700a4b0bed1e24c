package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletBlocked = &DomainError{
		Code:    "WALLET_BLOCKED",
		Message: "wallet is blocked",
	}
	ErrUnknownCurrency = &DomainError{
		Code:    "UNKNOWN_CURRENCY",
		Message: "unknown currency",
	}
	ErrNoPaymentMethod = &DomainError{
		Code:    "NO_PAYMENT_METHOD",
		Message: "no payment method available",
	}
	ErrLimitExceeded = &DomainError{
		Code:    "LIMIT_EXCEEDED",
		Message: "transaction limit exceeded",
	}
	ErrRiskBlocked = &DomainError{
		Code:    "RISK_BLOCKED",
		Message: "transaction blocked by risk policy",
	}
	ErrRateUnavailable = &DomainError{
		Code:    "RATE_UNAVAILABLE",
		Message: "exchange rate unavailable",
	}
	ErrGateway = &DomainError{
		Code:    "GATEWAY_ERROR",
		Message: "payment gateway error",
	}
	ErrInvalidPhoneNumber = &DomainError{
		Code:    "INVALID_PHONE_NUMBER",
		Message: "invalid phone number",
	}
	ErrUnknownProvider = &DomainError{
		Code:    "UNKNOWN_PROVIDER",
		Message: "unknown mobile money provider",
	}
)
