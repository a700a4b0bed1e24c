// Package risk scores proposed transactions against historical
// activity and payment-method risk. Scoring is additive, not
// predictive; a separate hard-limit gate rejects before scoring.
package risk

import (
	"fmt"
	"time"

	"easyrent/internal/errors"
	"easyrent/internal/models"
)

// Score thresholds
const (
	reviewThreshold = 60
	blockThreshold  = 80
	highThreshold   = 60
	mediumThreshold = 30
)

// methodBaseRisk holds the per-rail base score deltas. Types outside
// this map score as unknown.
var methodBaseRisk = map[string]int{
	models.PaymentMethodInternal:     0,
	models.PaymentMethodMobileMoney:  5,
	models.PaymentMethodBankTransfer: 5,
	models.PaymentMethodCryptoWallet: 10,
	models.PaymentMethodPayPal:       12,
	models.PaymentMethodBankCard:     15,
	models.PaymentMethodStripe:       15,
}

const unknownMethodRisk = 20

// Evaluator scores transactions and enforces hard limits.
type Evaluator struct {
	limits   Limits
	isCrypto func(symbol string) bool
}

// NewEvaluator creates a risk evaluator. isCrypto reports whether a
// currency symbol is a recognized crypto.
func NewEvaluator(limits Limits, isCrypto func(string) bool) *Evaluator {
	if isCrypto == nil {
		panic("isCrypto is required")
	}
	if limits.MinAmount == 0 {
		limits.MinAmount = DefaultMinAmount
	}
	if limits.MaxAmount == 0 {
		limits.MaxAmount = DefaultMaxAmount
	}
	if limits.UnverifiedMaxAmount == 0 {
		limits.UnverifiedMaxAmount = DefaultUnverifiedMaxAmount
	}
	return &Evaluator{limits: limits, isCrypto: isCrypto}
}

// CheckHardLimits is the binary gate, independent of the additive
// score. It runs before any ledger write.
func (e *Evaluator) CheckHardLimits(amount float64, isVerified bool) error {
	if amount < e.limits.MinAmount {
		return errors.ErrInvalidAmount.WithDetail("amount below minimum %.2f", e.limits.MinAmount)
	}
	if amount > e.limits.MaxAmount {
		return errors.ErrLimitExceeded.WithDetail("amount above maximum %.2f", e.limits.MaxAmount)
	}
	if !isVerified && amount > e.limits.UnverifiedMaxAmount {
		return errors.ErrLimitExceeded.WithDetail("unverified accounts are limited to %.2f", e.limits.UnverifiedMaxAmount)
	}
	return nil
}

// Evaluate computes the additive risk score for one proposed
// transaction.
func (e *Evaluator) Evaluate(in Input) Assessment {
	score := 0
	var factors []string

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	// Amount vs. historical average for the same currency.
	if avg := e.historicalAverage(in.History, in.Currency); avg > 0 && in.Amount > 3*avg {
		score += 25
		factors = append(factors, fmt.Sprintf("amount %.2f exceeds 3x average %.2f", in.Amount, avg))
	}

	// Velocity in the trailing hour.
	if recent := countSince(in.History, now.Add(-time.Hour)); recent > 3 {
		score += 20
		factors = append(factors, fmt.Sprintf("%d transactions in the last hour", recent))
	}

	// New user.
	if in.TotalTransactions < 5 {
		score += 15
		factors = append(factors, "fewer than 5 historical transactions")
	}

	// Payment-method base risk.
	base, known := methodBaseRisk[in.PaymentMethodType]
	if !known {
		base = unknownMethodRisk
		factors = append(factors, fmt.Sprintf("unknown payment method %q", in.PaymentMethodType))
	} else if base > 0 {
		factors = append(factors, fmt.Sprintf("payment method %s base risk", in.PaymentMethodType))
	}
	score += base

	// Night-time activity, local clock.
	if hour := now.Hour(); hour < 6 || hour >= 23 {
		score += 10
		factors = append(factors, "initiated outside 06:00-23:00")
	}

	// Crypto currency.
	if e.isCrypto(in.Currency) {
		score += 5
		factors = append(factors, "crypto currency")
	}

	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:        score,
		Level:        levelFor(score),
		ShouldBlock:  score >= blockThreshold,
		ShouldReview: score >= reviewThreshold,
		Factors:      factors,
	}
}

func levelFor(score int) string {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (e *Evaluator) historicalAverage(history []models.WalletTransaction, currency string) float64 {
	var sum float64
	var n int
	for i := range history {
		if history[i].Currency == currency {
			sum += history[i].Amount
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func countSince(history []models.WalletTransaction, since time.Time) int {
	n := 0
	for i := range history {
		if history[i].CreatedAt.After(since) {
			n++
		}
	}
	return n
}
