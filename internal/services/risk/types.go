package risk

import (
	"time"

	"easyrent/internal/models"
)

// Risk levels
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Input carries everything the evaluator needs. The evaluator is pure
// computation over this snapshot; it performs no I/O.
type Input struct {
	UserID            uint
	Amount            float64
	Currency          string
	PaymentMethodType string
	History           []models.WalletTransaction
	TotalTransactions int64
	IsVerified        bool
	Now               time.Time
}

// Assessment is the scored outcome.
type Assessment struct {
	Score        int      `json:"score"`
	Level        string   `json:"level"`
	ShouldBlock  bool     `json:"shouldBlock"`
	ShouldReview bool     `json:"shouldReview"`
	Factors      []string `json:"factors"`
}

// Limits configures the hard-limit gate. The gate rejects outright;
// it is independent of the additive score.
type Limits struct {
	MinAmount           float64
	MaxAmount           float64
	UnverifiedMaxAmount float64
}
