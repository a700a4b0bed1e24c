// Package notification exposes the fire-and-forget event sink. Sink
// failures are logged and counted, never propagated: a lost
// notification must not fail a payment.
package notification

import (
	"context"
	"log"
)

// Event types emitted by the payment engine.
const (
	EventPaymentCompleted = "payment_completed"
	EventPaymentPending   = "payment_pending"
	EventPaymentFailed    = "payment_failed"
	EventTransferSent     = "transfer_sent"
	EventTransferReceived = "transfer_received"
	EventExchangeDone     = "exchange_completed"
)

// Sink delivers one event to a user.
type Sink interface {
	Notify(ctx context.Context, userID uint, eventType string, payload map[string]interface{}) error
}

// LogSink is the default sink: it writes events to the process log.
type LogSink struct{}

// NewLogSink creates a logging notification sink.
func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Notify(ctx context.Context, userID uint, eventType string, payload map[string]interface{}) error {
	log.Printf("notify user %d: %s %v", userID, eventType, payload)
	return nil
}

var _ Sink = (*LogSink)(nil)
