// Package mobilemoney normalizes per-country, per-operator mobile
// money configuration behind one request/response contract. Provider
// declines come back as failed results; only malformed or unsupported
// provider configuration is an error.
package mobilemoney

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainerrors "easyrent/internal/errors"

	"github.com/google/uuid"
)

// DefaultCallTimeout bounds one operator API call.
const DefaultCallTimeout = 30 * time.Second

// Service is the gateway adapter over the provider registry.
type Service struct {
	providers map[string]Provider
	client    OperatorClient
	timeout   time.Duration
}

// NewService creates the adapter with the built-in registry.
func NewService(client OperatorClient) *Service {
	if client == nil {
		panic("operator client is required")
	}
	providers := make(map[string]Provider, len(defaultProviders))
	for _, p := range defaultProviders {
		providers[p.ID] = p
	}
	return &Service{
		providers: providers,
		client:    client,
		timeout:   DefaultCallTimeout,
	}
}

// Provider returns the configuration for providerID.
func (s *Service) Provider(providerID string) (Provider, error) {
	p, ok := s.providers[providerID]
	if !ok {
		return Provider{}, domainerrors.ErrUnknownProvider.WithDetail("%q", providerID)
	}
	return p, nil
}

// ProvidersForCountry lists configured operators for a country code.
func (s *Service) ProvidersForCountry(countryCode string) []Provider {
	var out []Provider
	for _, p := range defaultProviders {
		if p.CountryCode == strings.ToUpper(countryCode) {
			out = append(out, p)
		}
	}
	return out
}

// ValidatePhoneNumber strips non-digits, checks the country's length
// rule and prefix-matches the most likely operator. Format validity
// only; it does not prove the number is live.
func (s *Service) ValidatePhoneNumber(number, countryCode string) PhoneValidation {
	digits := stripNonDigits(number)
	countryCode = strings.ToUpper(countryCode)

	expected, ok := countryPhoneLengths[countryCode]
	if !ok {
		return PhoneValidation{IsValid: false, Error: fmt.Sprintf("unsupported country %q", countryCode)}
	}
	if len(digits) != expected {
		return PhoneValidation{
			IsValid: false,
			Error:   fmt.Sprintf("expected %d digits for %s, got %d", expected, countryCode, len(digits)),
		}
	}

	validation := PhoneValidation{IsValid: true, FormattedNumber: digits}
	best := 0
	for _, p := range defaultProviders {
		if p.CountryCode != countryCode {
			continue
		}
		for _, prefix := range p.PhonePrefixes {
			if strings.HasPrefix(digits, prefix) && len(prefix) > best {
				best = len(prefix)
				validation.SuggestedProviderID = p.ID
			}
		}
	}
	return validation
}

// CalculateFees applies the provider's percentage fee clamped to its
// [minimum, maximum] band.
func (s *Service) CalculateFees(providerID, operationType string, amount float64) (float64, error) {
	p, err := s.Provider(providerID)
	if err != nil {
		return 0, err
	}
	fee := amount * p.FeePercent / 100
	if fee < p.FeeMinimum {
		fee = p.FeeMinimum
	}
	if fee > p.FeeMaximum {
		fee = p.FeeMaximum
	}
	return fee, nil
}

// ValidateTransactionLimits checks the four independent limit rules;
// the first failing one is reported.
func (s *Service) ValidateTransactionLimits(providerID string, amount, userDailyVolume, userMonthlyVolume float64) (LimitCheck, error) {
	p, err := s.Provider(providerID)
	if err != nil {
		return LimitCheck{}, err
	}

	switch {
	case amount < p.MinAmount:
		return LimitCheck{Error: fmt.Sprintf("amount below provider minimum %.0f %s", p.MinAmount, p.Currency)}, nil
	case amount > p.MaxAmount:
		return LimitCheck{Error: fmt.Sprintf("amount above provider maximum %.0f %s", p.MaxAmount, p.Currency)}, nil
	case userDailyVolume+amount > p.DailyLimit:
		return LimitCheck{Error: fmt.Sprintf("daily provider limit %.0f %s exceeded", p.DailyLimit, p.Currency)}, nil
	case userMonthlyVolume+amount > p.MonthlyLimit:
		return LimitCheck{Error: fmt.Sprintf("monthly provider limit %.0f %s exceeded", p.MonthlyLimit, p.Currency)}, nil
	}
	return LimitCheck{IsValid: true}, nil
}

// ProcessTransaction dispatches to the operator API. Network and
// timeout failures surface as failed results, never as errors; the
// reference is unique per call.
func (s *Service) ProcessTransaction(ctx context.Context, req Request) (*Result, error) {
	p, err := s.Provider(req.ProviderID)
	if err != nil {
		return nil, err
	}

	if req.Reference == "" {
		req.Reference = fmt.Sprintf("MM-%s-%s", strings.ToUpper(p.CountryCode), uuid.NewString())
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Dispatch(callCtx, p, req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timeout"
		}
		return &Result{
			Success:     false,
			Reference:   req.Reference,
			Status:      StatusFailed,
			Error:       msg,
			ProcessedAt: time.Now().UTC(),
		}, nil
	}
	if res.Reference == "" {
		res.Reference = req.Reference
	}
	return res, nil
}

// GetTransactionStatus polls the operator for a dispatched reference.
func (s *Service) GetTransactionStatus(ctx context.Context, providerID, reference string) (string, error) {
	p, err := s.Provider(providerID)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.client.GetStatus(callCtx, p, reference)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
