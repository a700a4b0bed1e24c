package payment

import "easyrent/internal/models"

// CalculateFees returns the platform fee for a given rail, in the
// same currency as amount. Mobile money fees are provider specific
// and computed by the adapter; the crypto network fee is denominated
// in the asset and added after conversion in priceFees.
func (s *service) CalculateFees(methodType string, amount float64, network string) float64 {
	switch methodType {
	case models.PaymentMethodInternal:
		return 0
	case models.PaymentMethodBankCard, models.PaymentMethodStripe:
		return amount*0.029 + 0.30
	case models.PaymentMethodPayPal:
		return amount*0.034 + 0.35
	case models.PaymentMethodCryptoWallet:
		return amount * 0.01
	case models.PaymentMethodBankTransfer:
		return amount * 0.01
	default:
		return 0
	}
}

func (s *service) networkFee(network string) float64 {
	if fee, ok := s.cfg.CryptoNetworkFees[network]; ok {
		return fee
	}
	return 0
}
