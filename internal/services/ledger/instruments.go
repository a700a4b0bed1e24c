package ledger

import (
	"context"
	"time"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"

	"github.com/google/uuid"
)

// RegisterPaymentMethod attaches a payment method to the wallet. A
// method marked default unsets the previous default; the wallet keeps
// at most one.
func (s *service) RegisterPaymentMethod(ctx context.Context, userID uint, method models.PaymentMethod) error {
	if !models.IsValidPaymentMethodType(method.Type) {
		return domainerrors.ErrNoPaymentMethod.WithDetail("unsupported type %q", method.Type)
	}
	if method.ID == "" {
		method.ID = uuid.NewString()
	}
	method.IsActive = true
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Now().UTC()
	}

	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		if method.IsDefault {
			for i := range w.PaymentMethods {
				w.PaymentMethods[i].IsDefault = false
			}
		}
		w.PaymentMethods = append(w.PaymentMethods, method)
		return nil
	})
}

// SetDefaultPaymentMethod marks methodID as the wallet's default.
func (s *service) SetDefaultPaymentMethod(ctx context.Context, userID uint, methodID string) error {
	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		found := false
		for i := range w.PaymentMethods {
			if w.PaymentMethods[i].ID == methodID {
				if !w.PaymentMethods[i].IsActive {
					return domainerrors.ErrNoPaymentMethod.WithDetail("method %s is inactive", methodID)
				}
				found = true
			}
		}
		if !found {
			return domainerrors.ErrNoPaymentMethod.WithDetail("method %s not found", methodID)
		}
		for i := range w.PaymentMethods {
			w.PaymentMethods[i].IsDefault = w.PaymentMethods[i].ID == methodID
		}
		return nil
	})
}

// RegisterMobileMoneyAccount stores a provider-validated mobile money
// account on the wallet.
func (s *service) RegisterMobileMoneyAccount(ctx context.Context, userID uint, account models.MobileMoneyAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	return s.mutateWallet(ctx, userID, func(w *models.Wallet) error {
		for i := range w.MobileMoneyAccounts {
			if w.MobileMoneyAccounts[i].ProviderID == account.ProviderID {
				// One account per provider; re-registration replaces it.
				w.MobileMoneyAccounts[i] = account
				return nil
			}
		}
		w.MobileMoneyAccounts = append(w.MobileMoneyAccounts, account)
		return nil
	})
}
