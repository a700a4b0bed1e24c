package handlers

import (
	"errors"
	"strconv"
	"time"

	domainerrors "easyrent/internal/errors"
	"easyrent/internal/models"
	"easyrent/internal/repositories"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/utils/response"
	"easyrent/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledger ledger.Service
	mobile *mobilemoney.Service
}

func NewWalletHandler(ledgerSvc ledger.Service, mobile *mobilemoney.Service) *WalletHandler {
	return &WalletHandler{ledger: ledgerSvc, mobile: mobile}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	wallet, err := h.ledger.GetOrCreateWallet(c.Context(), userID)
	if err != nil {
		return response.ServerError(c, "failed to load wallet")
	}
	return response.Success(c, fiber.Map{"wallet": wallet})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := h.ledger.GetTransactions(c.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return response.Success(c, fiber.Map{"transactions": []models.WalletTransaction{}})
		}
		return response.ServerError(c, "failed to load transactions")
	}
	return response.Success(c, fiber.Map{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *WalletHandler) GetTransaction(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	tx, err := h.ledger.GetTransaction(c.Context(), c.Params("id"))
	if err != nil || tx.UserID != userID {
		return response.NotFound(c, "transaction not found")
	}
	return response.Success(c, fiber.Map{"transaction": tx})
}

func (h *WalletHandler) GetTotalBalance(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	currency := c.Query("currency", "")
	total, err := h.ledger.GetTotalBalance(c.Context(), userID, currency)
	if err != nil {
		var domainErr *domainerrors.DomainError
		if errors.As(err, &domainErr) {
			return response.BadRequest(c, domainErr.Error())
		}
		return response.ServerError(c, "failed to compute balance")
	}
	return response.Success(c, fiber.Map{
		"total":    total,
		"currency": currency,
	})
}

func (h *WalletHandler) AddPaymentMethod(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Type      string                 `json:"type"`
		Label     string                 `json:"label"`
		IsDefault bool                   `json:"is_default"`
		Details   map[string]interface{} `json:"details"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if !models.IsValidPaymentMethodType(input.Type) {
		return response.BadRequest(c, "unknown payment method type")
	}

	method := models.PaymentMethod{
		Type:      input.Type,
		Label:     input.Label,
		IsDefault: input.IsDefault,
		IsActive:  true,
		Details:   models.NewJSON(input.Details),
	}
	if err := h.ledger.RegisterPaymentMethod(c.Context(), userID, method); err != nil {
		return response.ServerError(c, "failed to register payment method")
	}
	return response.Success(c, fiber.Map{"message": "payment method registered"})
}

func (h *WalletHandler) SetDefaultPaymentMethod(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if err := h.ledger.SetDefaultPaymentMethod(c.Context(), userID, c.Params("id")); err != nil {
		var domainErr *domainerrors.DomainError
		if errors.As(err, &domainErr) {
			return response.BadRequest(c, domainErr.Error())
		}
		return response.ServerError(c, "failed to set default payment method")
	}
	return response.Success(c, fiber.Map{"message": "default payment method updated"})
}

func (h *WalletHandler) AddMobileMoneyAccount(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		ProviderID  string `json:"provider_id"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	v := validation.New()
	v.Check(input.ProviderID != "", "provider_id", "is required")
	v.CheckPhone(input.PhoneNumber)
	if !v.Valid() {
		return response.BadRequest(c, v.First())
	}

	provider, err := h.mobile.Provider(input.ProviderID)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	phone := h.mobile.ValidatePhoneNumber(input.PhoneNumber, provider.CountryCode)
	if !phone.IsValid {
		return response.BadRequest(c, phone.Error)
	}

	account := models.MobileMoneyAccount{
		ProviderID:  provider.ID,
		PhoneNumber: phone.FormattedNumber,
		CountryCode: provider.CountryCode,
		Currency:    provider.Currency,
		FeePercent:  provider.FeePercent,
		Limits: models.MobileMoneyLimits{
			Daily:   provider.DailyLimit,
			Monthly: provider.MonthlyLimit,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := h.ledger.RegisterMobileMoneyAccount(c.Context(), userID, account); err != nil {
		return response.ServerError(c, "failed to register mobile money account")
	}
	return response.Success(c, fiber.Map{"account": account})
}

func (h *WalletHandler) RefreshStats(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	if err := h.ledger.UpdateStats(c.Context(), userID); err != nil {
		return response.ServerError(c, "failed to refresh stats")
	}
	wallet, err := h.ledger.GetWallet(c.Context(), userID)
	if err != nil {
		return response.ServerError(c, "failed to load wallet")
	}
	return response.Success(c, fiber.Map{"stats": wallet.Stats})
}
