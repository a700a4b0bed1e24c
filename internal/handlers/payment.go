package handlers

import (
	"strconv"
	"strings"

	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/services/payment"
	"easyrent/internal/utils/response"
	"easyrent/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	payments payment.Service
	mobile   *mobilemoney.Service
}

func NewPaymentHandler(payments payment.Service, mobile *mobilemoney.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments, mobile: mobile}
}

func (h *PaymentHandler) ProcessPayment(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req payment.Request
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	req.UserID = userID

	v := validation.New()
	v.CheckAmount(req.Amount)
	v.CheckCurrency(req.Currency)
	if req.PhoneNumber != "" {
		v.CheckPhone(req.PhoneNumber)
	}
	if !v.Valid() {
		return response.BadRequest(c, v.First())
	}

	resp, err := h.payments.ProcessPayment(c.Context(), req)
	if err != nil {
		return response.ServerError(c, "payment processing failed")
	}
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) ConfirmMobileMoney(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		TransactionID    string `json:"transaction_id"`
		ConfirmationCode string `json:"confirmation_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if input.TransactionID == "" || input.ConfirmationCode == "" {
		return response.BadRequest(c, "transaction_id and confirmation_code are required")
	}

	resp, err := h.payments.ConfirmMobileMoneyPayment(c.Context(), userID, input.TransactionID, input.ConfirmationCode)
	if err != nil {
		return response.ServerError(c, "confirmation failed")
	}
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) ConfirmCrypto(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		TransactionID string `json:"transaction_id"`
		TxHash        string `json:"tx_hash"`
		Confirmations int    `json:"confirmations"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if input.TransactionID == "" || input.TxHash == "" {
		return response.BadRequest(c, "transaction_id and tx_hash are required")
	}

	resp, err := h.payments.ConfirmCryptoPayment(c.Context(), userID, input.TransactionID, input.TxHash, input.Confirmations)
	if err != nil {
		return response.ServerError(c, "confirmation failed")
	}
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) SendMoney(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req payment.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	req.FromUserID = userID

	v := validation.New()
	v.CheckAmount(req.Amount)
	v.CheckCurrency(req.Currency)
	v.Check(req.ToUserID != 0, "to_user_id", "is required")
	if !v.Valid() {
		return response.BadRequest(c, v.First())
	}

	resp, err := h.payments.Transfer(c.Context(), req)
	if err != nil {
		return response.ServerError(c, "transfer failed")
	}
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) Exchange(c *fiber.Ctx) error {
	userID, err := userIDFrom(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var req payment.ExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	req.UserID = userID

	v := validation.New()
	v.CheckAmount(req.Amount)
	v.CheckCurrency(req.FromCurrency)
	v.CheckCurrency(req.ToCurrency)
	if !v.Valid() {
		return response.BadRequest(c, v.First())
	}

	resp, err := h.payments.Exchange(c.Context(), req)
	if err != nil {
		return response.ServerError(c, "exchange failed")
	}
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *PaymentHandler) Reconcile(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	report, err := h.payments.ReconcilePending(c.Context(), limit)
	if err != nil {
		return response.ServerError(c, "reconciliation failed")
	}
	return response.Success(c, fiber.Map{"report": report})
}

func (h *PaymentHandler) ListMobileMoneyProviders(c *fiber.Ctx) error {
	country := strings.ToUpper(c.Query("country", ""))
	if country == "" {
		return response.BadRequest(c, "country query parameter is required")
	}
	providers := h.mobile.ProvidersForCountry(country)
	return response.Success(c, fiber.Map{
		"country":   country,
		"providers": providers,
	})
}

func (h *PaymentHandler) ValidatePhoneNumber(c *fiber.Ctx) error {
	var input struct {
		PhoneNumber string `json:"phone_number"`
		CountryCode string `json:"country_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	result := h.mobile.ValidatePhoneNumber(input.PhoneNumber, input.CountryCode)
	return response.Success(c, fiber.Map{"validation": result})
}
