// Package routes defines the API routing configuration. It wires the
// repositories, services and handlers together and groups routes by
// functionality.
package routes

import (
	"easyrent/internal/config"
	"easyrent/internal/handlers"
	"easyrent/internal/models"
	"easyrent/internal/repositories"
	"easyrent/internal/services/gateway"
	"easyrent/internal/services/ledger"
	"easyrent/internal/services/mobilemoney"
	"easyrent/internal/services/notification"
	"easyrent/internal/services/payment"
	"easyrent/internal/services/rates"
	"easyrent/internal/services/risk"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	walletRepo := repositories.NewWalletRepository(db)

	converter := rates.NewService(
		newRateProvider(),
		repositories.CacheService,
		rates.Config{},
	)

	ledgerService := ledger.NewService(
		walletRepo,
		repositories.CacheService,
		converter,
		ledger.Config{
			BaseCurrency:        config.GetEnv("BASE_CURRENCY", ledger.DefaultBaseCurrency),
			MaxDailyLimit:       config.GetFloatEnv("WALLET_MAX_DAILY_LIMIT", ledger.DefaultMaxDailyLimit),
			MaxTransactionLimit: config.GetFloatEnv("WALLET_MAX_TX_LIMIT", ledger.DefaultMaxTransactionLimit),
		},
		&ledger.NoopMetricsCollector{},
	)

	evaluator := risk.NewEvaluator(risk.Limits{
		MinAmount:           config.GetFloatEnv("RISK_MIN_AMOUNT", risk.DefaultMinAmount),
		MaxAmount:           config.GetFloatEnv("RISK_MAX_AMOUNT", risk.DefaultMaxAmount),
		UnverifiedMaxAmount: config.GetFloatEnv("RISK_UNVERIFIED_MAX_AMOUNT", risk.DefaultUnverifiedMaxAmount),
	}, converter.IsCrypto)

	mobile := mobilemoney.NewService(&mobilemoney.SandboxClient{})

	paymentService := payment.NewService(
		ledgerService,
		walletRepo,
		converter,
		evaluator,
		mobile,
		newGatewayClients(),
		notification.NewLogSink(),
		&ledger.NoopMetricsCollector{},
		payment.Config{
			BaseCurrency:    config.GetEnv("BASE_CURRENCY", ledger.DefaultBaseCurrency),
			DefaultSlippage: config.GetFloatEnv("EXCHANGE_SLIPPAGE", payment.DefaultSlippage),
		},
	)

	walletHandler := handlers.NewWalletHandler(ledgerService, mobile)
	paymentHandler := handlers.NewPaymentHandler(paymentService, mobile)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to EasyRent Payments API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	wallet := api.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/balance", walletHandler.GetTotalBalance)
	wallet.Get("/transactions", walletHandler.GetTransactions)
	wallet.Get("/transactions/:id", walletHandler.GetTransaction)
	wallet.Post("/payment-methods", walletHandler.AddPaymentMethod)
	wallet.Put("/payment-methods/:id/default", walletHandler.SetDefaultPaymentMethod)
	wallet.Post("/mobile-money-accounts", walletHandler.AddMobileMoneyAccount)
	wallet.Post("/stats/refresh", walletHandler.RefreshStats)

	payments := api.Group("/payment")
	payments.Post("/", paymentHandler.ProcessPayment)
	payments.Post("/confirm", paymentHandler.ConfirmMobileMoney)
	payments.Post("/crypto/confirm", paymentHandler.ConfirmCrypto)
	payments.Post("/send", paymentHandler.SendMoney)
	payments.Post("/exchange", paymentHandler.Exchange)

	mm := api.Group("/mobile-money")
	mm.Get("/providers", paymentHandler.ListMobileMoneyProviders)
	mm.Post("/validate-phone", paymentHandler.ValidatePhoneNumber)

	// operational endpoint, meant to be called by a scheduler
	api.Post("/admin/reconcile", paymentHandler.Reconcile)
}

// newRateProvider selects the market data source: the real API when a
// base URL is configured, static rates otherwise.
func newRateProvider() rates.RateProvider {
	if baseURL := config.GetEnv("MARKET_DATA_URL", ""); baseURL != "" {
		return rates.NewMarketDataClient(baseURL)
	}
	return rates.NewStaticProvider()
}

// newGatewayClients builds the external rail clients. Rails without
// credentials fall back to the sandbox outside production.
func newGatewayClients() map[string]gateway.Client {
	clients := make(map[string]gateway.Client)

	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		stripeClient := gateway.NewStripeClient(key, config.GetEnv("STRIPE_REDIRECT_URL", ""))
		clients[models.PaymentMethodBankCard] = stripeClient
		clients[models.PaymentMethodStripe] = stripeClient
	}
	if clientID := config.GetEnv("PAYPAL_CLIENT_ID", ""); clientID != "" {
		clients[models.PaymentMethodPayPal] = gateway.NewPayPalClient(
			config.GetEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
			clientID,
			config.GetEnv("PAYPAL_CLIENT_SECRET", ""),
		)
	}

	if !config.IsProduction() {
		if _, ok := clients[models.PaymentMethodBankCard]; !ok {
			sandbox := &gateway.SandboxClient{Prefix: "card"}
			clients[models.PaymentMethodBankCard] = sandbox
			clients[models.PaymentMethodStripe] = sandbox
		}
		if _, ok := clients[models.PaymentMethodPayPal]; !ok {
			clients[models.PaymentMethodPayPal] = &gateway.SandboxClient{Prefix: "pp"}
		}
	}
	return clients
}
