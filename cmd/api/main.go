package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/thigam/Nishukishe-Back-End-sub002/internal/app"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/clock"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/config"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/notify"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/observability"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/payment"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/render"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/storage/postgres"
	"github.com/thigam/Nishukishe-Back-End-sub002/internal/storage/redisstore"
	transporthttp "github.com/thigam/Nishukishe-Back-End-sub002/internal/transport/http"
	"github.com/thigam/Nishukishe-Back-End-sub002/migrations"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type notifier interface {
	app.Notifier
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.EnvFile != "" {
		logger.Info("loaded env", zap.String("path", cfg.EnvFile))
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(startupCtx, cfg.OTLPURL, version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	shutdownLogs, err := observability.SetupLogs(startupCtx, cfg.OTLPURL, version)
	if err != nil {
		return fmt.Errorf("setup log export: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownLogs(ctx); err != nil {
			logger.Warn("log export shutdown", zap.Error(err))
		}
	}()
	if cfg.OTLPURL != "" {
		logger = observability.WithLogExport(logger)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
	}
	pool, err := pgxpool.NewWithConfig(startupCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	applied, err := migrations.Apply(startupCtx, pool, logger)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations up to date", zap.Int("applied", len(applied)))

	clk := clock.NewSystem()

	holdOpts := []app.HoldServiceOption{
		app.WithHoldTTL(cfg.HoldTTL),
		app.WithHoldLogger(logger.Named("holds")),
	}
	if cfg.RedisAddr != "" {
		client, err := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, hold mirror disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer client.Close()
			holdOpts = append(holdOpts, app.WithHoldMirror(redisstore.NewHoldMirror(client)))
			logger.Info("hold mirror enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	sender, err := newNotifier(cfg.Notify, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sender.Close(); err != nil {
			logger.Warn("close notifier", zap.Error(err))
		}
	}()

	ledger := app.NewLedger(postgres.NewInventoryRepository(pool), clk)
	holdSvc := app.NewHoldService(postgres.NewHoldRepository(pool), ledger, clk, holdOpts...)
	checkoutSvc := app.NewCheckoutService(
		postgres.NewCheckoutRepository(pool), ledger, holdSvc, newPaymentRouter(cfg.Payment, logger), clk,
		app.WithNotifier(sender),
		app.WithCheckoutLogger(logger.Named("checkout")),
	)
	purchaseRepo := postgres.NewPurchaseRepository(pool)

	handler := transporthttp.NewRouter(transporthttp.Services{
		Checkout: checkoutSvc,
		Holds:    holdSvc,
		Tickets:  app.NewTicketService(purchaseRepo, render.NewTextRenderer()),
		Refunds:  app.NewRefundService(purchaseRepo, clk, app.WithRefundRate(cfg.RefundRate)),
		Payments: app.NewPaymentCallbackService(purchaseRepo, clk, app.WithCallbackVerifier(newWebhooks(cfg.Payment))),
		Catalog:  app.NewCatalogService(postgres.NewCatalogRepository(pool), clk),
		DB:       pool,
	}, transporthttp.RouterConfig{
		ServiceName: observability.ServiceName,
		CORSOrigins: cfg.CORSOrigins,
		AdminToken:  cfg.AdminToken,
		Logger:      logger.Named("http"),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("api listening", zap.String("port", cfg.Port), zap.String("version", version))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
	return nil
}

func newNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notifier, error) {
	switch cfg.Transport {
	case "rabbitmq":
		s, err := notify.DialRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, err
		}
		logger.Info("publishing purchase events to rabbitmq", zap.String("exchange", cfg.RabbitMQExchange))
		return s, nil
	case "kafka":
		logger.Info("publishing purchase events to kafka", zap.String("topic", cfg.KafkaTopic))
		return notify.NewKafkaSender(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)), nil
	default:
		return notify.NewLogSender(logger.Named("notify")), nil
	}
}

// newPaymentRouter registers every provider that has credentials. Manual
// payment is always available.
func newPaymentRouter(cfg config.PaymentConfig, logger *zap.Logger) *payment.Router {
	hc := &http.Client{Timeout: cfg.Timeout}

	providers := []payment.Provider{{
		Name:    "manual",
		Family:  payment.FamilyManual,
		Adapter: payment.NewManualAdapter(cfg.ManualInstructions),
	}}
	if cfg.MpesaBaseURL != "" {
		providers = append(providers, payment.Provider{
			Name:    "mpesa",
			Family:  payment.FamilyMobileMoney,
			Adapter: payment.NewMobileMoneyAdapter(cfg.MpesaBaseURL, cfg.MpesaAPIKey, hc),
		})
	}
	if cfg.PaystackSecretKey != "" {
		providers = append(providers, payment.Provider{
			Name:    "paystack",
			Family:  payment.FamilyCheckoutPage,
			Adapter: payment.NewCheckoutPageAdapter(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.PaystackCallbackURL, hc),
		})
	}
	if cfg.StripeSecretKey != "" {
		providers = append(providers, payment.Provider{
			Name:    "stripe",
			Family:  payment.FamilyCard,
			Adapter: payment.NewStripeAdapter(cfg.StripeSecretKey),
		})
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	logger.Info("payment providers registered", zap.Strings("providers", names), zap.String("default", cfg.DefaultProvider))

	return payment.NewRouter(payment.Config{
		DefaultProvider: cfg.DefaultProvider,
		Enabled:         cfg.EnabledProviders,
	}, providers...)
}

// newWebhooks registers a signed callback for every provider that has a
// verification secret. Manual payments have none and settle only through
// the admin route.
func newWebhooks(cfg config.PaymentConfig) payment.Webhooks {
	hooks := payment.Webhooks{}
	if cfg.MpesaCallbackSecret != "" {
		hooks["mpesa"] = payment.NewMobileMoneyWebhook(cfg.MpesaCallbackSecret)
	}
	if cfg.PaystackSecretKey != "" {
		hooks["paystack"] = payment.NewCheckoutPageWebhook(cfg.PaystackSecretKey)
	}
	if cfg.StripeWebhookSecret != "" {
		hooks["stripe"] = payment.NewStripeWebhook(cfg.StripeWebhookSecret)
	}
	return hooks
}
