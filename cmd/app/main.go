// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-reseller/internal/config"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/infra/api"
	"whatsapp-reseller/internal/infra/api/apiv1"
	pg "whatsapp-reseller/internal/infra/db/postgres"
	"whatsapp-reseller/internal/infra/email"
	"whatsapp-reseller/internal/infra/logging"
	"whatsapp-reseller/internal/infra/metrics"
	"whatsapp-reseller/internal/infra/notify"
	"whatsapp-reseller/internal/infra/payment"
	red "whatsapp-reseller/internal/infra/redis"
	"whatsapp-reseller/internal/infra/sched"
	"whatsapp-reseller/internal/infra/telegram"
	"whatsapp-reseller/internal/infra/worker"
	"whatsapp-reseller/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop defaults)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)
	replayGuard := red.NewReplayGuard(redisClient, cfg.Redis.ReplayTTL)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	transactionRepo := pg.NewTransactionRepo(pool)
	voucherRepo := pg.NewVoucherRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	customerRepo := pg.NewCustomerRepo(pool)
	outboxRepo := pg.NewOutboxRepo(pool)
	packageRepo := pg.NewPackageRepoCacheDecorator(pg.NewPackageRepo(pool), redisClient, cfg.Redis.TTL, logger)

	// ---- Payment gateway ----
	gateway, err := payment.NewGateway(cfg.Payment.Gateway)
	if err != nil {
		logger.Fatal().Err(err).Msg("payment gateway")
	}
	logger.Info().Str("provider", gateway.Name()).Msg("payment gateway ready")

	// ---- Notifications ----
	var channels []adapter.Notifier
	if cfg.Notify.Brevo.APIKey != "" {
		brevo, err := email.NewBrevoNotifier(cfg.Notify.Brevo)
		if err != nil {
			logger.Fatal().Err(err).Msg("brevo")
		}
		channels = append(channels, brevo)
	}
	if cfg.Notify.Telegram.Token != "" {
		tg, err := telegram.NewAdminNotifier(cfg.Notify.Telegram, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		channels = append(channels, tg)
	}
	var notifier adapter.Notifier = notify.Noop{}
	if len(channels) > 0 {
		notifier = notify.NewMulti(logger, channels...)
	} else {
		logger.Warn().Msg("no notification channel configured; payment notices are dropped")
	}

	// ---- Worker pool ----
	workers := worker.NewPool(cfg.Outbox.Workers, logger)
	workers.Start(ctx)

	// ---- Use cases ----
	activationUC := usecase.NewActivationUseCase(transactionRepo, packageRepo, purchaseRepo, voucherRepo, txManager, logger)
	dispatcher := usecase.NewActivationDispatcher(
		outboxRepo, paymentRepo, transactionRepo, customerRepo,
		activationUC, notifier, workers,
		usecase.DispatchSettings{MaxAttempts: cfg.Outbox.MaxAttempts, RetryBackoff: cfg.Outbox.RetryBackoff},
		logger,
	)
	callbackUC := usecase.NewCallbackUseCase(
		paymentRepo, transactionRepo, outboxRepo, txManager,
		gateway, replayGuard, dispatcher, cfg.Payment.OrderPrefix, logger,
	)
	voucherUC := usecase.NewVoucherUseCase(voucherRepo, packageRepo, logger)
	checkoutUC := usecase.NewCheckoutUseCase(
		customerRepo, packageRepo, transactionRepo, paymentRepo,
		voucherUC, gateway, txManager,
		usecase.CheckoutSettings{
			OrderPrefix:   cfg.Payment.OrderPrefix,
			Currency:      cfg.Payment.Currency,
			ServiceFee:    cfg.Payment.ServiceFee,
			CallbackURL:   cfg.Payment.Gateway.CallbackURL,
			ReturnURL:     cfg.Payment.Gateway.ReturnURL,
			ExpiryMinutes: cfg.Payment.Gateway.ExpiryPeriod,
		},
		logger,
	)
	reportUC := usecase.NewReportUseCase(purchaseRepo, packageRepo, logger)

	// ---- HTTP ----
	v1 := apiv1.NewServer(apiv1.Deps{
		Callbacks:   callbackUC,
		Vouchers:    voucherUC,
		Checkout:    checkoutUC,
		Reports:     reportUC,
		Auth:        apiv1.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Limiter:     rateLimiter,
		CheckLimit:  cfg.HTTP.VoucherCheckLimit,
		CheckWindow: cfg.HTTP.VoucherCheckWindow,
	}, logger)
	srv := api.NewHTTPServer(cfg.HTTP, api.NewRouter(v1, cfg.HTTP.RequestTimeout, logger))

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	// ---- Background jobs ----
	relay := sched.NewOutboxRelay(outboxRepo, dispatcher, locker, cfg.Outbox.RelayEvery, cfg.Outbox.StaleAfter, cfg.Outbox.BatchSize, logger)
	expirer := sched.NewPaymentExpirer(callbackUC, locker, cfg.Scheduler.ExpiryEvery, cfg.Payment.PendingTTL, 200, logger)
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("outbox relay stopped")
		}
	}()
	go func() {
		if err := expirer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("payment expirer stopped")
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	workers.Stop()
	if err := redisClient.Close(); err != nil {
		logger.Warn().Err(err).Msg("redis close")
	}
	logger.Info().Msg("bye")
}
