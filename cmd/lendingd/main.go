package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Jonathan-321/congenial-eureka/internal/application/usecase"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/service"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/adapter"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/config"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/gateway/momo"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/messaging"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/notification"
	pgRepo "github.com/Jonathan-321/congenial-eureka/internal/infrastructure/persistence/postgres"
	"github.com/Jonathan-321/congenial-eureka/internal/infrastructure/scheduler"
	"github.com/Jonathan-321/congenial-eureka/internal/presentation/rest"
	"github.com/Jonathan-321/congenial-eureka/pkg/auth"
	"github.com/Jonathan-321/congenial-eureka/pkg/observability"
	pkgpostgres "github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting lendingd", "http_port", cfg.HTTPPort)

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	// Database.
	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(dbCfg.DSN(), "file://migrations"); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// Infrastructure adapters.
	txManager := pkgpostgres.NewTxManager(pool)
	loanRepo := pgRepo.NewLoanRepo(pool)
	productRepo := pgRepo.NewProductRepo(pool)
	installmentRepo := pgRepo.NewInstallmentRepo(pool)
	transactionRepo := pgRepo.NewTransactionRepo(pool)
	repaymentRepo := pgRepo.NewRepaymentRepo(pool)
	farmers := adapter.NewPostgresFarmerDirectory(pool)
	harvests := adapter.NewPostgresHarvestCalendar(pool)
	scorer := adapter.NewStubCreditScorer()

	publisher := messaging.NewKafkaEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.EventTopic, logger)
	defer publisher.Close()

	var notifier port.Notifier = notification.NoopNotifier{}
	if cfg.SMS.APIKey != "" {
		notifier = notification.NewSMSNotifier(notification.SMSConfig{
			BaseURL:  cfg.SMS.BaseURL,
			Username: cfg.SMS.Username,
			APIKey:   cfg.SMS.APIKey,
			SenderID: cfg.SMS.SenderID,
		}, nil, logger)
	} else {
		logger.Warn("no SMS provider configured, notifications are discarded")
	}

	gateway := momo.NewClient(momo.Config{
		BaseURL:         cfg.MoMo.BaseURL,
		Environment:     cfg.MoMo.Environment,
		APIUser:         cfg.MoMo.APIUser,
		APIKey:          cfg.MoMo.APIKey,
		DisbursementKey: cfg.MoMo.DisbursementKey,
		CollectionKey:   cfg.MoMo.CollectionKey,
	}, nil)

	// Use cases.
	reconcileUC := usecase.NewReconcileUseCase(
		txManager, loanRepo, productRepo, installmentRepo, transactionRepo,
		repaymentRepo, harvests, farmers, notifier, publisher, logger,
	)
	poller := momo.NewPoller(gateway, reconcileUC, logger, cfg.MoMo.PollAttempts, cfg.MoMo.PollInterval)
	defer poller.Shutdown()

	policy := service.EligibilityPolicy{
		MinimumCreditScore: cfg.Lending.MinCreditScore,
		MaximumExposure:    cfg.Lending.MaxExposure,
	}
	applyUC := usecase.NewApplyLoanUseCase(
		txManager, loanRepo, productRepo, farmers, scorer, publisher, notifier, policy, logger)
	approveUC := usecase.NewApproveLoanUseCase(
		txManager, loanRepo, farmers, publisher, notifier, logger)
	rejectUC := usecase.NewRejectLoanUseCase(txManager, loanRepo, publisher, logger)
	disburseUC := usecase.NewDisburseLoanUseCase(
		txManager, loanRepo, transactionRepo, farmers, gateway, poller, logger)
	collectUC := usecase.NewInitiateCollectionUseCase(
		txManager, loanRepo, transactionRepo, farmers, gateway, poller, logger)
	completeUC := usecase.NewCompleteLoanUseCase(
		txManager, loanRepo, installmentRepo, publisher, logger)
	accrueUC := usecase.NewAccrueOverdueUseCase(
		txManager, loanRepo, installmentRepo, repaymentRepo, farmers, notifier,
		publisher, cfg.Lending.ReminderWindow, logger)
	queries := usecase.NewLoanQueries(loanRepo, productRepo, installmentRepo, repaymentRepo)

	// Overdue accrual sweep.
	sched := scheduler.New(logger)
	if err := sched.Register(scheduler.Job{
		Name: "overdue-accrual",
		Spec: cfg.Lending.AccrualSchedule,
		Run:  accrueUC.Execute,
	}); err != nil {
		logger.Error("failed to register accrual job", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// JWT auth.
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: "agriloan",
	})
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// HTTP routes. The webhook, probes and metrics stay public; the loan
	// API requires a token.
	router := mux.NewRouter()
	rest.NewHealthHandler(func(ctx context.Context) error {
		return pkgpostgres.HealthCheck(ctx, pool)
	}).RegisterRoutes(router)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	rest.NewWebhookHandler(reconcileUC, logger).RegisterRoutes(router)

	api := router.PathPrefix("/").Subrouter()
	api.Use(auth.Middleware(jwtSvc))
	rest.NewLoanHandler(
		applyUC, approveUC, rejectUC, disburseUC, collectUC, completeUC, queries, logger,
	).RegisterRoutes(api)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("lendingd stopped")
}
