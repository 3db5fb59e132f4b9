package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/alert"
	httptransport "github.com/spec-kit/call-triage-service/internal/api/http"
	"github.com/spec-kit/call-triage-service/internal/api/http/handlers"
	"github.com/spec-kit/call-triage-service/internal/auth"
	"github.com/spec-kit/call-triage-service/internal/config"
	"github.com/spec-kit/call-triage-service/internal/events"
	"github.com/spec-kit/call-triage-service/internal/lexicon"
	"github.com/spec-kit/call-triage-service/internal/observability"
	"github.com/spec-kit/call-triage-service/internal/persistence"
	"github.com/spec-kit/call-triage-service/internal/repository"
	"github.com/spec-kit/call-triage-service/internal/resolver"
	"github.com/spec-kit/call-triage-service/internal/service"
	"github.com/spec-kit/call-triage-service/internal/sms"
	"github.com/spec-kit/call-triage-service/internal/triage"
	"github.com/spec-kit/call-triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	assistantRepo := repository.NewAssistantRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)
	lexiconRepo := repository.NewLexiconRepository(pool)
	eventLogRepo := repository.NewEventLogRepository(pool)
	alertRepo := repository.NewAlertAttemptRepository(pool)
	operatorRepo := repository.NewOperatorRepository(pool)

	store := lexicon.Default()
	if pool != nil {
		rows, err := lexiconRepo.ListAll(ctx)
		if err != nil {
			logger.Warn("failed to load tenant lexicon rows; using built-ins only", zap.Error(err))
		} else {
			for _, row := range rows {
				store.AddEntry(row.Industry, row.Language, row.Phrase, row.Weight)
			}
		}
	}

	classifier := triage.NewClassifier(store, cfg.Triage.DefaultThreshold, logger)
	tenantResolver := resolver.New(assistantRepo, tenantRepo, eventLogRepo, logger)
	smsClient := sms.NewClient(cfg.SMS, logger)
	fanout := alert.NewFanout(smsClient, alertRepo, logger, cfg.SMS.FanoutConcurrency, cfg.SMS.SendTimeout())

	dispatcher := events.NewInMemoryDispatcher()
	analyticsService := service.NewAnalyticsService(dispatcher, logger, metrics)
	worker.StartAnalyticsWorker(analyticsService)

	webhookService := service.NewWebhookService(cfg.Webhook, service.WebhookDependencies{
		Resolver:   tenantResolver,
		Classifier: classifier,
		Fanout:     fanout,
		EventLog:   eventLogRepo,
		Redis:      redis,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	auditService := service.NewAuditService(cfg.Auth, service.AuditDependencies{
		Operators: operatorRepo,
		EventLog:  eventLogRepo,
		Alerts:    alertRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(auditService.TokenManager(), operatorRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	auditHandler := handlers.NewAuditHandler(auditService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Webhook:        webhookHandler,
		Audit:          auditHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
