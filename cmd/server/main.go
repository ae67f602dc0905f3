package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/talktorobson/prima-facie-sub001/internal/api"
	v1 "github.com/talktorobson/prima-facie-sub001/internal/api/v1"
	"github.com/talktorobson/prima-facie-sub001/internal/cache"
	"github.com/talktorobson/prima-facie-sub001/internal/config"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	"github.com/talktorobson/prima-facie-sub001/internal/repository"
	"github.com/talktorobson/prima-facie-sub001/internal/service"
	"github.com/talktorobson/prima-facie-sub001/internal/validator"
)

// @title Prima Facie Billing API
// @version 1.0
// @description Billing subsystem for legal practices
// @BasePath /v1

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			provideDBClient,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewGenerationLogRepository,
			repository.NewSubscriptionRepository,
			repository.NewPlanRepository,
			repository.NewMatterRepository,
			repository.NewPaymentPlanRepository,
			repository.NewTimeEntryRepository,
			repository.NewDiscountRepository,

			// Services
			service.NewServiceParams,
			service.NewDiscountService,
			service.NewInvoiceService,
			service.NewSubscriptionInvoiceService,
			service.NewCaseInvoiceService,
			service.NewPaymentPlanInvoiceService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideDBClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	subscriptionService service.SubscriptionInvoiceService,
	caseService service.CaseInvoiceService,
	paymentPlanService service.PaymentPlanInvoiceService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(logger),
		Invoice:    v1.NewInvoiceHandler(invoiceService, logger),
		Generation: v1.NewGenerationHandler(subscriptionService, caseService, paymentPlanService, cfg, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}
