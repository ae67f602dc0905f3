package service

import (
	"github.com/talktorobson/prima-facie-sub001/internal/cache"
	"github.com/talktorobson/prima-facie-sub001/internal/config"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/plan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/subscription"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	InvoiceRepo       invoice.Repository
	GenerationLogRepo invoice.GenerationLogRepository
	SubscriptionRepo  subscription.Repository
	PlanRepo          plan.Repository
	MatterRepo        matter.Repository
	PaymentPlanRepo   paymentplan.Repository
	TimeEntryRepo     timeentry.Repository
	DiscountRepo      discount.Repository
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	invoiceRepo invoice.Repository,
	generationLogRepo invoice.GenerationLogRepository,
	subscriptionRepo subscription.Repository,
	planRepo plan.Repository,
	matterRepo matter.Repository,
	paymentPlanRepo paymentplan.Repository,
	timeEntryRepo timeentry.Repository,
	discountRepo discount.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:            logger,
		Config:            config,
		DB:                db,
		Cache:             cache,
		InvoiceRepo:       invoiceRepo,
		GenerationLogRepo: generationLogRepo,
		SubscriptionRepo:  subscriptionRepo,
		PlanRepo:          planRepo,
		MatterRepo:        matterRepo,
		PaymentPlanRepo:   paymentPlanRepo,
		TimeEntryRepo:     timeEntryRepo,
		DiscountRepo:      discountRepo,
	}
}
