package repository

import (
	"github.com/talktorobson/prima-facie-sub001/internal/domain/discount"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/invoice"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/matter"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/paymentplan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/plan"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/subscription"
	"github.com/talktorobson/prima-facie-sub001/internal/domain/timeentry"
	"github.com/talktorobson/prima-facie-sub001/internal/logger"
	"github.com/talktorobson/prima-facie-sub001/internal/postgres"
	postgresRepo "github.com/talktorobson/prima-facie-sub001/internal/repository/postgres"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewGenerationLogRepository(db *postgres.DB, logger *logger.Logger) invoice.GenerationLogRepository {
	return postgresRepo.NewGenerationLogRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewMatterRepository(db *postgres.DB, logger *logger.Logger) matter.Repository {
	return postgresRepo.NewMatterRepository(db, logger)
}

func NewPaymentPlanRepository(db *postgres.DB, logger *logger.Logger) paymentplan.Repository {
	return postgresRepo.NewPaymentPlanRepository(db, logger)
}

func NewTimeEntryRepository(db *postgres.DB, logger *logger.Logger) timeentry.Repository {
	return postgresRepo.NewTimeEntryRepository(db, logger)
}

func NewDiscountRepository(db *postgres.DB, logger *logger.Logger) discount.Repository {
	return postgresRepo.NewDiscountRepository(db, logger)
}
