package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

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
	"github.com/talktorobson/prima-facie-sub001/internal/types"
	"github.com/talktorobson/prima-facie-sub001/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo       invoice.Repository
	GenerationLogRepo invoice.GenerationLogRepository
	SubscriptionRepo  subscription.Repository
	PlanRepo          plan.Repository
	MatterRepo        matter.Repository
	PaymentPlanRepo   paymentplan.Repository
	TimeEntryRepo     timeentry.Repository
	DiscountRepo      discount.Repository
}

// BaseServiceTestSuite provides common functionality for all service test
// suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		InvoiceRepo:       NewInMemoryInvoiceStore(),
		GenerationLogRepo: NewInMemoryGenerationLogStore(),
		SubscriptionRepo:  NewInMemorySubscriptionStore(),
		PlanRepo:          NewInMemoryPlanStore(),
		MatterRepo:        NewInMemoryMatterStore(),
		PaymentPlanRepo:   NewInMemoryPaymentPlanStore(),
		TimeEntryRepo:     NewInMemoryTimeEntryStore(),
		DiscountRepo:      NewInMemoryDiscountStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.GenerationLogRepo.(*InMemoryGenerationLogStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.MatterRepo.(*InMemoryMatterStore).Clear()
	s.stores.PaymentPlanRepo.(*InMemoryPaymentPlanStore).Clear()
	s.stores.TimeEntryRepo.(*InMemoryTimeEntryStore).Clear()
	s.stores.DiscountRepo.(*InMemoryDiscountStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
