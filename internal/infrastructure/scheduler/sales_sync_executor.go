package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/sales"
)

// SalesServiceExecutor runs sync jobs against the sales application service
type SalesServiceExecutor struct {
	service *sales.Service
	logger  *zap.Logger
}

// NewSalesServiceExecutor creates an executor backed by the sales service
func NewSalesServiceExecutor(service *sales.Service, logger *zap.Logger) *SalesServiceExecutor {
	return &SalesServiceExecutor{
		service: service,
		logger:  logger,
	}
}

// Execute runs one sync pass for the job's (user, platform) pair and
// folds the report into the job's result counters
func (e *SalesServiceExecutor) Execute(ctx context.Context, job *SalesSyncJob) error {
	report, err := e.service.SyncPlatform(ctx, job.UserID, job.Platform)
	if err != nil {
		return err
	}

	job.Complete(
		report.PulledEvents,
		report.NewSales,
		report.DuplicateSales,
		report.DelistsSent,
		report.DelistFailures,
	)
	return nil
}

// Compile-time interface check
var _ SalesSyncExecutor = (*SalesServiceExecutor)(nil)
