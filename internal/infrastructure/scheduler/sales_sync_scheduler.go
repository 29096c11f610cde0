package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Sales Sync Job Types
// ---------------------------------------------------------------------------

// SalesSyncJobStatus represents the status of a sales sync job
type SalesSyncJobStatus string

const (
	SalesSyncJobStatusPending SalesSyncJobStatus = "PENDING"
	SalesSyncJobStatusRunning SalesSyncJobStatus = "RUNNING"
	SalesSyncJobStatusSuccess SalesSyncJobStatus = "SUCCESS"
	SalesSyncJobStatusPartial SalesSyncJobStatus = "PARTIAL"
	SalesSyncJobStatusFailed  SalesSyncJobStatus = "FAILED"
)

// SalesSyncJob represents one scheduled sales pull for a seller and platform
type SalesSyncJob struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Platform    channel.PlatformCode
	Status      SalesSyncJobStatus
	Error       string
	SubmittedAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Sync results
	PulledEvents   int
	NewSales       int
	DuplicateSales int
	DelistsSent    int
	DelistFailures int
}

// NewSalesSyncJob creates a new sales sync job
func NewSalesSyncJob(userID uuid.UUID, platform channel.PlatformCode, maxRetries int) *SalesSyncJob {
	return &SalesSyncJob{
		ID:          uuid.New(),
		UserID:      userID,
		Platform:    platform,
		Status:      SalesSyncJobStatusPending,
		SubmittedAt: time.Now(),
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *SalesSyncJob) Start() {
	now := time.Now()
	j.Status = SalesSyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete records the pull results and derives the final status
func (j *SalesSyncJob) Complete(pulled, newSales, duplicates, delistsSent, delistFailures int) {
	now := time.Now()
	j.PulledEvents = pulled
	j.NewSales = newSales
	j.DuplicateSales = duplicates
	j.DelistsSent = delistsSent
	j.DelistFailures = delistFailures
	j.CompletedAt = &now

	if delistFailures == 0 {
		j.Status = SalesSyncJobStatusSuccess
	} else if delistsSent > 0 {
		j.Status = SalesSyncJobStatusPartial
	} else {
		j.Status = SalesSyncJobStatusFailed
	}
}

// Fail marks the job as failed
func (j *SalesSyncJob) Fail(err string) {
	now := time.Now()
	j.Status = SalesSyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *SalesSyncJob) ShouldRetry() bool {
	return j.Status == SalesSyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff
func (j *SalesSyncJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = SalesSyncJobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Error = ""
}

// ---------------------------------------------------------------------------
// SalesSyncExecutor Interface
// ---------------------------------------------------------------------------

// SalesSyncExecutor executes sales sync jobs. The executor pulls sale
// events from the platform, records them, and fills in the job's result
// counters.
type SalesSyncExecutor interface {
	Execute(ctx context.Context, job *SalesSyncJob) error
}

// ---------------------------------------------------------------------------
// SalesSyncSchedulerConfig
// ---------------------------------------------------------------------------

// SalesSyncSchedulerConfig holds configuration for the sales sync scheduler
type SalesSyncSchedulerConfig struct {
	// Workers is the number of concurrent sync jobs
	Workers int
	// JobTimeout is the maximum time one job can run
	JobTimeout time.Duration
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the base delay between retries (with exponential backoff)
	RetryDelay time.Duration
	// HistorySize bounds the in-memory job history
	HistorySize int
}

// DefaultSalesSyncSchedulerConfig returns default configuration
func DefaultSalesSyncSchedulerConfig() SalesSyncSchedulerConfig {
	return SalesSyncSchedulerConfig{
		Workers:       3,
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Minute,
		HistorySize:   100,
	}
}

// Validate validates the configuration
func (c *SalesSyncSchedulerConfig) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.RetryAttempts < 0 {
		return ErrInvalidConfig
	}
	if c.HistorySize <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// SalesSyncScheduler
// ---------------------------------------------------------------------------

// SalesSyncScheduler runs sales sync jobs on a bounded worker pool and
// keeps a sliding window of completed jobs for diagnostics
type SalesSyncScheduler struct {
	config   SalesSyncSchedulerConfig
	executor SalesSyncExecutor
	logger   *zap.Logger

	jobs      chan *SalesSyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	historyMu sync.RWMutex
	history   []*SalesSyncJob
}

// NewSalesSyncScheduler creates a new sales sync scheduler
func NewSalesSyncScheduler(config SalesSyncSchedulerConfig, executor SalesSyncExecutor, logger *zap.Logger) (*SalesSyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SalesSyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *SalesSyncJob, 100),
		history:  make([]*SalesSyncJob, 0, config.HistorySize),
	}, nil
}

// Start starts the worker pool
func (s *SalesSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Sales sync scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *SalesSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sales sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sales sync scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob submits a job for execution
func (s *SalesSyncScheduler) SubmitJob(job *SalesSyncJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("Sales sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.String("platform", string(job.Platform)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleSync submits a sales sync job for a seller and platform
func (s *SalesSyncScheduler) ScheduleSync(userID uuid.UUID, platform channel.PlatformCode) error {
	job := NewSalesSyncJob(userID, platform, s.config.RetryAttempts)
	return s.SubmitJob(job)
}

// worker processes jobs from the queue
func (s *SalesSyncScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	s.logger.Debug("Sales sync worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sales sync worker stopping", zap.Int("worker_id", workerID))
			return
		case job, ok := <-s.jobs:
			if !ok {
				s.logger.Debug("Sales sync job channel closed", zap.Int("worker_id", workerID))
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single job
func (s *SalesSyncScheduler) processJob(ctx context.Context, job *SalesSyncJob, workerID int) {
	// Jobs waiting out a retry backoff go back to the queue
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Failed to re-queue sales sync job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	job.Start()
	s.logger.Info("Processing sales sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("platform", string(job.Platform)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("Sales sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.String("platform", string(job.Platform)),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(s.config.RetryDelay)
			s.logger.Info("Sales sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			select {
			case s.jobs <- job:
			default:
				s.logger.Warn("Failed to re-queue sales sync job for retry",
					zap.String("job_id", job.ID.String()),
				)
			}
		}

		s.addToHistory(job)
		return
	}

	s.logger.Info("Sales sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("platform", string(job.Platform)),
		zap.String("status", string(job.Status)),
		zap.Int("pulled_events", job.PulledEvents),
		zap.Int("new_sales", job.NewSales),
		zap.Int("duplicate_sales", job.DuplicateSales),
		zap.Int("delists_sent", job.DelistsSent),
		zap.Int("delist_failures", job.DelistFailures),
	)

	s.addToHistory(job)
}

// addToHistory adds a completed job to the sliding history window
func (s *SalesSyncScheduler) addToHistory(job *SalesSyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]*SalesSyncJob{job}, s.history...)
	if len(s.history) > s.config.HistorySize {
		s.history = s.history[:s.config.HistorySize]
	}
}

// GetJobHistory returns recent job history, newest first
func (s *SalesSyncScheduler) GetJobHistory(limit int) []*SalesSyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]*SalesSyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByUser returns job history for one seller
func (s *SalesSyncScheduler) GetJobHistoryByUser(userID uuid.UUID, limit int) []*SalesSyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]*SalesSyncJob, 0, limit)
	for _, job := range s.history {
		if job.UserID == userID {
			result = append(result, job)
			if limit > 0 && len(result) >= limit {
				break
			}
		}
	}
	return result
}
