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
// Sync Target Provider
// ---------------------------------------------------------------------------

// SalesSyncTarget is one seller/platform pair eligible for a sales pull
type SalesSyncTarget struct {
	UserID   uuid.UUID
	Platform channel.PlatformCode
}

// SalesSyncTargetProvider enumerates the seller/platform pairs that have a
// connected credential on a pull-capable platform
type SalesSyncTargetProvider interface {
	ListTargets(ctx context.Context) ([]SalesSyncTarget, error)
}

// ---------------------------------------------------------------------------
// SalesSyncTriggerConfig
// ---------------------------------------------------------------------------

// SalesSyncTriggerConfig holds configuration for the periodic trigger
type SalesSyncTriggerConfig struct {
	// Interval is how often every eligible target gets a sync job
	Interval time.Duration
}

// DefaultSalesSyncTriggerConfig returns default configuration
func DefaultSalesSyncTriggerConfig() SalesSyncTriggerConfig {
	return SalesSyncTriggerConfig{
		Interval: 15 * time.Minute,
	}
}

// ---------------------------------------------------------------------------
// SalesSyncTrigger
// ---------------------------------------------------------------------------

// SalesSyncTrigger periodically submits a sales sync job for every
// eligible seller/platform pair
type SalesSyncTrigger struct {
	config    SalesSyncTriggerConfig
	scheduler *SalesSyncScheduler
	targets   SalesSyncTargetProvider
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSalesSyncTrigger creates a new periodic sales sync trigger
func NewSalesSyncTrigger(
	config SalesSyncTriggerConfig,
	scheduler *SalesSyncScheduler,
	targets SalesSyncTargetProvider,
	logger *zap.Logger,
) *SalesSyncTrigger {
	if config.Interval <= 0 {
		config.Interval = DefaultSalesSyncTriggerConfig().Interval
	}
	return &SalesSyncTrigger{
		config:    config,
		scheduler: scheduler,
		targets:   targets,
		logger:    logger,
	}
}

// Start starts the trigger loop
func (c *SalesSyncTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Sales sync trigger started",
		zap.Duration("interval", c.config.Interval),
	)

	return nil
}

// Stop stops the trigger loop
func (c *SalesSyncTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Sales sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop fires once per interval
func (c *SalesSyncTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	// First round runs immediately so a restart does not wait a full interval
	c.triggerRound(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.triggerRound(ctx)
		}
	}
}

// triggerRound submits one job per eligible target
func (c *SalesSyncTrigger) triggerRound(ctx context.Context) {
	targets, err := c.targets.ListTargets(ctx)
	if err != nil {
		c.logger.Error("Failed to enumerate sales sync targets", zap.Error(err))
		return
	}

	submitted := 0
	for _, target := range targets {
		if err := c.scheduler.ScheduleSync(target.UserID, target.Platform); err != nil {
			c.logger.Warn("Failed to submit sales sync job",
				zap.String("user_id", target.UserID.String()),
				zap.String("platform", string(target.Platform)),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}

	if submitted > 0 {
		c.logger.Debug("Sales sync round triggered",
			zap.Int("targets", len(targets)),
			zap.Int("submitted", submitted),
		)
	}
}
