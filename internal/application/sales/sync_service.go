package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
)

// Delister triggers the cross-platform delist fan-out after a sale
type Delister interface {
	DelistForSale(ctx context.Context, l *listing.Listing, soldOn channel.PlatformCode) *publish.FanoutResult
}

// Service ingests sale events from platforms and reconciles them with
// listings: every sale marks its listing sold and withdraws it from all
// other platforms it is still live on.
type Service struct {
	listings    listing.Repository
	records     channel.RecordRepository
	sales       channel.SaleRepository
	creds       channel.CredentialRepository
	registry    channel.Registry
	credManager *publish.CredentialManager
	delister    Delister
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig

	// lookback is the pull window for credentials that have never pulled
	lookback time.Duration

	logger *zap.Logger
}

// NewService creates a new sales service
func NewService(
	listings listing.Repository,
	records channel.RecordRepository,
	sales channel.SaleRepository,
	creds channel.CredentialRepository,
	registry channel.Registry,
	credManager *publish.CredentialManager,
	delister Delister,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	lookback time.Duration,
	logger *zap.Logger,
) *Service {
	if lookback <= 0 {
		lookback = 72 * time.Hour
	}
	return &Service{
		listings:    listings,
		records:     records,
		sales:       sales,
		creds:       creds,
		registry:    registry,
		credManager: credManager,
		delister:    delister,
		idempotency: idempotency,
		idemConfig:  idemConfig,
		lookback:    lookback,
		logger:      logger,
	}
}

// SyncPlatform pulls sale events for one (user, platform) pair and
// processes each event. The pull watermark only advances after a pass
// with no processing failures, so a failed event is re-pulled next round
// and absorbed by deduplication.
func (s *Service) SyncPlatform(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode) (*Report, error) {
	report := &Report{Platform: platform}

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return report, err
	}
	if !adapter.Capabilities().Has(channel.CapabilityPullSales) {
		return report, fmt.Errorf("%w: %s cannot report sales", channel.ErrCapabilityMissing, platform)
	}

	cred, err := s.credManager.EnsureLive(ctx, adapter, userID)
	if err != nil {
		return report, err
	}

	now := time.Now()
	since := cred.PullSince(s.lookback, now)

	events, err := adapter.PullSales(ctx, cred, since)
	if err != nil {
		return report, fmt.Errorf("pull sales: %w", err)
	}
	report.PulledEvents = len(events)

	clean := true
	for _, ev := range events {
		if err := s.processEvent(ctx, userID, platform, ev, report); err != nil {
			clean = false
			s.logger.Error("Failed to process sale event",
				zap.String("platform", string(platform)),
				zap.String("native_sale_id", ev.NativeSaleID),
				zap.Error(err),
			)
		}
	}

	if clean {
		cred.AdvancePullWatermark(now)
		if err := s.creds.Save(ctx, cred); err != nil {
			s.logger.Warn("Failed to persist pull watermark",
				zap.String("platform", string(platform)),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Sales sync pass finished",
		zap.String("platform", string(platform)),
		zap.String("user_id", userID.String()),
		zap.Int("pulled", report.PulledEvents),
		zap.Int("new", report.NewSales),
		zap.Int("duplicates", report.DuplicateSales),
		zap.Int("unmatched", report.UnmatchedEvents),
		zap.Int("delists_sent", report.DelistsSent),
		zap.Int("delist_failures", report.DelistFailures),
	)
	return report, nil
}

// processEvent reconciles one pulled sale event
func (s *Service) processEvent(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode, ev channel.RawSaleEvent, report *Report) error {
	record, err := s.records.FindByRemoteID(ctx, platform, ev.RemoteListingID)
	if err != nil {
		if errors.Is(err, channel.ErrRecordNotFound) {
			// A sale for a listing this system never published there
			report.UnmatchedEvents++
			s.logger.Warn("Sale event references unknown remote listing",
				zap.String("platform", string(platform)),
				zap.String("remote_listing_id", ev.RemoteListingID),
				zap.String("native_sale_id", ev.NativeSaleID),
			)
			return nil
		}
		return err
	}
	if record.UserID != userID {
		report.UnmatchedEvents++
		return nil
	}

	sale := channel.NewSyncedSale(record.ListingID, userID, platform, ev)
	if err := s.sales.Save(ctx, sale); err != nil {
		if errors.Is(err, channel.ErrSaleAlreadyRecorded) {
			report.DuplicateSales++
			// The sale may have been recorded by a pass that then failed
			// its fan-out; a re-pulled event finishes the job
			return s.resumeFanout(ctx, sale, report)
		}
		return err
	}
	report.NewSales++

	return s.reconcileSale(ctx, sale, report)
}

// reconcileSale marks the listing sold and fans out the delist to every
// other platform it is still published on
func (s *Service) reconcileSale(ctx context.Context, sale *channel.SaleRecord, report *Report) error {
	l, err := s.listings.FindByID(ctx, sale.ListingID)
	if err != nil {
		return fmt.Errorf("load sold listing: %w", err)
	}

	if err := l.MarkSold(); err != nil {
		if errors.Is(err, listing.ErrAlreadySold) {
			// Sale recorded; an earlier sale already triggered the fan-out
			return nil
		}
		return err
	}
	if err := s.listings.Save(ctx, l); err != nil {
		return fmt.Errorf("persist sold listing: %w", err)
	}

	return s.runFanout(ctx, l, sale, report)
}

// resumeFanout finishes the delist fan-out for a re-pulled sale whose
// fan-out slot was never consumed, which happens when a previous pass
// failed between recording the sale and completing the fan-out
func (s *Service) resumeFanout(ctx context.Context, sale *channel.SaleRecord, report *Report) error {
	if s.idempotency == nil || !s.idemConfig.Enabled {
		return nil
	}
	done, err := s.idempotency.IsProcessed(ctx, "fanout:"+sale.DedupKey())
	if err != nil || done {
		return nil
	}

	l, err := s.listings.FindByID(ctx, sale.ListingID)
	if err != nil {
		return fmt.Errorf("load sold listing: %w", err)
	}
	if l.State != listing.StateSold {
		return nil
	}
	return s.runFanout(ctx, l, sale, report)
}

// runFanout delists the sold listing everywhere else, at most once per
// sale. The fan-out slot is consumed only after the fan-out enumerated
// its targets, so an interrupted one is retried on the next pull.
func (s *Service) runFanout(ctx context.Context, l *listing.Listing, sale *channel.SaleRecord, report *Report) error {
	if !s.fanoutPending(ctx, sale) {
		return nil
	}

	fanout := s.delister.DelistForSale(ctx, l, sale.Platform)
	if fanout.Error != "" {
		report.DelistFailures++
		return fmt.Errorf("delist fan-out: %s", fanout.Error)
	}
	countDelists(fanout, report)

	s.consumeFanout(ctx, sale)
	return nil
}

// fanoutPending reports whether the at-most-once fan-out slot for a sale
// is still unclaimed. When the store is unavailable the fan-out proceeds
// anyway: a duplicate delist is idempotent remotely, a missed one leaves
// a live listing for a sold item.
func (s *Service) fanoutPending(ctx context.Context, sale *channel.SaleRecord) bool {
	if s.idempotency == nil || !s.idemConfig.Enabled {
		return true
	}

	done, err := s.idempotency.IsProcessed(ctx, "fanout:"+sale.DedupKey())
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, proceeding with fan-out",
			zap.String("dedup_key", sale.DedupKey()),
			zap.Error(err),
		)
		return true
	}
	return !done
}

// consumeFanout claims the fan-out slot after a completed fan-out
func (s *Service) consumeFanout(ctx context.Context, sale *channel.SaleRecord) {
	if s.idempotency == nil || !s.idemConfig.Enabled {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, "fanout:"+sale.DedupKey(), s.idemConfig.TTL); err != nil {
		s.logger.Warn("Failed to record fan-out completion",
			zap.String("dedup_key", sale.DedupKey()),
			zap.Error(err),
		)
	}
}

// countDelists folds a fan-out result into the sync report
func countDelists(fanout *publish.FanoutResult, report *Report) {
	for _, result := range fanout.Results {
		switch result.Outcome {
		case publish.OutcomeDelisted:
			report.DelistsSent++
		case publish.OutcomeSkipped:
			// Nothing was live on that platform
		default:
			report.DelistFailures++
		}
	}
}
