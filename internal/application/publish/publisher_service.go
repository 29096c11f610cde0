package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Pair locking
// ---------------------------------------------------------------------------

// pairLocks serializes operations per (listing, platform) pair. Different
// pairs run concurrently; the same pair never does, which keeps the
// record state machine free of write races.
type pairLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *pairLocks) get(listingID uuid.UUID, platform channel.PlatformCode) *sync.Mutex {
	key := listingID.String() + "/" + string(platform)

	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}

// ---------------------------------------------------------------------------
// PublisherService
// ---------------------------------------------------------------------------

// PublisherService orchestrates publish, update and delist fan-outs. It
// never branches on platform identity; everything platform-specific is
// behind the adapter registry.
type PublisherService struct {
	listings listing.Repository
	records  channel.RecordRepository
	registry channel.Registry
	creds    *CredentialManager
	pipeline *ImagePipeline
	retry    channel.RetryPolicy

	// platformTimeout bounds each individual adapter call
	platformTimeout time.Duration

	locks  *pairLocks
	logger *zap.Logger
}

// NewPublisherService creates a new publisher service
func NewPublisherService(
	listings listing.Repository,
	records channel.RecordRepository,
	registry channel.Registry,
	creds *CredentialManager,
	pipeline *ImagePipeline,
	retry channel.RetryPolicy,
	platformTimeout time.Duration,
	logger *zap.Logger,
) *PublisherService {
	if platformTimeout <= 0 {
		platformTimeout = 60 * time.Second
	}
	return &PublisherService{
		listings:        listings,
		records:         records,
		registry:        registry,
		creds:           creds,
		pipeline:        pipeline,
		retry:           retry,
		platformTimeout: platformTimeout,
		locks:           newPairLocks(),
		logger:          logger,
	}
}

// Publish publishes a listing to the given platforms in parallel. Each
// platform succeeds or fails independently; one platform's failure never
// rolls back another's success.
func (s *PublisherService) Publish(ctx context.Context, userID, listingID uuid.UUID, platforms []channel.PlatformCode) (*FanoutResult, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if l.State != listing.StateActive {
		return nil, shared.NewDomainError("LISTING_NOT_ACTIVE", "Only active listings can be published")
	}

	return s.fanOut(ctx, l, platforms, "publish", func(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
		return s.publishOne(ctx, l, platform)
	}), nil
}

// Update pushes the listing's current content to the given platforms.
// Platforms where the listing is not published are skipped. Updates never
// change the record's status, whatever their outcome.
func (s *PublisherService) Update(ctx context.Context, userID, listingID uuid.UUID, platforms []channel.PlatformCode) (*FanoutResult, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if len(platforms) == 0 {
		platforms, err = s.publishedPlatforms(ctx, listingID)
		if err != nil {
			return nil, err
		}
	}

	return s.fanOut(ctx, l, platforms, "update", func(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
		return s.updateOne(ctx, l, platform)
	}), nil
}

// Delist withdraws the listing from the given platforms, or from every
// published platform when none are named
func (s *PublisherService) Delist(ctx context.Context, userID, listingID uuid.UUID, platforms []channel.PlatformCode) (*FanoutResult, error) {
	l, err := s.findOwned(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if len(platforms) == 0 {
		platforms, err = s.publishedPlatforms(ctx, listingID)
		if err != nil {
			return nil, err
		}
	}

	return s.fanOut(ctx, l, platforms, "delist", func(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
		return s.delistOne(ctx, l, platform)
	}), nil
}

// DelistForSale is the sale fan-out entry point: it withdraws the listing
// from every published platform except the one it sold on, without
// requiring the caller to hold the seller's identity checks again.
func (s *PublisherService) DelistForSale(ctx context.Context, l *listing.Listing, soldOn channel.PlatformCode) *FanoutResult {
	platforms, err := s.publishedPlatforms(ctx, l.ID)
	if err != nil {
		s.logger.Error("Failed to enumerate published platforms for sale fan-out",
			zap.String("listing_id", l.ID.String()),
			zap.Error(err),
		)
		return &FanoutResult{ListingID: l.ID, Error: "enumerate published platforms: " + err.Error()}
	}

	targets := make([]channel.PlatformCode, 0, len(platforms))
	for _, platform := range platforms {
		if platform != soldOn {
			targets = append(targets, platform)
		}
	}

	return s.fanOut(ctx, l, targets, "delist", func(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
		return s.delistOne(ctx, l, platform)
	})
}

// Status returns the per-platform publication state of a listing,
// including the attempt history
func (s *PublisherService) Status(ctx context.Context, userID, listingID uuid.UUID) (*StatusResponse, error) {
	if _, err := s.findOwned(ctx, userID, listingID); err != nil {
		return nil, err
	}

	records, err := s.records.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{
		ListingID: listingID,
		Records:   make([]RecordStatus, 0, len(records)),
	}
	for _, record := range records {
		resp.Records = append(resp.Records, RecordStatus{
			Platform:      record.Platform,
			Status:        record.Status,
			RemoteID:      record.RemoteID,
			AttemptCount:  record.AttemptCount,
			LastError:     record.LastError,
			LastAttemptAt: record.LastAttemptAt,
			History:       record.History,
		})
	}
	return resp, nil
}

// ---------------------------------------------------------------------------
// Fan-out machinery
// ---------------------------------------------------------------------------

type platformOp func(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult

// fanOut runs one operation per platform concurrently. A panic in one
// platform's operation is contained to that platform's result and the
// record is failed rather than left mid-transition.
func (s *PublisherService) fanOut(ctx context.Context, l *listing.Listing, platforms []channel.PlatformCode, operation string, op platformOp) *FanoutResult {
	result := &FanoutResult{
		ListingID: l.ID,
		Results:   make([]PlatformResult, len(platforms)),
	}

	var wg sync.WaitGroup
	for i, platform := range platforms {
		wg.Add(1)
		go func(i int, platform channel.PlatformCode) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("Platform operation panicked",
						zap.String("listing_id", l.ID.String()),
						zap.String("platform", string(platform)),
						zap.String("operation", operation),
						zap.Any("panic", r),
					)
					reason := fmt.Sprintf("internal error: %v", r)
					s.failRecordAfterPanic(ctx, l, platform, operation, reason)
					result.Results[i] = PlatformResult{
						Platform: platform,
						Outcome:  OutcomeFailed,
						Reason:   reason,
					}
				}
			}()
			result.Results[i] = op(ctx, l, platform)
		}(i, platform)
	}
	wg.Wait()

	return result
}

// failRecordAfterPanic moves the pair's record out of its transitional
// status after a recovered panic, so a publish never leaves the record
// pending forever. Updates keep their status; only the log gains an entry.
func (s *PublisherService) failRecordAfterPanic(ctx context.Context, l *listing.Listing, platform channel.PlatformCode, operation, reason string) {
	lock := s.locks.get(l.ID, platform)
	lock.Lock()
	defer lock.Unlock()

	switch operation {
	case "publish":
		record, err := s.loadOrCreateRecord(ctx, l, platform)
		if err != nil || record.Status != channel.StatusPending {
			return
		}
		record.BeginAttempt()
		s.logTransitionErr(record, record.MarkPublishFailed(reason))
		s.saveRecord(ctx, record)
	case "delist":
		record, err := s.records.FindByListingAndPlatform(ctx, l.ID, platform)
		if err != nil || record.Status != channel.StatusPublished {
			return
		}
		record.BeginAttempt()
		s.logTransitionErr(record, record.MarkDelistFailed(reason))
		s.saveRecord(ctx, record)
	default:
		record, err := s.records.FindByListingAndPlatform(ctx, l.ID, platform)
		if err != nil {
			return
		}
		record.RecordUpdateOutcome("failed", reason)
		s.saveRecord(ctx, record)
	}
}

// publishOne publishes a listing to a single platform
func (s *PublisherService) publishOne(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
	lock := s.locks.get(l.ID, platform)
	lock.Lock()
	defer lock.Unlock()

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}

	record, err := s.loadOrCreateRecord(ctx, l, platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if record.Status == channel.StatusPublished {
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, RemoteID: record.RemoteID, Reason: "already published"}
	}
	if record.Status != channel.StatusPending {
		s.logTransitionErr(record, record.Reopen())
	}

	// Validation violations block only when this platform requires the field
	spec := adapter.ViewSpec()
	if blocked := blockingViolations(l.Validate(), spec); len(blocked) > 0 {
		reason := "validation: " + strings.Join(blocked, "; ")
		s.logTransitionErr(record, record.MarkPublishFailed(reason))
		s.saveRecord(ctx, record)
		return PlatformResult{Platform: platform, Outcome: OutcomeBlocked, Reason: reason}
	}

	cred, result := s.liveCredential(ctx, adapter, l.UserID, record, "publish")
	if result != nil {
		s.saveRecord(ctx, record)
		return *result
	}

	photos, err := s.pipeline.Prepare(ctx, l.Photos, adapter.ImageLimits())
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if adapter.ImageLimits().RequiresPhoto && len(photos.Photos) == 0 {
		reason := "no usable photos for a platform that requires at least one"
		s.logTransitionErr(record, record.MarkPublishFailed(reason))
		s.saveRecord(ctx, record)
		return PlatformResult{Platform: platform, Outcome: OutcomeBlocked, Reason: reason, Warnings: photos.Warnings}
	}

	view := channel.BuildView(l, spec)

	outcome := s.attemptPublish(ctx, adapter, record, func(callCtx context.Context) (channel.PublishResult, error) {
		return adapter.Publish(callCtx, view, photos.Photos, cred)
	})
	outcome.Warnings = photos.Warnings
	s.saveRecord(ctx, record)
	return outcome
}

// updateOne replaces the remote content on a single platform
func (s *PublisherService) updateOne(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
	lock := s.locks.get(l.ID, platform)
	lock.Lock()
	defer lock.Unlock()

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if !adapter.Capabilities().Has(channel.CapabilityUpdate) {
		return PlatformResult{Platform: platform, Outcome: OutcomeUnsupported, Reason: "platform does not support updates"}
	}

	record, err := s.records.FindByListingAndPlatform(ctx, l.ID, platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, Reason: "not published on this platform"}
	}
	if !record.IsPublished() {
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, Reason: "not published on this platform"}
	}

	cred, failed := s.liveCredential(ctx, adapter, l.UserID, record, "update")
	if failed != nil {
		s.saveRecord(ctx, record)
		return *failed
	}

	view := channel.BuildView(l, adapter.ViewSpec())

	outcome := s.attemptUpdate(ctx, adapter, record, func(callCtx context.Context) (channel.PublishResult, error) {
		return adapter.Update(callCtx, record.RemoteID, view, cred)
	})
	s.saveRecord(ctx, record)
	return outcome
}

// delistOne withdraws the listing from a single platform
func (s *PublisherService) delistOne(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) PlatformResult {
	lock := s.locks.get(l.ID, platform)
	lock.Lock()
	defer lock.Unlock()

	adapter, err := s.registry.Get(platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}

	record, err := s.records.FindByListingAndPlatform(ctx, l.ID, platform)
	if err != nil {
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, Reason: "not published on this platform"}
	}
	if record.Status == channel.StatusDelisted {
		return PlatformResult{Platform: platform, Outcome: OutcomeDelisted, Reason: "already delisted"}
	}
	if record.Status != channel.StatusPublished && record.Status != channel.StatusDelistFailed {
		return PlatformResult{Platform: platform, Outcome: OutcomeSkipped, Reason: "not published on this platform"}
	}

	if !adapter.Capabilities().Has(channel.CapabilityDelist) {
		// Template-family postings can only be removed by the seller
		s.logTransitionErr(record, record.MarkDelistFailed("platform does not support automatic delisting"))
		s.saveRecord(ctx, record)
		return PlatformResult{Platform: platform, Outcome: OutcomeUnsupported, Reason: "platform does not support automatic delisting"}
	}

	cred, failed := s.liveCredential(ctx, adapter, l.UserID, record, "delist")
	if failed != nil {
		s.saveRecord(ctx, record)
		return *failed
	}

	outcome := s.attemptDelist(ctx, adapter, record, cred)
	s.saveRecord(ctx, record)
	return outcome
}

// ---------------------------------------------------------------------------
// Attempt loops
// ---------------------------------------------------------------------------

type publishCall func(ctx context.Context) (channel.PublishResult, error)

// attemptPublish runs the retry loop for a publish
func (s *PublisherService) attemptPublish(ctx context.Context, adapter channel.Adapter, record *channel.Record, call publishCall) PlatformResult {
	platform := adapter.PlatformCode()

	for attempt := 1; ; attempt++ {
		record.BeginAttempt()

		result, err := s.invoke(ctx, call)
		if err != nil {
			if errors.Is(err, channel.ErrPlatformAuthFailed) {
				record.RecordAuthorizationFailure(err.Error())
				return PlatformResult{Platform: platform, Outcome: OutcomeAuthFailed, Reason: err.Error(), Attempts: record.AttemptCount}
			}
			// An unexpected adapter error is terminal for this publish;
			// the record must not stay pending
			s.logTransitionErr(record, record.MarkPublishFailed(err.Error()))
			return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error(), Attempts: record.AttemptCount}
		}

		switch result.Kind {
		case channel.PublishOutcomePublished:
			s.logTransitionErr(record, record.MarkPublished(result.RemoteID, "accepted by platform"))
			return PlatformResult{Platform: platform, Outcome: OutcomePublished, RemoteID: result.RemoteID, Attempts: record.AttemptCount}

		case channel.PublishOutcomeRejected:
			s.logTransitionErr(record, record.MarkPublishFailed(result.Reason))
			return PlatformResult{Platform: platform, Outcome: OutcomeRejected, Reason: result.Reason, Attempts: record.AttemptCount}

		default: // transient
			record.RecordTransientFailure("publish", result.Reason)
			if !s.retry.ShouldRetry(attempt) {
				s.logTransitionErr(record, record.MarkPublishFailed(result.Reason))
				return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
			}
			if err := sleepBackoff(ctx, s.retry.Backoff(attempt+1)); err != nil {
				s.logTransitionErr(record, record.MarkPublishFailed("cancelled while waiting to retry"))
				return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
			}
		}
	}
}

// attemptUpdate runs the retry loop for an update. The record status
// stays published whatever happens; only the attempt log changes.
func (s *PublisherService) attemptUpdate(ctx context.Context, adapter channel.Adapter, record *channel.Record, call publishCall) PlatformResult {
	platform := adapter.PlatformCode()

	for attempt := 1; ; attempt++ {
		record.BeginAttempt()

		result, err := s.invoke(ctx, call)
		if err != nil {
			if errors.Is(err, channel.ErrPlatformAuthFailed) {
				record.RecordAuthorizationFailure(err.Error())
				return PlatformResult{Platform: platform, Outcome: OutcomeAuthFailed, Reason: err.Error(), Attempts: record.AttemptCount}
			}
			record.RecordUpdateOutcome("failed", err.Error())
			return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error(), Attempts: record.AttemptCount}
		}

		switch result.Kind {
		case channel.PublishOutcomePublished:
			record.RecordUpdateOutcome("updated", "content replaced")
			return PlatformResult{Platform: platform, Outcome: OutcomeUpdated, RemoteID: record.RemoteID, Attempts: record.AttemptCount}

		case channel.PublishOutcomeRejected:
			record.RecordUpdateOutcome("rejected", result.Reason)
			return PlatformResult{Platform: platform, Outcome: OutcomeRejected, Reason: result.Reason, Attempts: record.AttemptCount}

		default: // transient
			record.RecordUpdateOutcome("transient_failure", result.Reason)
			if !s.retry.ShouldRetry(attempt) {
				return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
			}
			if err := sleepBackoff(ctx, s.retry.Backoff(attempt+1)); err != nil {
				return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
			}
		}
	}
}

// attemptDelist runs the retry loop for a delist. AlreadyGone counts as
// success; delisting is idempotent.
func (s *PublisherService) attemptDelist(ctx context.Context, adapter channel.Adapter, record *channel.Record, cred *channel.Credential) PlatformResult {
	platform := adapter.PlatformCode()

	for attempt := 1; ; attempt++ {
		record.BeginAttempt()

		callCtx, cancel := context.WithTimeout(ctx, s.platformTimeout)
		result, err := adapter.Delist(callCtx, record.RemoteID, cred)
		cancel()

		if err != nil {
			if errors.Is(err, channel.ErrPlatformAuthFailed) {
				record.RecordAuthorizationFailure(err.Error())
				return PlatformResult{Platform: platform, Outcome: OutcomeAuthFailed, Reason: err.Error(), Attempts: record.AttemptCount}
			}
			if errors.Is(err, context.DeadlineExceeded) {
				result = channel.DelistResult{Kind: channel.DelistOutcomeTransient, Reason: "platform call timed out"}
			} else {
				s.logTransitionErr(record, record.MarkDelistFailed(err.Error()))
				return PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error(), Attempts: record.AttemptCount}
			}
		}

		if result.IsSuccess() {
			message := "withdrawn from platform"
			if result.Kind == channel.DelistOutcomeAlreadyGone {
				message = "listing was already gone on the platform"
			}
			s.logTransitionErr(record, record.MarkDelisted(message))
			return PlatformResult{Platform: platform, Outcome: OutcomeDelisted, Attempts: record.AttemptCount}
		}

		record.RecordTransientFailure("delist", result.Reason)
		if !s.retry.ShouldRetry(attempt) {
			s.logTransitionErr(record, record.MarkDelistFailed(result.Reason))
			return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
		}
		if err := sleepBackoff(ctx, s.retry.Backoff(attempt+1)); err != nil {
			s.logTransitionErr(record, record.MarkDelistFailed("cancelled while waiting to retry"))
			return PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: result.Reason, Attempts: record.AttemptCount}
		}
	}
}

// invoke runs one adapter call under the platform timeout, folding a
// timeout into a transient result
func (s *PublisherService) invoke(ctx context.Context, call publishCall) (channel.PublishResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.platformTimeout)
	defer cancel()

	result, err := call(callCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return channel.TransientPublishFailure("platform call timed out"), nil
	}
	return result, err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// liveCredential gates the operation behind the credential check. A
// non-nil PlatformResult means the operation cannot proceed.
func (s *PublisherService) liveCredential(ctx context.Context, adapter channel.Adapter, userID uuid.UUID, record *channel.Record, operation string) (*channel.Credential, *PlatformResult) {
	cred, err := s.creds.EnsureLive(ctx, adapter, userID)
	if err == nil {
		return cred, nil
	}

	platform := adapter.PlatformCode()
	switch {
	case errors.Is(err, shared.ErrNotConnected):
		return nil, &PlatformResult{Platform: platform, Outcome: OutcomeBlocked, Reason: "platform is not connected"}
	case errors.Is(err, shared.ErrReconnectRequired):
		record.RecordAuthorizationFailure("credential is no longer valid")
		return nil, &PlatformResult{Platform: platform, Outcome: OutcomeAuthFailed, Reason: "credential is no longer valid, reconnect required"}
	case errors.Is(err, channel.ErrPlatformUnavailable):
		record.RecordTransientFailure(operation, err.Error())
		return nil, &PlatformResult{Platform: platform, Outcome: OutcomeRetriesExhausted, Reason: err.Error()}
	default:
		return nil, &PlatformResult{Platform: platform, Outcome: OutcomeFailed, Reason: err.Error()}
	}
}

// loadOrCreateRecord returns the existing record for the pair or a fresh
// pending one
func (s *PublisherService) loadOrCreateRecord(ctx context.Context, l *listing.Listing, platform channel.PlatformCode) (*channel.Record, error) {
	record, err := s.records.FindByListingAndPlatform(ctx, l.ID, platform)
	if err == nil {
		return record, nil
	}
	if errors.Is(err, channel.ErrRecordNotFound) {
		return channel.NewRecord(l.ID, l.UserID, platform), nil
	}
	return nil, err
}

// publishedPlatforms lists the platforms a listing is currently published on
func (s *PublisherService) publishedPlatforms(ctx context.Context, listingID uuid.UUID) ([]channel.PlatformCode, error) {
	records, err := s.records.FindPublishedByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	platforms := make([]channel.PlatformCode, 0, len(records))
	for _, record := range records {
		platforms = append(platforms, record.Platform)
	}
	return platforms, nil
}

// findOwned loads a listing and enforces ownership
func (s *PublisherService) findOwned(ctx context.Context, userID, listingID uuid.UUID) (*listing.Listing, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if l.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return l, nil
}

// logTransitionErr surfaces a rejected record state transition. The
// attempt loops only drive transitions valid for the status they hold
// under the pair lock, so a rejection here is a bug worth a log line.
func (s *PublisherService) logTransitionErr(record *channel.Record, err error) {
	if err != nil {
		s.logger.Warn("Record state transition rejected",
			zap.String("listing_id", record.ListingID.String()),
			zap.String("platform", string(record.Platform)),
			zap.String("status", string(record.Status)),
			zap.Error(err),
		)
	}
}

// saveRecord persists the record, logging rather than failing the
// operation when persistence itself breaks
func (s *PublisherService) saveRecord(ctx context.Context, record *channel.Record) {
	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Error("Failed to persist channel record",
			zap.String("listing_id", record.ListingID.String()),
			zap.String("platform", string(record.Platform)),
			zap.Error(err),
		)
	}
}

// blockingViolations returns the violations this platform requires fixed
func blockingViolations(violations []listing.FieldViolation, spec channel.ViewSpec) []string {
	blocked := make([]string, 0)
	for _, v := range violations {
		if spec.Requires(v.Field) {
			blocked = append(blocked, v.Message)
		}
	}
	return blocked
}

// sleepBackoff waits out a retry delay, aborting when the context ends
func sleepBackoff(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
