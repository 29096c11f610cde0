package channel

import (
	"time"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// PublicationStatus
// ---------------------------------------------------------------------------

// PublicationStatus is the per-platform publication state of a listing
type PublicationStatus string

const (
	// StatusPending means a publish has been requested but not yet succeeded
	StatusPending PublicationStatus = "pending"
	// StatusPublished means the platform accepted the listing
	StatusPublished PublicationStatus = "published"
	// StatusPublishFailed is terminal after retries or a terminal rejection
	StatusPublishFailed PublicationStatus = "publish_failed"
	// StatusDelisted means the listing was withdrawn from the platform
	StatusDelisted PublicationStatus = "delisted"
	// StatusDelistFailed is terminal after delist retries; surfaced for
	// manual follow-up since a stale live listing is user-visible
	StatusDelistFailed PublicationStatus = "delist_failed"
)

// IsValid returns true if the status is one of the known values
func (s PublicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPublished, StatusPublishFailed, StatusDelisted, StatusDelistFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of PublicationStatus
func (s PublicationStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// AttemptLogEntry
// ---------------------------------------------------------------------------

// AttemptLogEntry is one immutable entry in a record's attempt history
type AttemptLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Attempt   int       `json:"attempt"`
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	// Message carries the raw adapter message for user-facing diagnostics
	Message string `json:"message,omitempty"`
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

// Record tracks the publication of one listing on one platform.
// There is at most one record per (listing, platform) pair; records are
// never deleted so delisted history stays available for audit.
type Record struct {
	shared.BaseEntity
	ListingID uuid.UUID
	UserID    uuid.UUID
	Platform  PlatformCode
	// RemoteID is the platform-assigned listing ID, empty until published
	RemoteID      string
	Status        PublicationStatus
	AttemptCount  int
	LastError     string
	LastAttemptAt *time.Time
	History       []AttemptLogEntry
}

// NewRecord creates a pending record for a (listing, platform) pair
func NewRecord(listingID, userID uuid.UUID, platform PlatformCode) *Record {
	return &Record{
		BaseEntity: shared.NewBaseEntity(),
		ListingID:  listingID,
		UserID:     userID,
		Platform:   platform,
		Status:     StatusPending,
		History:    make([]AttemptLogEntry, 0),
	}
}

// logAttempt appends an immutable history entry and stamps the attempt time
func (r *Record) logAttempt(operation, outcome, message string) {
	now := time.Now()
	r.History = append(r.History, AttemptLogEntry{
		Timestamp: now,
		Attempt:   r.AttemptCount,
		Operation: operation,
		Outcome:   outcome,
		Message:   message,
	})
	r.LastAttemptAt = &now
	r.Touch()
}

// BeginAttempt counts a new publish or delist attempt against the record
func (r *Record) BeginAttempt() {
	r.AttemptCount++
}

// ResetAttempts clears the attempt counter for a fresh operation cycle
func (r *Record) ResetAttempts() {
	r.AttemptCount = 0
	r.LastError = ""
}

// MarkPublished transitions the record to published
func (r *Record) MarkPublished(remoteID, message string) error {
	if r.Status != StatusPending && r.Status != StatusDelisted {
		return ErrInvalidTransition
	}
	r.Status = StatusPublished
	r.RemoteID = remoteID
	r.LastError = ""
	r.logAttempt("publish", string(PublishOutcomePublished), message)
	return nil
}

// MarkPublishFailed transitions the record to the terminal publish_failed
// state, either after exhausting retries or on a terminal rejection
func (r *Record) MarkPublishFailed(reason string) error {
	if r.Status != StatusPending {
		return ErrInvalidTransition
	}
	r.Status = StatusPublishFailed
	r.LastError = reason
	r.logAttempt("publish", "failed", reason)
	return nil
}

// RecordTransientFailure logs a retryable failure without changing state
func (r *Record) RecordTransientFailure(operation, reason string) {
	r.LastError = reason
	r.logAttempt(operation, string(PublishOutcomeTransient), reason)
}

// RecordUpdateOutcome logs an update attempt. Updates never change the
// publication status: the previously published listing stays authoritative.
func (r *Record) RecordUpdateOutcome(outcome, message string) {
	if outcome != string(PublishOutcomePublished) {
		r.LastError = message
	}
	r.logAttempt("update", outcome, message)
}

// RecordAuthorizationFailure logs a credential failure that aborted an
// operation before the adapter was invoked
func (r *Record) RecordAuthorizationFailure(reason string) {
	r.LastError = reason
	r.logAttempt("credential", "unauthorized", reason)
}

// MarkDelisted transitions the record to delisted. AlreadyGone outcomes
// use this path too: delisting is idempotent.
func (r *Record) MarkDelisted(message string) error {
	if r.Status == StatusDelisted {
		return nil
	}
	if r.Status != StatusPublished && r.Status != StatusDelistFailed {
		return ErrInvalidTransition
	}
	r.Status = StatusDelisted
	r.LastError = ""
	r.logAttempt("delist", string(DelistOutcomeDelisted), message)
	return nil
}

// MarkDelistFailed transitions the record to delist_failed after retries
func (r *Record) MarkDelistFailed(reason string) error {
	if r.Status != StatusPublished {
		return ErrInvalidTransition
	}
	r.Status = StatusDelistFailed
	r.LastError = reason
	r.logAttempt("delist", "failed", reason)
	return nil
}

// Reopen returns a failed or delisted record to pending for a new publish
func (r *Record) Reopen() error {
	if r.Status != StatusPublishFailed && r.Status != StatusDelisted && r.Status != StatusDelistFailed {
		return ErrInvalidTransition
	}
	r.Status = StatusPending
	r.RemoteID = ""
	r.ResetAttempts()
	r.Touch()
	return nil
}

// IsPublished returns true when the listing is live on the platform
func (r *Record) IsPublished() bool {
	return r.Status == StatusPublished
}
