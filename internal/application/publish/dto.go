package publish

import (
	"time"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/domain/channel"
)

// PlatformOutcome classifies what one platform operation ended as
type PlatformOutcome string

const (
	// OutcomePublished means the platform accepted the listing
	OutcomePublished PlatformOutcome = "published"
	// OutcomeUpdated means the remote listing content was replaced
	OutcomeUpdated PlatformOutcome = "updated"
	// OutcomeDelisted means the remote listing is gone
	OutcomeDelisted PlatformOutcome = "delisted"
	// OutcomeRejected is a terminal platform rejection
	OutcomeRejected PlatformOutcome = "rejected"
	// OutcomeRetriesExhausted means every transient retry failed
	OutcomeRetriesExhausted PlatformOutcome = "retries_exhausted"
	// OutcomeAuthFailed means the credential was refused mid-operation
	OutcomeAuthFailed PlatformOutcome = "auth_failed"
	// OutcomeBlocked means listing validation blocked the operation
	OutcomeBlocked PlatformOutcome = "blocked"
	// OutcomeUnsupported means the adapter lacks the capability
	OutcomeUnsupported PlatformOutcome = "unsupported"
	// OutcomeSkipped means there was nothing to do for this platform
	OutcomeSkipped PlatformOutcome = "skipped"
	// OutcomeFailed is an unexpected internal failure
	OutcomeFailed PlatformOutcome = "failed"
)

// PlatformResult is the outcome of one platform operation in a fan-out
type PlatformResult struct {
	Platform channel.PlatformCode `json:"platform"`
	Outcome  PlatformOutcome      `json:"outcome"`
	RemoteID string               `json:"remote_id,omitempty"`
	Reason   string               `json:"reason,omitempty"`
	Attempts int                  `json:"attempts,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

// FanoutResult collects per-platform results of one operation. Error is
// set when the fan-out could not even enumerate its targets; failures of
// individual platforms live in Results.
type FanoutResult struct {
	ListingID uuid.UUID        `json:"listing_id"`
	Results   []PlatformResult `json:"results"`
	Error     string           `json:"error,omitempty"`
}

// ResultFor returns the result for one platform, if present
func (r *FanoutResult) ResultFor(platform channel.PlatformCode) (PlatformResult, bool) {
	for _, result := range r.Results {
		if result.Platform == platform {
			return result, true
		}
	}
	return PlatformResult{}, false
}

// Succeeded counts results with a success outcome
func (r *FanoutResult) Succeeded() int {
	n := 0
	for _, result := range r.Results {
		switch result.Outcome {
		case OutcomePublished, OutcomeUpdated, OutcomeDelisted:
			n++
		}
	}
	return n
}

// RecordStatus is one platform's publication state for a listing
type RecordStatus struct {
	Platform      channel.PlatformCode      `json:"platform"`
	Status        channel.PublicationStatus `json:"status"`
	RemoteID      string                    `json:"remote_id,omitempty"`
	AttemptCount  int                       `json:"attempt_count"`
	LastError     string                    `json:"last_error,omitempty"`
	LastAttemptAt *time.Time                `json:"last_attempt_at,omitempty"`
	History       []channel.AttemptLogEntry `json:"history"`
}

// StatusResponse is the per-platform status of one listing
type StatusResponse struct {
	ListingID uuid.UUID      `json:"listing_id"`
	Records   []RecordStatus `json:"records"`
}
