package channel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Typed adapter results
//
// Expected remote-side outcomes (rejection, unauthorized, transient failure)
// are values, never errors. Adapters return a non-nil error only for
// genuinely unexpected conditions such as broken configuration.
// ---------------------------------------------------------------------------

// ConnectionStatus is the result of a credential liveness check
type ConnectionStatus string

const (
	ConnectionAlive        ConnectionStatus = "alive"
	ConnectionUnreachable  ConnectionStatus = "unreachable"
	ConnectionUnauthorized ConnectionStatus = "unauthorized"
)

// PublishOutcomeKind classifies the result of a publish or update attempt
type PublishOutcomeKind string

const (
	// PublishOutcomePublished means the platform accepted the listing
	PublishOutcomePublished PublishOutcomeKind = "published"
	// PublishOutcomeRejected is a terminal rejection; retrying cannot fix it
	PublishOutcomeRejected PublishOutcomeKind = "rejected"
	// PublishOutcomeTransient is a retryable failure (network, rate limit, 5xx)
	PublishOutcomeTransient PublishOutcomeKind = "transient_failure"
)

// PublishResult is the typed result of publish and update operations
type PublishResult struct {
	Kind PublishOutcomeKind
	// RemoteID is the platform-assigned listing ID, set only when published
	RemoteID string
	// Reason carries the platform's message for rejected/transient outcomes
	Reason string
}

// Published builds a successful publish result
func Published(remoteID string) PublishResult {
	return PublishResult{Kind: PublishOutcomePublished, RemoteID: remoteID}
}

// Rejected builds a terminal rejection result
func Rejected(reason string) PublishResult {
	return PublishResult{Kind: PublishOutcomeRejected, Reason: reason}
}

// TransientPublishFailure builds a retryable failure result
func TransientPublishFailure(reason string) PublishResult {
	return PublishResult{Kind: PublishOutcomeTransient, Reason: reason}
}

// DelistOutcomeKind classifies the result of a delist attempt
type DelistOutcomeKind string

const (
	DelistOutcomeDelisted DelistOutcomeKind = "delisted"
	// DelistOutcomeAlreadyGone means the listing no longer exists remotely;
	// delisting is idempotent so this is treated as success
	DelistOutcomeAlreadyGone DelistOutcomeKind = "already_gone"
	DelistOutcomeTransient   DelistOutcomeKind = "transient_failure"
)

// DelistResult is the typed result of a delist operation
type DelistResult struct {
	Kind   DelistOutcomeKind
	Reason string
}

// IsSuccess returns true for outcomes that leave the remote listing gone
func (r DelistResult) IsSuccess() bool {
	return r.Kind == DelistOutcomeDelisted || r.Kind == DelistOutcomeAlreadyGone
}

// RawSaleEvent is a sale as reported by a platform, before deduplication
type RawSaleEvent struct {
	// NativeSaleID is the platform's own identifier for the sale
	NativeSaleID string
	// RemoteListingID is the platform's listing ID the sale resolves
	RemoteListingID string
	Price           decimal.Decimal
	Currency        string
	// BuyerRef is an opaque buyer reference from the platform
	BuyerRef   string
	OccurredAt time.Time
}

// ---------------------------------------------------------------------------
// Image constraints
// ---------------------------------------------------------------------------

// PlatformImageLimits describes a platform's photo constraints
type PlatformImageLimits struct {
	// MaxBytes is the maximum encoded size per photo
	MaxBytes int
	// MaxDimensionPx is the maximum length of the longest side
	MaxDimensionPx int
	// MaxCount is the maximum number of photos per listing
	MaxCount int
	// AllowedFormats lists acceptable mime types (e.g. image/jpeg)
	AllowedFormats []string
	// RequiresPhoto indicates the platform rejects photo-less listings
	RequiresPhoto bool
}

// AllowsFormat returns true if the mime type is acceptable as-is
func (l PlatformImageLimits) AllowsFormat(mime string) bool {
	for _, f := range l.AllowedFormats {
		if f == mime {
			return true
		}
	}
	return false
}

// PreparedPhoto is one photo transformed to satisfy a platform's limits
type PreparedPhoto struct {
	// SourceRef is the object-storage key the photo was prepared from
	SourceRef string
	Data      []byte
	// MimeType is the format actually used after re-encoding
	MimeType string
	Width    int
	Height   int
}

// ---------------------------------------------------------------------------
// Adapter port
// ---------------------------------------------------------------------------

// Adapter is the port interface every platform integration implements.
// Concrete adapters live in the infrastructure layer; the orchestrator never
// branches on platform identity, only on reported capabilities.
type Adapter interface {
	// PlatformCode returns the platform this adapter handles
	PlatformCode() PlatformCode

	// Family returns how this adapter realizes a publish
	Family() AdapterFamily

	// Capabilities returns the set of operations this adapter supports
	Capabilities() CapabilitySet

	// ImageLimits returns the platform's photo constraints
	ImageLimits() PlatformImageLimits

	// ViewSpec returns the field mapping used to project listings
	// onto this platform
	ViewSpec() ViewSpec

	// TestConnection checks whether the credential is usable
	TestConnection(ctx context.Context, cred *Credential) (ConnectionStatus, error)

	// Publish creates the listing on the platform
	Publish(ctx context.Context, view *PlatformView, photos []PreparedPhoto, cred *Credential) (PublishResult, error)

	// Update replaces the remote listing's content
	Update(ctx context.Context, remoteID string, view *PlatformView, cred *Credential) (PublishResult, error)

	// Delist removes the remote listing. Implementations without the delist
	// capability return ErrCapabilityMissing.
	Delist(ctx context.Context, remoteID string, cred *Credential) (DelistResult, error)

	// PullSales returns raw sale events since the given time. Implementations
	// without the pull_sales capability return ErrCapabilityMissing.
	PullSales(ctx context.Context, cred *Credential, since time.Time) ([]RawSaleEvent, error)
}

// TokenGrant is a fresh set of OAuth tokens issued by a platform
type TokenGrant struct {
	AccessToken string
	// RefreshToken is empty when the platform keeps the old refresh token valid
	RefreshToken string
	ExpiresAt    *time.Time
}

// CredentialRefresher is implemented by adapters whose platform supports
// an OAuth refresh grant. Adapters for static credentials do not implement
// it; their credentials can only be replaced by reconnecting.
type CredentialRefresher interface {
	// RefreshCredential exchanges the credential's refresh token for a
	// new token grant
	RefreshCredential(ctx context.Context, cred *Credential) (*TokenGrant, error)
}

// Registry provides access to the registered platform adapters
type Registry interface {
	// Get returns the adapter for the given platform code
	Get(code PlatformCode) (Adapter, error)

	// All returns every registered adapter
	All() []Adapter
}
