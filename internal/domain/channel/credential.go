package channel

import (
	"time"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Credential
// ---------------------------------------------------------------------------

// CredentialKind distinguishes refreshable token pairs from static secrets
type CredentialKind string

const (
	// CredentialKindOAuth is an access/refresh token pair
	CredentialKindOAuth CredentialKind = "oauth"
	// CredentialKindStatic is an opaque secret with no refresh path
	CredentialKindStatic CredentialKind = "static"
)

// Credential holds a user's connection to one platform.
// There is at most one credential per (user, platform) pair.
type Credential struct {
	shared.BaseEntity
	UserID   uuid.UUID
	Platform PlatformCode
	Kind     CredentialKind

	// AccessToken and RefreshToken are set for oauth credentials
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time

	// Secret is set for static credentials
	Secret string

	// VerifiedAt is the time of the last successful liveness check
	VerifiedAt *time.Time

	// LastPullAt is the sales-sync watermark: sales are pulled since this time
	LastPullAt *time.Time
}

// NewOAuthCredential creates a refreshable credential for a platform
func NewOAuthCredential(userID uuid.UUID, platform PlatformCode, accessToken, refreshToken string, expiresAt *time.Time) *Credential {
	return &Credential{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		Platform:     platform,
		Kind:         CredentialKindOAuth,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
}

// NewStaticCredential creates a non-refreshable credential for a platform
func NewStaticCredential(userID uuid.UUID, platform PlatformCode, secret string) *Credential {
	return &Credential{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Platform:   platform,
		Kind:       CredentialKindStatic,
		Secret:     secret,
	}
}

// HasRefreshToken returns true when an unauthorized result can be retried
// after a token refresh
func (c *Credential) HasRefreshToken() bool {
	return c.Kind == CredentialKindOAuth && c.RefreshToken != ""
}

// IsExpired returns true when the access token is past its expiry
func (c *Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// MarkVerified records a successful liveness check
func (c *Credential) MarkVerified(at time.Time) {
	c.VerifiedAt = &at
	c.Touch()
}

// ApplyRefresh installs a new token pair after a successful refresh grant
func (c *Credential) ApplyRefresh(accessToken, refreshToken string, expiresAt *time.Time) error {
	if c.Kind != CredentialKindOAuth {
		return ErrRefreshUnsupported
	}
	c.AccessToken = accessToken
	if refreshToken != "" {
		c.RefreshToken = refreshToken
	}
	c.ExpiresAt = expiresAt
	c.Touch()
	return nil
}

// AdvancePullWatermark moves the sales-sync watermark forward.
// The watermark never moves backwards so re-pulls cannot widen the window.
func (c *Credential) AdvancePullWatermark(to time.Time) {
	if c.LastPullAt != nil && !to.After(*c.LastPullAt) {
		return
	}
	c.LastPullAt = &to
	c.Touch()
}

// PullSince returns the time sales should be pulled from
func (c *Credential) PullSince(fallback time.Duration, now time.Time) time.Time {
	if c.LastPullAt != nil {
		return *c.LastPullAt
	}
	return now.Add(-fallback)
}
