package connection

import (
	"time"

	"github.com/crosslist/backend/internal/domain/channel"
)

// ConnectRequest carries the credential material for connecting a platform
type ConnectRequest struct {
	Platform     string     `json:"platform" binding:"required,oneof=EBAY SHOPIFY CRAIGSLIST"`
	Kind         string     `json:"kind" binding:"required,oneof=oauth static"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Secret       string     `json:"secret,omitempty"`
}

// ConnectionResponse describes one connected platform
type ConnectionResponse struct {
	Platform     channel.PlatformCode   `json:"platform"`
	Kind         channel.CredentialKind `json:"kind"`
	VerifiedAt   *time.Time             `json:"verified_at,omitempty"`
	LastPullAt   *time.Time             `json:"last_pull_at,omitempty"`
	CanRefresh   bool                   `json:"can_refresh"`
	Capabilities []string               `json:"capabilities,omitempty"`
}

// ListConnectionsResponse lists a user's connected platforms
type ListConnectionsResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// TestResponse reports the result of a connection liveness check
type TestResponse struct {
	Platform channel.PlatformCode `json:"platform"`
	Alive    bool                 `json:"alive"`
	TestedAt time.Time            `json:"tested_at"`
}

func toConnectionResponse(cred *channel.Credential, capabilities []string) ConnectionResponse {
	return ConnectionResponse{
		Platform:     cred.Platform,
		Kind:         cred.Kind,
		VerifiedAt:   cred.VerifiedAt,
		LastPullAt:   cred.LastPullAt,
		CanRefresh:   cred.HasRefreshToken(),
		Capabilities: capabilities,
	}
}
