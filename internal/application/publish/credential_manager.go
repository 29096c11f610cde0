package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/shared"
)

// CredentialManager gates every platform call behind a credential
// liveness check. An adapter is never invoked with a credential that
// failed its check, so remote operations cannot half-run on dead tokens.
type CredentialManager struct {
	creds  channel.CredentialRepository
	logger *zap.Logger
}

// NewCredentialManager creates a new credential manager
func NewCredentialManager(creds channel.CredentialRepository, logger *zap.Logger) *CredentialManager {
	return &CredentialManager{
		creds:  creds,
		logger: logger,
	}
}

// EnsureLive returns a credential that just passed the adapter's
// connection test. An unauthorized OAuth credential gets exactly one
// refresh attempt; a static credential can only be replaced by the
// seller reconnecting.
func (m *CredentialManager) EnsureLive(ctx context.Context, adapter channel.Adapter, userID uuid.UUID) (*channel.Credential, error) {
	cred, err := m.creds.FindByUserAndPlatform(ctx, userID, adapter.PlatformCode())
	if err != nil {
		return nil, shared.ErrNotConnected
	}

	status, err := adapter.TestConnection(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("connection test: %w", err)
	}

	switch status {
	case channel.ConnectionAlive:
		m.markVerified(ctx, cred)
		return cred, nil
	case channel.ConnectionUnreachable:
		return nil, fmt.Errorf("%w: %s", channel.ErrPlatformUnavailable, adapter.PlatformCode())
	case channel.ConnectionUnauthorized:
		return m.refreshAndRetest(ctx, adapter, cred)
	default:
		return nil, fmt.Errorf("connection test returned unknown status %q", status)
	}
}

// refreshAndRetest performs the single refresh attempt allowed after an
// unauthorized result
func (m *CredentialManager) refreshAndRetest(ctx context.Context, adapter channel.Adapter, cred *channel.Credential) (*channel.Credential, error) {
	refresher, ok := adapter.(channel.CredentialRefresher)
	if !ok || !cred.HasRefreshToken() {
		return nil, shared.ErrReconnectRequired
	}

	grant, err := refresher.RefreshCredential(ctx, cred)
	if err != nil {
		m.logger.Warn("Credential refresh failed",
			zap.String("platform", string(adapter.PlatformCode())),
			zap.String("user_id", cred.UserID.String()),
			zap.Error(err),
		)
		return nil, shared.ErrReconnectRequired
	}

	if err := cred.ApplyRefresh(grant.AccessToken, grant.RefreshToken, grant.ExpiresAt); err != nil {
		return nil, err
	}
	if err := m.creds.Save(ctx, cred); err != nil {
		return nil, err
	}

	status, err := adapter.TestConnection(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("connection re-test: %w", err)
	}
	if status != channel.ConnectionAlive {
		// The refreshed token was refused too; only a reconnect can fix this
		return nil, shared.ErrReconnectRequired
	}

	m.markVerified(ctx, cred)
	m.logger.Info("Credential refreshed",
		zap.String("platform", string(adapter.PlatformCode())),
		zap.String("user_id", cred.UserID.String()),
	)
	return cred, nil
}

// markVerified stamps and persists the successful liveness check.
// Persisting is best effort; the caller already holds a live credential.
func (m *CredentialManager) markVerified(ctx context.Context, cred *channel.Credential) {
	cred.MarkVerified(time.Now())
	if err := m.creds.Save(ctx, cred); err != nil {
		m.logger.Warn("Failed to persist credential verification",
			zap.String("platform", string(cred.Platform)),
			zap.String("user_id", cred.UserID.String()),
			zap.Error(err),
		)
	}
}
