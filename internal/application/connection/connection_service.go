package connection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/shared"
)

// Service manages platform connections: storing, testing, and removing
// the credentials behind each marketplace integration
type Service struct {
	creds       channel.CredentialRepository
	registry    channel.Registry
	credManager *publish.CredentialManager
	logger      *zap.Logger
}

// NewService creates a new connection service
func NewService(creds channel.CredentialRepository, registry channel.Registry, credManager *publish.CredentialManager, logger *zap.Logger) *Service {
	return &Service{
		creds:       creds,
		registry:    registry,
		credManager: credManager,
		logger:      logger,
	}
}

// Connect stores a credential for a platform after verifying it against
// the live platform. A credential that fails its first connection test is
// never stored.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, req ConnectRequest) (*ConnectionResponse, error) {
	platform := channel.PlatformCode(req.Platform)
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PLATFORM", fmt.Sprintf("Unknown platform %q", req.Platform))
	}

	cred, err := buildCredential(userID, platform, req)
	if err != nil {
		return nil, err
	}

	status, err := adapter.TestConnection(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("connection test: %w", err)
	}
	switch status {
	case channel.ConnectionAlive:
		// fall through to store
	case channel.ConnectionUnauthorized:
		return nil, shared.NewDomainError("INVALID_INPUT", "Platform rejected the provided credential")
	case channel.ConnectionUnreachable:
		return nil, fmt.Errorf("%w: %s", channel.ErrPlatformUnavailable, platform)
	default:
		return nil, fmt.Errorf("connection test returned unknown status %q", status)
	}

	cred.MarkVerified(time.Now())
	if err := s.creds.Save(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info("Platform connected",
		zap.String("platform", string(platform)),
		zap.String("user_id", userID.String()),
		zap.String("kind", string(cred.Kind)),
	)

	resp := toConnectionResponse(cred, capabilityNames(adapter.Capabilities()))
	return &resp, nil
}

// Disconnect removes the credential for a platform. Publication records
// are left untouched; the remote listings stay up until delisted.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode) error {
	if _, err := s.creds.FindByUserAndPlatform(ctx, userID, platform); err != nil {
		return shared.ErrNotConnected
	}
	if err := s.creds.Delete(ctx, userID, platform); err != nil {
		return err
	}

	s.logger.Info("Platform disconnected",
		zap.String("platform", string(platform)),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// List returns the user's connected platforms
func (s *Service) List(ctx context.Context, userID uuid.UUID) (*ListConnectionsResponse, error) {
	creds, err := s.creds.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ListConnectionsResponse{
		Connections: make([]ConnectionResponse, 0, len(creds)),
	}
	for _, cred := range creds {
		var caps []string
		if adapter, err := s.registry.Get(cred.Platform); err == nil {
			caps = capabilityNames(adapter.Capabilities())
		}
		resp.Connections = append(resp.Connections, toConnectionResponse(cred, caps))
	}
	return resp, nil
}

// Test runs the full liveness check against a connected platform,
// including the single refresh attempt an unauthorized OAuth credential
// is allowed
func (s *Service) Test(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode) (*TestResponse, error) {
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PLATFORM", fmt.Sprintf("Unknown platform %q", platform))
	}

	_, err = s.credManager.EnsureLive(ctx, adapter, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotConnected) || errors.Is(err, shared.ErrReconnectRequired) {
			return nil, err
		}
		if errors.Is(err, channel.ErrPlatformUnavailable) {
			return &TestResponse{Platform: platform, Alive: false, TestedAt: time.Now()}, nil
		}
		return nil, err
	}
	return &TestResponse{Platform: platform, Alive: true, TestedAt: time.Now()}, nil
}

// buildCredential validates the request shape and constructs the entity
func buildCredential(userID uuid.UUID, platform channel.PlatformCode, req ConnectRequest) (*channel.Credential, error) {
	switch channel.CredentialKind(req.Kind) {
	case channel.CredentialKindOAuth:
		if req.AccessToken == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "An OAuth connection requires an access token")
		}
		return channel.NewOAuthCredential(userID, platform, req.AccessToken, req.RefreshToken, req.ExpiresAt), nil
	case channel.CredentialKindStatic:
		if req.Secret == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "A static connection requires a secret")
		}
		return channel.NewStaticCredential(userID, platform, req.Secret), nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown credential kind %q", req.Kind))
	}
}

// capabilityNames flattens a capability set into a sorted string list
func capabilityNames(set channel.CapabilitySet) []string {
	names := make([]string, 0, len(set))
	for c, ok := range set {
		if ok {
			names = append(names, string(c))
		}
	}
	sort.Strings(names)
	return names
}
