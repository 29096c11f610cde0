package scheduler

import (
	"context"
	"fmt"

	"github.com/crosslist/backend/internal/domain/channel"
)

// RegistryTargetProvider enumerates sync targets from the adapter registry
// and the stored credentials: every credential on a pull-capable platform
// is one target per round.
type RegistryTargetProvider struct {
	registry channel.Registry
	creds    channel.CredentialRepository
}

// NewRegistryTargetProvider creates a target provider over the registry
func NewRegistryTargetProvider(registry channel.Registry, creds channel.CredentialRepository) *RegistryTargetProvider {
	return &RegistryTargetProvider{
		registry: registry,
		creds:    creds,
	}
}

// ListTargets returns one target per (user, pull-capable platform) pair
func (p *RegistryTargetProvider) ListTargets(ctx context.Context) ([]SalesSyncTarget, error) {
	targets := make([]SalesSyncTarget, 0)

	for _, adapter := range p.registry.All() {
		if !adapter.Capabilities().Has(channel.CapabilityPullSales) {
			continue
		}

		creds, err := p.creds.FindAllByPlatform(ctx, adapter.PlatformCode())
		if err != nil {
			return nil, fmt.Errorf("list credentials for %s: %w", adapter.PlatformCode(), err)
		}
		for _, cred := range creds {
			targets = append(targets, SalesSyncTarget{
				UserID:   cred.UserID,
				Platform: cred.Platform,
			})
		}
	}

	return targets, nil
}

// Compile-time interface check
var _ SalesSyncTargetProvider = (*RegistryTargetProvider)(nil)
