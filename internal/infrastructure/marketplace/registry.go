package marketplace

import (
	"fmt"
	"sort"

	"github.com/crosslist/backend/internal/domain/channel"
)

// StaticRegistry is a fixed set of platform adapters resolved by code.
// The platform set is closed, so the registry is built once at startup
// and never mutated.
type StaticRegistry struct {
	adapters map[channel.PlatformCode]channel.Adapter
}

// NewRegistry builds a registry from the given adapters
func NewRegistry(adapters ...channel.Adapter) *StaticRegistry {
	m := make(map[channel.PlatformCode]channel.Adapter, len(adapters))
	for _, a := range adapters {
		m[a.PlatformCode()] = a
	}
	return &StaticRegistry{adapters: m}
}

// Get returns the adapter for the given platform code
func (r *StaticRegistry) Get(code channel.PlatformCode) (channel.Adapter, error) {
	a, ok := r.adapters[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", channel.ErrAdapterNotFound, code)
	}
	return a, nil
}

// All returns every registered adapter, ordered by platform code
func (r *StaticRegistry) All() []channel.Adapter {
	all := make([]channel.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].PlatformCode() < all[j].PlatformCode()
	})
	return all
}

// Compile-time interface check
var _ channel.Registry = (*StaticRegistry)(nil)
