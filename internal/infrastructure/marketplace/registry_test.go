package marketplace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/infrastructure/storage"
)

// timeZero is a readable zero watermark for capability tests
func timeZero() time.Time {
	return time.Time{}
}

func TestStaticRegistry(t *testing.T) {
	store := storage.NewMemoryObjectStorage()

	ebay, err := NewEbayAdapter(NewEbayConfig("id", "secret"))
	require.NoError(t, err)
	shopify := NewShopifyCSVAdapter(store, 0)
	craigslist, err := NewCraigslistTemplateAdapter(store)
	require.NoError(t, err)

	registry := NewRegistry(ebay, shopify, craigslist)

	t.Run("resolves adapters by code", func(t *testing.T) {
		for _, code := range channel.AllPlatformCodes() {
			adapter, err := registry.Get(code)
			require.NoError(t, err)
			assert.Equal(t, code, adapter.PlatformCode())
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := registry.Get(channel.PlatformCode("AMAZON"))
		assert.ErrorIs(t, err, channel.ErrAdapterNotFound)
	})

	t.Run("all is ordered by code", func(t *testing.T) {
		all := registry.All()
		require.Len(t, all, 3)
		assert.Equal(t, channel.PlatformCraigslist, all[0].PlatformCode())
		assert.Equal(t, channel.PlatformEbay, all[1].PlatformCode())
		assert.Equal(t, channel.PlatformShopify, all[2].PlatformCode())
	})
}
