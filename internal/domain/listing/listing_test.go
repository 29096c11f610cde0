package listing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustListing(t *testing.T) *Listing {
	t.Helper()
	l, err := NewListing(uuid.New(), "Vintage camera", decimal.NewFromInt(100), "USD")
	require.NoError(t, err)
	l.Photos = []string{"photos/a.jpg"}
	return l
}

func TestNewListing(t *testing.T) {
	t.Run("creates draft listing", func(t *testing.T) {
		userID := uuid.New()
		l, err := NewListing(userID, "Vintage camera", decimal.NewFromFloat(120.50), "USD")
		require.NoError(t, err)
		require.NotNil(t, l)

		assert.Equal(t, userID, l.UserID)
		assert.Equal(t, "Vintage camera", l.Title)
		assert.True(t, l.Price.Equal(decimal.NewFromFloat(120.50)))
		assert.Equal(t, "USD", l.Currency)
		assert.Equal(t, StateDraft, l.State)
		assert.Equal(t, 1, l.Quantity)
		assert.NotEmpty(t, l.ID)
		assert.False(t, l.IsDeleted())
	})

	t.Run("rejects nil owner", func(t *testing.T) {
		_, err := NewListing(uuid.Nil, "Camera", decimal.NewFromInt(100), "USD")
		assert.ErrorIs(t, err, ErrInvalidOwner)
	})
}

func TestListingValidate(t *testing.T) {
	t.Run("valid listing has no violations", func(t *testing.T) {
		assert.Empty(t, mustListing(t).Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		l := mustListing(t)
		l.Title = ""
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "title", violations[0].Field)
	})

	t.Run("non-positive price", func(t *testing.T) {
		l := mustListing(t)
		l.Price = decimal.Zero
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "price", violations[0].Field)
	})

	t.Run("bad currency", func(t *testing.T) {
		l := mustListing(t)
		l.Currency = "DOLLARS"
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "currency", violations[0].Field)
	})

	t.Run("invalid condition", func(t *testing.T) {
		l := mustListing(t)
		l.Condition = Condition("mint")
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "condition", violations[0].Field)
	})

	t.Run("zero quantity", func(t *testing.T) {
		l := mustListing(t)
		l.Quantity = 0
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "quantity", violations[0].Field)
	})

	t.Run("no photos", func(t *testing.T) {
		l := mustListing(t)
		l.Photos = nil
		violations := l.Validate()
		require.Len(t, violations, 1)
		assert.Equal(t, "photos", violations[0].Field)
	})

	t.Run("collects multiple violations", func(t *testing.T) {
		l := mustListing(t)
		l.Title = ""
		l.Price = decimal.NewFromInt(-5)
		l.Photos = nil
		assert.Len(t, l.Validate(), 3)
	})
}

func TestListingLifecycle(t *testing.T) {
	newActive := func(t *testing.T) *Listing {
		l := mustListing(t)
		require.NoError(t, l.Activate())
		return l
	}

	t.Run("draft activates", func(t *testing.T) {
		l := mustListing(t)
		require.NoError(t, l.Activate())
		assert.Equal(t, StateActive, l.State)
	})

	t.Run("active cannot activate again", func(t *testing.T) {
		l := newActive(t)
		assert.ErrorIs(t, l.Activate(), ErrInvalidTransition)
	})

	t.Run("active marks sold", func(t *testing.T) {
		l := newActive(t)
		require.NoError(t, l.MarkSold())
		assert.Equal(t, StateSold, l.State)
	})

	t.Run("second sale reports already sold", func(t *testing.T) {
		l := newActive(t)
		require.NoError(t, l.MarkSold())
		assert.ErrorIs(t, l.MarkSold(), ErrAlreadySold)
	})

	t.Run("draft cannot be sold", func(t *testing.T) {
		l := mustListing(t)
		assert.ErrorIs(t, l.MarkSold(), ErrInvalidTransition)
	})

	t.Run("sold archives", func(t *testing.T) {
		l := newActive(t)
		require.NoError(t, l.MarkSold())
		require.NoError(t, l.Archive())
		assert.Equal(t, StateArchived, l.State)
	})

	t.Run("active archives", func(t *testing.T) {
		l := newActive(t)
		require.NoError(t, l.Archive())
		assert.Equal(t, StateArchived, l.State)
	})

	t.Run("archived cannot be sold", func(t *testing.T) {
		l := newActive(t)
		require.NoError(t, l.Archive())
		assert.ErrorIs(t, l.MarkSold(), ErrInvalidTransition)
	})
}

func TestListingSoftDelete(t *testing.T) {
	l := mustListing(t)
	assert.False(t, l.IsDeleted())
	l.SoftDelete()
	assert.True(t, l.IsDeleted())
	require.NotNil(t, l.DeletedAt)
}

func TestPrimaryPhoto(t *testing.T) {
	l, err := NewListing(uuid.New(), "Camera", decimal.NewFromInt(100), "USD")
	require.NoError(t, err)

	t.Run("empty when no photos", func(t *testing.T) {
		assert.Empty(t, l.PrimaryPhoto())
	})

	t.Run("first photo is primary", func(t *testing.T) {
		l.Photos = []string{"photos/front.jpg", "photos/back.jpg"}
		assert.Equal(t, "photos/front.jpg", l.PrimaryPhoto())
	})
}
