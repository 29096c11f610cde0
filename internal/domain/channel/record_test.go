package channel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord() *Record {
	return NewRecord(uuid.New(), uuid.New(), PlatformEbay)
}

func TestNewRecord(t *testing.T) {
	r := newTestRecord()
	assert.Equal(t, StatusPending, r.Status)
	assert.Zero(t, r.AttemptCount)
	assert.Empty(t, r.RemoteID)
	assert.Empty(t, r.History)
}

func TestRecordPublish(t *testing.T) {
	t.Run("pending to published", func(t *testing.T) {
		r := newTestRecord()
		r.BeginAttempt()
		require.NoError(t, r.MarkPublished("EB-123", "ok"))

		assert.Equal(t, StatusPublished, r.Status)
		assert.Equal(t, "EB-123", r.RemoteID)
		assert.True(t, r.IsPublished())
		require.Len(t, r.History, 1)
		assert.Equal(t, "publish", r.History[0].Operation)
		assert.Equal(t, 1, r.History[0].Attempt)
		require.NotNil(t, r.LastAttemptAt)
	})

	t.Run("published cannot publish again", func(t *testing.T) {
		r := newTestRecord()
		require.NoError(t, r.MarkPublished("EB-123", ""))
		assert.ErrorIs(t, r.MarkPublished("EB-456", ""), ErrInvalidTransition)
	})

	t.Run("pending to publish_failed", func(t *testing.T) {
		r := newTestRecord()
		r.BeginAttempt()
		require.NoError(t, r.MarkPublishFailed("title too long"))
		assert.Equal(t, StatusPublishFailed, r.Status)
		assert.Equal(t, "title too long", r.LastError)
	})

	t.Run("transient failures accumulate history without state change", func(t *testing.T) {
		r := newTestRecord()
		r.BeginAttempt()
		r.RecordTransientFailure("publish", "timeout")
		r.BeginAttempt()
		r.RecordTransientFailure("publish", "rate limited")
		r.BeginAttempt()
		require.NoError(t, r.MarkPublished("EB-9", ""))

		assert.Equal(t, StatusPublished, r.Status)
		assert.Equal(t, 3, r.AttemptCount)
		require.Len(t, r.History, 3)
		assert.Equal(t, "timeout", r.History[0].Message)
		assert.Equal(t, "rate limited", r.History[1].Message)
	})
}

func TestRecordDelist(t *testing.T) {
	published := func(t *testing.T) *Record {
		r := newTestRecord()
		require.NoError(t, r.MarkPublished("EB-1", ""))
		return r
	}

	t.Run("published to delisted", func(t *testing.T) {
		r := published(t)
		require.NoError(t, r.MarkDelisted("removed"))
		assert.Equal(t, StatusDelisted, r.Status)
	})

	t.Run("delisting twice is a no-op", func(t *testing.T) {
		r := published(t)
		require.NoError(t, r.MarkDelisted(""))
		require.NoError(t, r.MarkDelisted(""))
		assert.Equal(t, StatusDelisted, r.Status)
	})

	t.Run("pending cannot delist", func(t *testing.T) {
		r := newTestRecord()
		assert.ErrorIs(t, r.MarkDelisted(""), ErrInvalidTransition)
	})

	t.Run("published to delist_failed then delisted on retry", func(t *testing.T) {
		r := published(t)
		require.NoError(t, r.MarkDelistFailed("platform down"))
		assert.Equal(t, StatusDelistFailed, r.Status)
		require.NoError(t, r.MarkDelisted("gone on retry"))
		assert.Equal(t, StatusDelisted, r.Status)
	})
}

func TestRecordUpdateOutcome(t *testing.T) {
	r := newTestRecord()
	require.NoError(t, r.MarkPublished("EB-1", ""))

	r.RecordUpdateOutcome(string(PublishOutcomeTransient), "timeout")
	assert.Equal(t, StatusPublished, r.Status)
	assert.Equal(t, "timeout", r.LastError)

	r.RecordUpdateOutcome(string(PublishOutcomePublished), "")
	assert.Equal(t, StatusPublished, r.Status)
}

func TestRecordReopen(t *testing.T) {
	t.Run("delisted record reopens for republish", func(t *testing.T) {
		r := newTestRecord()
		require.NoError(t, r.MarkPublished("EB-1", ""))
		require.NoError(t, r.MarkDelisted(""))
		require.NoError(t, r.Reopen())

		assert.Equal(t, StatusPending, r.Status)
		assert.Empty(t, r.RemoteID)
		assert.Zero(t, r.AttemptCount)
		// history survives the reopen
		assert.Len(t, r.History, 2)
	})

	t.Run("published record cannot reopen", func(t *testing.T) {
		r := newTestRecord()
		require.NoError(t, r.MarkPublished("EB-1", ""))
		assert.ErrorIs(t, r.Reopen(), ErrInvalidTransition)
	})
}
