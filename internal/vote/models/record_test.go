package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

func TestRecordCheckPresented(t *testing.T) {
	now := time.Now()

	t.Run("matching revision on available record passes", func(t *testing.T) {
		r := NewRecord("A12345678", id.RevisionInitial, now)
		require.NoError(t, r.CheckPresented(id.RevisionInitial))
	})

	t.Run("revision mismatch rejected regardless of state", func(t *testing.T) {
		r := NewRecord("A12345678", id.RevisionInitial, now)
		assert.ErrorIs(t, r.CheckPresented(id.RevisionReissued), sentinel.ErrRevisionMismatch)

		require.NoError(t, r.Consume(id.RevisionInitial, now))
		// Mismatch wins over already-used: it is the stronger signal.
		assert.ErrorIs(t, r.CheckPresented(id.RevisionReissued), sentinel.ErrRevisionMismatch)
	})

	t.Run("used record rejects matching revision", func(t *testing.T) {
		r := NewRecord("A12345678", id.RevisionInitial, now)
		require.NoError(t, r.Consume(id.RevisionInitial, now))
		assert.ErrorIs(t, r.CheckPresented(id.RevisionInitial), sentinel.ErrAlreadyUsed)
	})
}

func TestRecordConsumeIsTerminal(t *testing.T) {
	now := time.Now()
	r := NewRecord("A12345678", id.RevisionInitial, now)

	require.NoError(t, r.Consume(id.RevisionInitial, now))
	assert.True(t, r.IsUsed())

	assert.ErrorIs(t, r.Consume(id.RevisionInitial, now), sentinel.ErrAlreadyUsed)
	assert.ErrorIs(t, r.Consume(id.RevisionReissued, now), sentinel.ErrRevisionMismatch)
}

func TestAuthCodeMarkIssuedIsTerminal(t *testing.T) {
	now := time.Now()
	c := &AuthCode{Code: "X1Y2Z3", Kind: "3U"}

	require.NoError(t, c.MarkIssued(now))
	assert.True(t, c.Issued)
	assert.Equal(t, now, c.IssuedAt)

	assert.ErrorIs(t, c.MarkIssued(now), sentinel.ErrAlreadyUsed)
}

func TestCatalog(t *testing.T) {
	cat := Catalog{"3U": "社科院大學部", "NU": "其他學院大學部"}

	assert.True(t, cat.Valid("3U"))
	assert.False(t, cat.Valid("ZZ"))
	assert.Equal(t, "社科院大學部", cat.Name("3U"))
	assert.Empty(t, cat.Name("ZZ"))
	assert.ElementsMatch(t, []id.KindCode{"3U", "NU"}, cat.Kinds())
}
