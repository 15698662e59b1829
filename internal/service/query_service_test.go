package service

import (
	"commons/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueriesSplitOwnedAndPlayed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// alice owns a finished session on ABCDE
	first := h.startGame(t, "ABCDE", 130, 3)
	h.playRound(t, first.CurrentRoundID, 5, 125)

	// bob owns an active session on XYZ that alice plays in
	_, err := h.codes.CreateCode(ctx, "XYZ", "bob")
	require.NoError(t, err)
	_, err = h.codes.JoinWithCode(ctx, "XYZ", "bob", "Bob")
	require.NoError(t, err)
	_, err = h.codes.JoinWithCode(ctx, "XYZ", "alice", "Alice")
	require.NoError(t, err)
	second, err := h.sessions.StartSession(ctx, "XYZ", "bob", nil)
	require.NoError(t, err)

	owned, err := h.queries.OwnedSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, first.ID, owned[0].ID)

	played, err := h.queries.PlayedSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, played, 1)
	assert.Equal(t, second.ID, played[0].ID)

	all, err := h.queries.AllSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].CreatedAt.Before(all[1].CreatedAt))

	active, err := h.queries.ActiveSessions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
	assert.Equal(t, model.SessionActive, active[0].Status)
}

func TestQueriesReturnEmptySlices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, query := range []func(context.Context, string) ([]*model.Session, error){
		h.queries.OwnedSessions,
		h.queries.PlayedSessions,
		h.queries.AllSessions,
		h.queries.ActiveSessions,
	} {
		sessions, err := query(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, sessions)
		assert.Empty(t, sessions)
	}
}
