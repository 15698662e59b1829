package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCodeIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, err := h.codes.CreateCode(ctx, "ABCDE", "alice")
	require.NoError(t, err)
	again, err := h.codes.CreateCode(ctx, " abcde ", "bob")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "ABCDE", again.Code)
	assert.Equal(t, "alice", again.CreatedBy)
}

func TestCreateCodeGeneratesWhenEmpty(t *testing.T) {
	h := newHarness(t)

	anchor, err := h.codes.CreateCode(context.Background(), "", "alice")
	require.NoError(t, err)
	assert.Len(t, anchor.Code, codeLen)
	for _, c := range anchor.Code {
		assert.Contains(t, codeChars, string(c))
	}
}

func TestCreateCodeRejectsInvalidCharacters(t *testing.T) {
	h := newHarness(t)

	_, err := h.codes.CreateCode(context.Background(), "AB CD!", "alice")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestJoinWithCodeReturnsSameAnchor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.codes.CreateCode(ctx, "ABCDE", "alice")
	require.NoError(t, err)
	joined, err := h.codes.JoinWithCode(ctx, "ABCDE", "bob", "Bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, joined.ID)
}

func TestJoinWithCodeErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.codes.JoinWithCode(ctx, "NOPE", "alice", "Alice")
	assert.ErrorIs(t, err, ErrUnknownCode)

	_, err = h.codes.CreateCode(ctx, "ABCDE", "alice")
	require.NoError(t, err)

	_, err = h.codes.JoinWithCode(ctx, "ABCDE", "alice", "  ")
	assert.ErrorIs(t, err, ErrInvalidNickname)

	_, err = h.codes.JoinWithCode(ctx, "ABCDE", "alice", "Alice")
	require.NoError(t, err)

	_, err = h.codes.JoinWithCode(ctx, "ABCDE", "carol", "Alice")
	assert.ErrorIs(t, err, ErrDuplicateNickname)

	_, err = h.codes.JoinWithCode(ctx, "ABCDE", "alice", "Alicia")
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	players, err := h.codes.ListPlayers(ctx, "ABCDE")
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestListPlayersInJoinOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.codes.CreateCode(ctx, "ABCDE", "alice")
	require.NoError(t, err)
	for _, p := range []struct{ id, nick string }{{"alice", "Alice"}, {"bob", "Bob"}, {"carol", "Carol"}} {
		_, err := h.codes.JoinWithCode(ctx, "ABCDE", p.id, p.nick)
		require.NoError(t, err)
	}

	players, err := h.codes.ListPlayers(ctx, "abcde")
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "Alice", players[0].Nickname)
	assert.Equal(t, "Bob", players[1].Nickname)
	assert.Equal(t, "Carol", players[2].Nickname)

	_, err = h.codes.ListPlayers(ctx, "OTHER")
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestCodeServiceStoreFailureIsUnavailable(t *testing.T) {
	h := newHarness(t)
	h.store.setDown(errors.New("connection refused"))

	_, err := h.codes.CreateCode(context.Background(), "ABCDE", "alice")
	assert.ErrorIs(t, err, ErrCollaboratorUnavailable)
	assert.NotErrorIs(t, err, ErrUnknownCode)
}
