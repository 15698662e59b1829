package client

import (
	"commons/internal/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalFilterDropsRepeatedKeys(t *testing.T) {
	f := NewSignalFilter()

	assert.True(t, f.First(&model.RoundClosed{RoundID: "r1"}))
	assert.False(t, f.First(&model.RoundClosed{RoundID: "r1", ResultingPool: 7}))
	assert.True(t, f.First(&model.RoundClosed{RoundID: "r2"}))
	assert.True(t, f.First(&model.SessionStarted{RoundID: "r1"}))
}

func TestClientSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/rounds/r1/moves", r.URL.Path)

		var req model.SubmitMoveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(&model.Move{RoundID: "r1", PlayerID: "alice", Amount: req.Amount})
	}))
	defer srv.Close()

	move, err := New(srv.URL).WithToken("tok").SubmitMove(context.Background(), "r1", 12)
	require.NoError(t, err)
	assert.Equal(t, model.ResourceAmount(12), move.Amount)
	assert.Equal(t, "alice", move.PlayerID)
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"player already moved this round"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitMove(context.Background(), "r1", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "player already moved this round", apiErr.Message)
}

func TestSubscribeDeduplicatesSignals(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		closedR1, _ := model.EncodeSignal(&model.RoundClosed{RoundID: "r1", NextRoundID: "r2", NextAction: model.StartNextRound})
		closedR2, _ := model.EncodeSignal(&model.RoundClosed{RoundID: "r2", NextAction: model.ShowResults})
		for _, env := range []*model.SignalEnvelope{closedR1, closedR1, closedR2} {
			require.NoError(t, conn.WriteJSON(env))
		}
		// Hold the connection until the client goes away.
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals, err := New(srv.URL).WithToken("tok").Subscribe(ctx)
	require.NoError(t, err)

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case sig := <-signals:
			got = append(got, sig.Key())
		case <-timeout:
			t.Fatalf("got %v", got)
		}
	}
	assert.Equal(t, []string{"round_closed:r1", "round_closed:r2"}, got)

	cancel()
	for range signals {
	}
}
