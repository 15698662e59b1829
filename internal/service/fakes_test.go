package service

import (
	"commons/internal/cache"
	"commons/internal/model"
	"commons/internal/repository"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory record store enforcing the same unique
// constraints as the Mongo indexes.
type memStore struct {
	mu       sync.Mutex
	codes    map[string]*model.GameCode
	profiles []*model.PlayerProfile
	sessions map[string]*model.Session
	rounds   map[string]*model.Round
	moves    []*model.Move
	down     error
}

func newMemStore() *memStore {
	return &memStore{
		codes:    make(map[string]*model.GameCode),
		sessions: make(map[string]*model.Session),
		rounds:   make(map[string]*model.Round),
	}
}

func (s *memStore) setDown(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = err
}

type memCodes struct{ *memStore }

func (r memCodes) Ensure(ctx context.Context, code, createdBy string) (*model.GameCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	if anchor, ok := r.codes[code]; ok {
		cp := *anchor
		return &cp, nil
	}
	anchor := &model.GameCode{ID: uuid.NewString(), Code: code, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	r.codes[code] = anchor
	cp := *anchor
	return &cp, nil
}

func (r memCodes) GetByCode(ctx context.Context, code string) (*model.GameCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	anchor, ok := r.codes[code]
	if !ok {
		return nil, nil
	}
	cp := *anchor
	return &cp, nil
}

type memPlayers struct{ *memStore }

func (r memPlayers) Create(ctx context.Context, profile *model.PlayerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return r.down
	}
	for _, p := range r.profiles {
		if p.Code != profile.Code {
			continue
		}
		if p.PlayerID == profile.PlayerID {
			return repository.ErrAlreadyJoined
		}
		if p.Nickname == profile.Nickname {
			return repository.ErrNicknameTaken
		}
	}
	cp := *profile
	cp.ID = uuid.NewString()
	cp.JoinedAt = time.Now().UTC()
	r.profiles = append(r.profiles, &cp)
	return nil
}

func (r memPlayers) ListByCode(ctx context.Context, code string) ([]*model.PlayerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	out := []*model.PlayerProfile{}
	for _, p := range r.profiles {
		if p.Code == code {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSessions struct{ *memStore }

func (r memSessions) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return r.down
	}
	if _, ok := r.sessions[session.ID]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range r.sessions {
		if session.ActiveCode != "" && existing.ActiveCode == session.ActiveCode {
			return repository.ErrDuplicate
		}
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r memSessions) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (r memSessions) GetLiveByCode(ctx context.Context, code string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	for _, session := range r.sessions {
		if session.ActiveCode == code {
			cp := *session
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memSessions) Activate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return r.down
	}
	if session, ok := r.sessions[id]; ok && session.Status == model.SessionPending {
		session.Status = model.SessionActive
	}
	return nil
}

func (r memSessions) AdvanceRound(ctx context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return false, r.down
	}
	session, ok := r.sessions[id]
	if !ok || session.CurrentRoundID != from || session.Status == model.SessionFinished {
		return false, nil
	}
	session.CurrentRoundID = to
	return true, nil
}

func (r memSessions) Finish(ctx context.Context, id string, finish *model.SessionFinish) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return false, r.down
	}
	session, ok := r.sessions[id]
	if !ok || session.Status == model.SessionFinished {
		return false, nil
	}
	finishedAt := finish.FinishedAt
	session.Status = model.SessionFinished
	session.Outcome = finish.Outcome
	session.LastRoundID = finish.LastRoundID
	session.CurrentRoundID = finish.LastRoundID
	session.Scores = finish.Scores
	session.FinishedAt = &finishedAt
	session.ActiveCode = ""
	return true, nil
}

func (r memSessions) ListByOwner(ctx context.Context, playerID string) ([]*model.Session, error) {
	return r.list(func(s *model.Session) bool { return s.OwnerID == playerID })
}

func (r memSessions) ListByPlayer(ctx context.Context, playerID string) ([]*model.Session, error) {
	return r.list(func(s *model.Session) bool { return s.HasPlayer(playerID) })
}

func (r memSessions) list(match func(*model.Session) bool) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	out := []*model.Session{}
	for _, session := range r.sessions {
		if match(session) {
			cp := *session
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memRounds struct{ *memStore }

func (r memRounds) Create(ctx context.Context, round *model.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return r.down
	}
	for _, existing := range r.rounds {
		if existing.ID == round.ID ||
			(existing.SessionID == round.SessionID && existing.Number == round.Number) ||
			(round.PreviousRoundID != "" && existing.PreviousRoundID == round.PreviousRoundID) {
			return repository.ErrDuplicate
		}
	}
	cp := *round
	r.rounds[round.ID] = &cp
	return nil
}

func (r memRounds) GetByID(ctx context.Context, id string) (*model.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	round, ok := r.rounds[id]
	if !ok {
		return nil, nil
	}
	cp := *round
	return &cp, nil
}

func (r memRounds) GetByPrevious(ctx context.Context, previousID string) (*model.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	for _, round := range r.rounds {
		if round.PreviousRoundID == previousID {
			cp := *round
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memRounds) Close(ctx context.Context, id string, result *model.RoundResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return false, r.down
	}
	round, ok := r.rounds[id]
	if !ok || round.Status != model.RoundStatusOpen {
		return false, nil
	}
	round.Status = model.RoundStatusClosed
	round.Result = result
	return true, nil
}

func (r memRounds) ListBySession(ctx context.Context, sessionID string) ([]*model.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	out := []*model.Round{}
	for _, round := range r.rounds {
		if round.SessionID == sessionID {
			cp := *round
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type memMoves struct{ *memStore }

func (r memMoves) Create(ctx context.Context, move *model.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return r.down
	}
	for _, m := range r.moves {
		if m.RoundID == move.RoundID && m.PlayerID == move.PlayerID {
			return repository.ErrDuplicate
		}
	}
	cp := *move
	r.moves = append(r.moves, &cp)
	return nil
}

func (r memMoves) ListByRound(ctx context.Context, roundID string) ([]*model.Move, error) {
	return r.list(func(m *model.Move) bool { return m.RoundID == roundID })
}

func (r memMoves) ListBySession(ctx context.Context, sessionID string) ([]*model.Move, error) {
	return r.list(func(m *model.Move) bool { return m.SessionID == sessionID })
}

func (r memMoves) list(match func(*model.Move) bool) ([]*model.Move, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down != nil {
		return nil, r.down
	}
	out := []*model.Move{}
	for _, m := range r.moves {
		if match(m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingBroadcaster keeps every signal published to each player
type recordingBroadcaster struct {
	mu   sync.Mutex
	sent map[string][]model.Signal
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{sent: make(map[string][]model.Signal)}
}

func (b *recordingBroadcaster) Publish(ctx context.Context, playerID string, env *model.SignalEnvelope) error {
	sig, err := model.DecodeSignal(env)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent[playerID] = append(b.sent[playerID], sig)
	return nil
}

func (b *recordingBroadcaster) signals(playerID string, kind model.SignalKind) []model.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.Signal
	for _, sig := range b.sent[playerID] {
		if sig.Kind() == kind {
			out = append(out, sig)
		}
	}
	return out
}

type harness struct {
	store    *memStore
	redis    *miniredis.Miniredis
	bus      *recordingBroadcaster
	codes    *CodeService
	sessions *SessionManager
	engine   *RoundEngine
	queries  *QueryService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	store := newMemStore()
	bus := newRecordingBroadcaster()

	notifier := NewNotifier(cache.NewSignalLog(client), bus, logger)
	sessions := NewSessionManager(
		memCodes{store},
		memPlayers{store},
		memSessions{store},
		memMoves{store},
		cache.NewRosterCache(client),
		cache.NewLeaderboardCache(client),
		notifier,
		model.GameParams{StartAmount: 1000, NumRounds: 3},
		logger,
	)
	engine := NewRoundEngine(memRounds{store}, memMoves{store}, cache.NewCloseClaimCache(client, time.Hour), sessions, notifier, logger)
	sessions.SetRoundEngine(engine)

	return &harness{
		store:    store,
		redis:    mr,
		bus:      bus,
		codes:    NewCodeService(memCodes{store}, memPlayers{store}, logger),
		sessions: sessions,
		engine:   engine,
		queries:  NewQueryService(memSessions{store}),
	}
}

// startGame creates code, joins alice (owner) and bob, and starts a session
func (h *harness) startGame(t *testing.T, code string, pool model.ResourceAmount, rounds int) *model.Session {
	t.Helper()
	ctx := context.Background()

	_, err := h.codes.CreateCode(ctx, code, "alice")
	require.NoError(t, err)
	_, err = h.codes.JoinWithCode(ctx, code, "alice", "Alice")
	require.NoError(t, err)
	_, err = h.codes.JoinWithCode(ctx, code, "bob", "Bob")
	require.NoError(t, err)

	session, err := h.sessions.StartSession(ctx, code, "alice", &model.StartSessionRequest{
		StartAmount: &pool,
		NumRounds:   &rounds,
	})
	require.NoError(t, err)
	return session
}

// playRound submits one move per amount in roster order and closes the round
func (h *harness) playRound(t *testing.T, roundID string, alice, bob model.ResourceAmount) *model.RoundResult {
	t.Helper()
	ctx := context.Background()

	_, err := h.engine.SubmitMove(ctx, roundID, "alice", alice)
	require.NoError(t, err)
	_, err = h.engine.SubmitMove(ctx, roundID, "bob", bob)
	require.NoError(t, err)

	resp, err := h.engine.TryCloseRound(ctx, roundID)
	require.NoError(t, err)
	require.Equal(t, model.CloseStatusClosed, resp.Status)
	return resp.Result
}
