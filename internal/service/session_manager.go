package service

import (
	"commons/internal/cache"
	"commons/internal/model"
	"commons/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager owns session lifecycle: roster snapshot, round pointer and finish
type SessionManager struct {
	codes       repository.CodeRepo
	players     repository.PlayerRepo
	sessions    repository.SessionRepo
	moves       repository.MoveRepo
	rosters     cache.RosterCache
	leaderboard cache.LeaderboardCache
	notifier    *Notifier
	engine      *RoundEngine
	defaults    model.GameParams
	logger      *zap.Logger
}

// NewSessionManager creates a new session manager. The round engine is set
// afterwards with SetRoundEngine since the two call each other.
func NewSessionManager(
	codes repository.CodeRepo,
	players repository.PlayerRepo,
	sessions repository.SessionRepo,
	moves repository.MoveRepo,
	rosters cache.RosterCache,
	leaderboard cache.LeaderboardCache,
	notifier *Notifier,
	defaults model.GameParams,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		codes:       codes,
		players:     players,
		sessions:    sessions,
		moves:       moves,
		rosters:     rosters,
		leaderboard: leaderboard,
		notifier:    notifier,
		defaults:    defaults,
		logger:      logger,
	}
}

// SetRoundEngine sets the engine that opens the first round of new sessions
func (m *SessionManager) SetRoundEngine(e *RoundEngine) {
	m.engine = e
}

// StartSession snapshots the code's roster into a new session and opens round 1.
// Only the player who created the code may start it, and becomes the owner.
// While a session for the code is live, the existing session is returned instead.
func (m *SessionManager) StartSession(ctx context.Context, code, ownerID string, req *model.StartSessionRequest) (*model.Session, error) {
	code = normalizeCode(code)
	anchor, err := m.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, unavailable("get code", err)
	}
	if anchor == nil {
		return nil, ErrUnknownCode
	}
	if anchor.CreatedBy != ownerID {
		return nil, ErrNotCodeCreator
	}

	params, err := m.resolveParams(req)
	if err != nil {
		return nil, err
	}

	existing, err := m.sessions.GetLiveByCode(ctx, code)
	if err != nil {
		return nil, unavailable("get live session", err)
	}
	if existing != nil {
		return m.launch(ctx, existing)
	}

	profiles, err := m.players.ListByCode(ctx, code)
	if err != nil {
		return nil, unavailable("list players", err)
	}
	if len(profiles) == 0 {
		return nil, ErrEmptyRoster
	}

	roster := make([]model.RosterEntry, len(profiles))
	playerIDs := make([]string, len(profiles))
	for i, p := range profiles {
		roster[i] = model.RosterEntry{PlayerID: p.PlayerID, Nickname: p.Nickname}
		playerIDs[i] = p.PlayerID
	}

	firstRoundID := uuid.NewString()
	session := &model.Session{
		ID:             uuid.NewString(),
		Code:           code,
		AnchorID:       anchor.ID,
		OwnerID:        ownerID,
		Roster:         roster,
		PlayerIDs:      playerIDs,
		ActiveCode:     code,
		Status:         model.SessionPending,
		Params:         params,
		FirstRoundID:   firstRoundID,
		CurrentRoundID: firstRoundID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, unavailable("create session", err)
		}
		// Lost the race for the code; continue with the winner.
		existing, err := m.sessions.GetLiveByCode(ctx, code)
		if err != nil {
			return nil, unavailable("get live session", err)
		}
		if existing == nil {
			return nil, unavailable("get live session", errors.New("live session vanished"))
		}
		return m.launch(ctx, existing)
	}

	m.logger.Info("session created",
		zap.String("session", session.ID),
		zap.String("code", code),
		zap.Int("players", len(roster)),
	)
	return m.launch(ctx, session)
}

// launch brings a session to active with its first round open. Every step is
// idempotent so a retried start heals a session left half-started.
func (m *SessionManager) launch(ctx context.Context, session *model.Session) (*model.Session, error) {
	round, err := m.engine.OpenFirstRound(ctx, session)
	if err != nil {
		return nil, err
	}

	if session.Status == model.SessionPending {
		if err := m.sessions.Activate(ctx, session.ID); err != nil {
			return nil, unavailable("activate session", err)
		}
		session.Status = model.SessionActive
	}

	if err := m.rosters.Set(ctx, session.ID, session.Roster); err != nil {
		m.logger.Warn("roster cache write failed", zap.String("session", session.ID), zap.Error(err))
	}

	m.notifier.NotifySessionStarted(ctx, session, round)
	return session, nil
}

func (m *SessionManager) resolveParams(req *model.StartSessionRequest) (model.GameParams, error) {
	params := m.defaults
	if req != nil {
		if req.StartAmount != nil {
			params.StartAmount = *req.StartAmount
		}
		if req.NumRounds != nil {
			params.NumRounds = *req.NumRounds
		}
		if req.PoolFloor != nil {
			params.PoolFloor = *req.PoolFloor
		}
	}
	if params.NumRounds < 1 || params.PoolFloor < 0 || params.StartAmount <= params.PoolFloor {
		return params, ErrInvalidParams
	}
	return params, nil
}

// Advance moves the session's current round pointer from one round to the next.
// It is a no-op when the pointer already moved on or the session finished.
func (m *SessionManager) Advance(ctx context.Context, sessionID, fromRoundID, toRoundID string) error {
	advanced, err := m.sessions.AdvanceRound(ctx, sessionID, fromRoundID, toRoundID)
	if err != nil {
		return unavailable("advance session", err)
	}
	if advanced {
		m.logger.Info("session advanced",
			zap.String("session", sessionID),
			zap.String("from", fromRoundID),
			zap.String("to", toRoundID),
		)
	}
	return nil
}

// Finish ends the session after its last round and records the final scores.
// Finishing twice is a no-op.
func (m *SessionManager) Finish(ctx context.Context, sessionID string, last *model.RoundResult) error {
	totals, err := m.totals(ctx, sessionID)
	if err != nil {
		return err
	}

	finished, err := m.sessions.Finish(ctx, sessionID, &model.SessionFinish{
		Outcome:     last.Outcome(),
		LastRoundID: last.RoundID,
		Scores:      totals,
		FinishedAt:  last.ClosedAt,
	})
	if err != nil {
		return unavailable("finish session", err)
	}
	if finished {
		m.logger.Info("session finished",
			zap.String("session", sessionID),
			zap.String("outcome", string(last.Outcome())),
			zap.Int("rounds", last.RoundNumber),
		)
	}
	return nil
}

// RefreshScores rewrites the leaderboard from the move ledger. Failures only
// degrade Scores to reading the ledger, so they are logged.
func (m *SessionManager) RefreshScores(ctx context.Context, sessionID string) {
	totals, err := m.totals(ctx, sessionID)
	if err == nil {
		err = m.leaderboard.SetTotals(ctx, sessionID, totals)
	}
	if err != nil {
		m.logger.Warn("leaderboard refresh failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func (m *SessionManager) totals(ctx context.Context, sessionID string) (map[string]model.ResourceAmount, error) {
	moves, err := m.moves.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, unavailable("list session moves", err)
	}
	totals := make(map[string]model.ResourceAmount)
	for _, mv := range moves {
		totals[mv.PlayerID] += mv.Amount
	}
	return totals, nil
}

// Get returns the session or ErrSessionNotFound
func (m *SessionManager) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, unavailable("get session", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// LiveByCode returns the pending or active session for a code
func (m *SessionManager) LiveByCode(ctx context.Context, code string) (*model.Session, error) {
	session, err := m.sessions.GetLiveByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, unavailable("get live session", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) OwnerOf(ctx context.Context, sessionID string) (string, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.OwnerID, nil
}

func (m *SessionManager) StatusOf(ctx context.Context, sessionID string) (model.SessionStatus, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return session.Status, nil
}

// RosterOf returns the session roster, served from cache when possible
func (m *SessionManager) RosterOf(ctx context.Context, sessionID string) ([]model.RosterEntry, error) {
	roster, err := m.rosters.Get(ctx, sessionID)
	if err != nil {
		m.logger.Warn("roster cache read failed", zap.String("session", sessionID), zap.Error(err))
	}
	if roster != nil {
		return roster, nil
	}

	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.rosters.Set(ctx, sessionID, session.Roster); err != nil {
		m.logger.Warn("roster cache write failed", zap.String("session", sessionID), zap.Error(err))
	}
	return session.Roster, nil
}

// Scores ranks the roster by cumulative extraction, highest first
func (m *SessionManager) Scores(ctx context.Context, sessionID string) ([]model.ScoreEntry, error) {
	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	totals := session.Scores
	if totals == nil {
		totals = m.cachedTotals(ctx, sessionID)
	}
	if totals == nil {
		if totals, err = m.totals(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	entries := make([]model.ScoreEntry, len(session.Roster))
	for i, p := range session.Roster {
		entries[i] = model.ScoreEntry{
			PlayerID:  p.PlayerID,
			Nickname:  p.Nickname,
			Extracted: totals[p.PlayerID],
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Extracted > entries[j].Extracted
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (m *SessionManager) cachedTotals(ctx context.Context, sessionID string) map[string]model.ResourceAmount {
	top, err := m.leaderboard.GetTop(ctx, sessionID, 1000)
	if err != nil {
		m.logger.Warn("leaderboard read failed", zap.String("session", sessionID), zap.Error(err))
		return nil
	}
	if len(top) == 0 {
		return nil
	}
	totals := make(map[string]model.ResourceAmount, len(top))
	for _, e := range top {
		totals[e.PlayerID] = e.Extracted
	}
	return totals
}
