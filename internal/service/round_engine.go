package service

import (
	"commons/internal/cache"
	"commons/internal/model"
	"commons/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var roundChainSpace = uuid.MustParse("6f1c2a54-3b8e-4d0f-9a71-5e2d8c4b7a10")

// RoundEngine collects moves and decides each round exactly once. Timestamps
// are kept at millisecond precision, which is what the record store keeps.
type RoundEngine struct {
	rounds   repository.RoundRepo
	moves    repository.MoveRepo
	claims   cache.CloseClaimCache
	sessions *SessionManager
	notifier *Notifier
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewRoundEngine creates a new round engine
func NewRoundEngine(
	rounds repository.RoundRepo,
	moves repository.MoveRepo,
	claims cache.CloseClaimCache,
	sessions *SessionManager,
	notifier *Notifier,
	logger *zap.Logger,
) *RoundEngine {
	return &RoundEngine{
		rounds:   rounds,
		moves:    moves,
		claims:   claims,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:    uuid.NewString,
	}
}

// OpenFirstRound writes round 1 of a session; repeating it returns the same round
func (e *RoundEngine) OpenFirstRound(ctx context.Context, session *model.Session) (*model.Round, error) {
	round := &model.Round{
		ID:           session.FirstRoundID,
		SessionID:    session.ID,
		Number:       1,
		StartingPool: session.Params.StartAmount,
		Status:       model.RoundStatusOpen,
		CreatedAt:    e.now(),
	}
	err := e.rounds.Create(ctx, round)
	if err == nil {
		e.logger.Info("round opened",
			zap.String("session", session.ID),
			zap.String("round", round.ID),
			zap.Int("number", 1),
		)
		return round, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, unavailable("create round", err)
	}

	existing, err := e.rounds.GetByID(ctx, round.ID)
	if err != nil {
		return nil, unavailable("get round", err)
	}
	if existing == nil {
		return nil, unavailable("get round", errors.New("first round rejected but missing"))
	}
	return existing, nil
}

// SubmitMove records playerID's extraction for an open round
func (e *RoundEngine) SubmitMove(ctx context.Context, roundID, playerID string, amount model.ResourceAmount) (*model.Move, error) {
	round, err := e.round(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusOpen {
		return nil, ErrRoundNotOpen
	}

	roster, err := e.sessions.RosterOf(ctx, round.SessionID)
	if err != nil {
		return nil, err
	}
	if !inRoster(roster, playerID) {
		return nil, ErrNotAParticipant
	}
	if amount < 0 {
		return nil, ErrNegativeAmount
	}

	move := &model.Move{
		ID:          e.newID(),
		RoundID:     round.ID,
		SessionID:   round.SessionID,
		RoundNumber: round.Number,
		PlayerID:    playerID,
		Amount:      amount,
		CreatedAt:   e.now(),
	}
	if err := e.moves.Create(ctx, move); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateMove
		}
		return nil, unavailable("create move", err)
	}

	e.logger.Debug("move recorded",
		zap.String("round", round.ID),
		zap.String("player", playerID),
		zap.Int64("amount", int64(amount)),
	)
	return move, nil
}

// TryCloseRound closes the round once every roster member has moved. Any
// number of callers may race; all of them get the same result and the
// round's effects happen once.
func (e *RoundEngine) TryCloseRound(ctx context.Context, roundID string) (*model.CloseResponse, error) {
	round, err := e.round(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status == model.RoundStatusClosed && round.Result != nil {
		return closed(round.Result), nil
	}

	session, err := e.sessions.Get(ctx, round.SessionID)
	if err != nil {
		return nil, err
	}

	stored, err := e.claims.GetClose(ctx, round.ID)
	if err != nil {
		return nil, unavailable("get close claim", err)
	}
	if stored != nil {
		// Decided earlier; the commit may not have finished.
		return e.commit(ctx, session, round, stored)
	}

	moves, err := e.moves.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, unavailable("list round moves", err)
	}
	if missing := missingPlayers(session.Roster, moves); len(missing) > 0 {
		return &model.CloseResponse{
			Status:  model.CloseStatusAwaitingMoves,
			Missing: missing,
		}, nil
	}

	candidate := decideClose(session, round, moves, e.now(), nextRoundID(round.ID))
	stored, won, err := e.claims.ClaimClose(ctx, round.ID, candidate)
	if err != nil {
		return nil, unavailable("claim close", err)
	}
	if won {
		e.logger.Info("round decided",
			zap.String("session", session.ID),
			zap.String("round", round.ID),
			zap.Int("number", round.Number),
			zap.Int64("extracted", int64(stored.Extracted)),
			zap.Int64("pool", int64(stored.ResultingPool)),
			zap.String("next", string(stored.NextAction)),
		)
	}
	return e.commit(ctx, session, round, stored)
}

// nextRoundID derives the successor's ID from the round it follows, so every
// closer of a round names the same next round.
func nextRoundID(roundID string) string {
	return uuid.NewSHA1(roundChainSpace, []byte(roundID)).String()
}

// decideClose computes the close decision from a round's complete move set.
// nextRoundID is used only when the game continues.
func decideClose(session *model.Session, round *model.Round, moves []*model.Move, closedAt time.Time, nextRoundID string) *model.RoundResult {
	extracted := model.Extracted(moves)
	pool := model.Deplete(round.StartingPool, extracted, session.Params.PoolFloor)

	result := &model.RoundResult{
		RoundID:       round.ID,
		SessionID:     session.ID,
		RoundNumber:   round.Number,
		Extracted:     extracted,
		ResultingPool: pool,
		Depleted:      model.IsDepleted(pool, session.Params.PoolFloor),
		ClosedAt:      closedAt,
	}
	if result.Depleted || round.Number >= session.Params.NumRounds {
		result.NextAction = model.ShowResults
	} else {
		result.NextAction = model.StartNextRound
		result.NextRoundID = nextRoundID
	}
	return result
}

// commit applies a claimed result. Every step tolerates having run before, so
// whoever sees the claim can finish an interrupted commit. The round is marked
// closed last: a closed round means the rest is already in place.
func (e *RoundEngine) commit(ctx context.Context, session *model.Session, round *model.Round, result *model.RoundResult) (*model.CloseResponse, error) {
	if result.NextAction == model.StartNextRound {
		next := &model.Round{
			ID:              result.NextRoundID,
			SessionID:       session.ID,
			Number:          round.Number + 1,
			StartingPool:    result.ResultingPool,
			PreviousRoundID: round.ID,
			Status:          model.RoundStatusOpen,
			CreatedAt:       result.ClosedAt,
		}
		if err := e.rounds.Create(ctx, next); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, unavailable("create next round", err)
			}
			// The chain allows one successor; follow whichever was written.
			existing, err := e.rounds.GetByPrevious(ctx, round.ID)
			if err != nil {
				return nil, unavailable("get next round", err)
			}
			if existing != nil && existing.ID != next.ID {
				adopted := *result
				adopted.NextRoundID = existing.ID
				result = &adopted
				next = existing
			}
		}
		if err := e.sessions.Advance(ctx, session.ID, round.ID, next.ID); err != nil {
			return nil, err
		}
	} else {
		if err := e.sessions.Finish(ctx, session.ID, result); err != nil {
			return nil, err
		}
	}

	e.sessions.RefreshScores(ctx, session.ID)

	closedNow, err := e.rounds.Close(ctx, round.ID, result)
	if err != nil {
		return nil, unavailable("close round", err)
	}
	if closedNow {
		e.notifier.NotifyRoundClosed(ctx, session, result)
	}
	return closed(result), nil
}

// GetRound returns a round together with who still has to move
func (e *RoundEngine) GetRound(ctx context.Context, roundID string) (*model.RoundInfo, error) {
	round, err := e.round(ctx, roundID)
	if err != nil {
		return nil, err
	}
	roster, err := e.sessions.RosterOf(ctx, round.SessionID)
	if err != nil {
		return nil, err
	}
	moves, err := e.moves.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, unavailable("list round moves", err)
	}
	return &model.RoundInfo{
		Round:     round,
		MovesMade: len(moves),
		Missing:   missingPlayers(roster, moves),
	}, nil
}

// CurrentRoundForCode returns the round being played under a code
func (e *RoundEngine) CurrentRoundForCode(ctx context.Context, code string) (*model.Round, error) {
	session, err := e.sessions.LiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return e.round(ctx, session.CurrentRoundID)
}

// History lists a session's rounds in play order
func (e *RoundEngine) History(ctx context.Context, sessionID string) ([]*model.Round, error) {
	if _, err := e.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	rounds, err := e.rounds.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, unavailable("list rounds", err)
	}
	if rounds == nil {
		rounds = []*model.Round{}
	}
	return rounds, nil
}

func (e *RoundEngine) round(ctx context.Context, roundID string) (*model.Round, error) {
	round, err := e.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, unavailable("get round", err)
	}
	if round == nil {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

func closed(result *model.RoundResult) *model.CloseResponse {
	return &model.CloseResponse{
		Status: model.CloseStatusClosed,
		Result: result,
	}
}

func inRoster(roster []model.RosterEntry, playerID string) bool {
	for _, p := range roster {
		if p.PlayerID == playerID {
			return true
		}
	}
	return false
}

// missingPlayers lists roster members without a move, in roster order
func missingPlayers(roster []model.RosterEntry, moves []*model.Move) []string {
	moved := make(map[string]bool, len(moves))
	for _, m := range moves {
		moved[m.PlayerID] = true
	}
	missing := []string{}
	for _, p := range roster {
		if !moved[p.PlayerID] {
			missing = append(missing, p.PlayerID)
		}
	}
	return missing
}
