package service

import (
	"commons/internal/cache"
	"commons/internal/model"
	"context"

	"go.uber.org/zap"
)

// Notifier pushes session signals to every roster member. Each (signal, player)
// pair is published at most once no matter how often a commit is re-run.
type Notifier struct {
	sent        cache.SignalLog
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(sent cache.SignalLog, broadcaster Broadcaster, logger *zap.Logger) *Notifier {
	return &Notifier{
		sent:        sent,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// NotifySessionStarted tells the roster that the first round is open
func (n *Notifier) NotifySessionStarted(ctx context.Context, session *model.Session, round *model.Round) {
	n.send(ctx, session, &model.SessionStarted{
		SessionID:    session.ID,
		Code:         session.Code,
		RoundID:      round.ID,
		StartingPool: round.StartingPool,
		NumRounds:    session.Params.NumRounds,
	})
}

// NotifyRoundClosed tells the roster how a round was decided
func (n *Notifier) NotifyRoundClosed(ctx context.Context, session *model.Session, result *model.RoundResult) {
	n.send(ctx, session, model.RoundClosedFrom(result))
}

func (n *Notifier) send(ctx context.Context, session *model.Session, sig model.Signal) {
	env, err := model.EncodeSignal(sig)
	if err != nil {
		n.logger.Error("encode signal", zap.String("key", sig.Key()), zap.Error(err))
		return
	}

	for _, member := range session.Roster {
		first, err := n.sent.MarkSent(ctx, sig.Key(), member.PlayerID)
		if err != nil {
			// Without the log a duplicate is possible; receivers drop it by key.
			n.logger.Warn("signal log unavailable",
				zap.String("key", sig.Key()),
				zap.String("player", member.PlayerID),
				zap.Error(err),
			)
		} else if !first {
			continue
		}

		if err := n.broadcaster.Publish(ctx, member.PlayerID, env); err != nil {
			n.logger.Warn("signal not delivered",
				zap.String("key", sig.Key()),
				zap.String("player", member.PlayerID),
				zap.Error(err),
			)
			continue
		}
		n.logger.Debug("signal sent", zap.String("key", sig.Key()), zap.String("player", member.PlayerID))
	}
}
