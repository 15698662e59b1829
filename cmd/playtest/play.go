package main

import (
	"commons/internal/client"
	"commons/internal/model"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

type player struct {
	name    string
	id      string
	api     *client.Client
	signals <-chan model.Signal
}

func play(ctx context.Context, out io.Writer, api *client.Client, opts *playOptions, plan [][2]model.ResourceAmount) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	alice, err := register(ctx, api, "Alice")
	if err != nil {
		return err
	}
	bob, err := register(ctx, api, "Bob")
	if err != nil {
		return err
	}

	anchor, err := alice.api.CreateCode(ctx, opts.code)
	if err != nil {
		return fmt.Errorf("create code: %w", err)
	}
	fmt.Fprintf(out, "code %s\n", anchor.Code)

	for _, p := range []*player{alice, bob} {
		if _, err := p.api.Join(ctx, anchor.Code, p.name); err != nil {
			return fmt.Errorf("%s join: %w", p.name, err)
		}
		if p.signals, err = p.api.Subscribe(ctx); err != nil {
			return fmt.Errorf("%s subscribe: %w", p.name, err)
		}
	}

	pool := model.ResourceAmount(opts.pool)
	session, err := alice.api.StartSession(ctx, anchor.Code, &model.StartSessionRequest{
		StartAmount: &pool,
		NumRounds:   &opts.rounds,
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Fprintf(out, "session %s started with pool %d\n", session.ID, pool)

	roundID := session.CurrentRoundID
	for i, amounts := range plan {
		if _, err := alice.api.SubmitMove(ctx, roundID, amounts[0]); err != nil {
			return fmt.Errorf("round %d alice move: %w", i+1, err)
		}
		if _, err := bob.api.SubmitMove(ctx, roundID, amounts[1]); err != nil {
			return fmt.Errorf("round %d bob move: %w", i+1, err)
		}

		// Both players race to close; the server settles on one result.
		resp, err := alice.api.CloseRound(ctx, roundID)
		if err != nil {
			return fmt.Errorf("round %d close: %w", i+1, err)
		}
		if _, err := bob.api.CloseRound(ctx, roundID); err != nil {
			return fmt.Errorf("round %d close: %w", i+1, err)
		}
		if resp.Status != model.CloseStatusClosed {
			return fmt.Errorf("round %d still waiting for %v", i+1, resp.Missing)
		}

		for _, p := range []*player{alice, bob} {
			closed, err := awaitRoundClosed(ctx, p.signals, roundID, opts.timeout)
			if err != nil {
				return fmt.Errorf("%s: %w", p.name, err)
			}
			if closed.NextAction != resp.Result.NextAction || closed.NextRoundID != resp.Result.NextRoundID {
				return fmt.Errorf("%s saw a different decision for round %d", p.name, i+1)
			}
		}

		fmt.Fprintf(out, "round %d: extracted %d, pool %d, %s\n",
			resp.Result.RoundNumber, resp.Result.Extracted, resp.Result.ResultingPool, resp.Result.NextAction)

		if resp.Result.NextAction == model.ShowResults {
			return printResults(ctx, out, alice.api, session.ID)
		}
		roundID = resp.Result.NextRoundID
	}
	return fmt.Errorf("ran out of moves after %d rounds", len(plan))
}

func register(ctx context.Context, api *client.Client, name string) (*player, error) {
	identity, err := api.RegisterPlayer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return &player{name: name, id: identity.PlayerID, api: api.WithToken(identity.Token)}, nil
}

func awaitRoundClosed(ctx context.Context, signals <-chan model.Signal, roundID string, timeout time.Duration) (*model.RoundClosed, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return nil, errors.New("signal stream closed")
			}
			if closed, ok := sig.(*model.RoundClosed); ok && closed.RoundID == roundID {
				return closed, nil
			}
		case <-deadline.C:
			return nil, fmt.Errorf("no round_closed signal for %s", roundID)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func printResults(ctx context.Context, out io.Writer, api *client.Client, sessionID string) error {
	session, err := api.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	scores, err := api.Scores(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "game over: %s\n", session.Outcome)
	for _, s := range scores {
		fmt.Fprintf(out, "  %d. %s extracted %d\n", s.Rank, s.Nickname, s.Extracted)
	}
	return nil
}
