package main

import (
	"commons/internal/client"
	"commons/internal/model"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type playOptions struct {
	server  string
	code    string
	pool    int64
	rounds  int
	moves   []string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:          "playtest",
		Short:        "Play a two-player commons game against a server",
		Long:         "playtest registers two players, joins them to a code, starts a session and plays one round per --moves pair until the server shows results.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := parseMoves(opts.moves)
			if err != nil {
				return err
			}
			return play(cmd.Context(), cmd.OutOrStdout(), client.New(opts.server), opts, plan)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&opts.code, "code", "", "game code (generated when empty)")
	cmd.Flags().Int64Var(&opts.pool, "pool", 1000, "starting pool")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 3, "round limit")
	cmd.Flags().StringSliceVar(&opts.moves, "moves", []string{"5:10", "6:11", "7:12"}, "per-round amounts as alice:bob")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "how long to wait for each round to close")

	return cmd
}

// parseMoves reads "a:b" pairs, one per round
func parseMoves(pairs []string) ([][2]model.ResourceAmount, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("at least one --moves pair is required")
	}
	plan := make([][2]model.ResourceAmount, len(pairs))
	for i, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("move pair %q: want alice:bob", pair)
		}
		for j, part := range parts {
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("move pair %q: %w", pair, err)
			}
			plan[i][j] = model.ResourceAmount(n)
		}
	}
	return plan, nil
}
