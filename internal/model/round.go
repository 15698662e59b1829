package model

import "time"

type RoundStatus string

const (
	RoundStatusOpen   RoundStatus = "open"
	RoundStatusClosed RoundStatus = "closed"
)

// NextAction is the outcome of closing a round
type NextAction string

const (
	StartNextRound NextAction = "START_NEXT_ROUND"
	ShowResults    NextAction = "SHOW_GAME_RESULTS"
)

// Round is one play cycle. PreviousRoundID is empty for the first round of a session.
type Round struct {
	ID              string         `json:"id" bson:"_id"`
	SessionID       string         `json:"sessionId" bson:"sessionId"`
	Number          int            `json:"number" bson:"number"`
	StartingPool    ResourceAmount `json:"startingPool" bson:"startingPool"`
	PreviousRoundID string         `json:"previousRoundId,omitempty" bson:"previousRoundId,omitempty"`
	Status          RoundStatus    `json:"status" bson:"status"`
	Result          *RoundResult   `json:"result,omitempty" bson:"result,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
}

// RoundResult is computed once per round and never changes afterwards
type RoundResult struct {
	RoundID       string         `json:"roundId" bson:"roundId"`
	SessionID     string         `json:"sessionId" bson:"sessionId"`
	RoundNumber   int            `json:"roundNumber" bson:"roundNumber"`
	Extracted     ResourceAmount `json:"extracted" bson:"extracted"`
	ResultingPool ResourceAmount `json:"resultingPool" bson:"resultingPool"`
	Depleted      bool           `json:"depleted" bson:"depleted"`
	NextAction    NextAction     `json:"nextAction" bson:"nextAction"`
	NextRoundID   string         `json:"nextRoundId,omitempty" bson:"nextRoundId,omitempty"`
	ClosedAt      time.Time      `json:"closedAt" bson:"closedAt"`
}

// Outcome maps a final round result to the session outcome
func (r *RoundResult) Outcome() SessionOutcome {
	if r.NextAction != ShowResults {
		return OutcomeNone
	}
	if r.Depleted {
		return OutcomeDepleted
	}
	return OutcomeCompleted
}

type CloseStatus string

const (
	CloseStatusClosed        CloseStatus = "closed"
	CloseStatusAwaitingMoves CloseStatus = "awaiting_moves"
)

// CloseResponse is returned by every close attempt. Result is nil while awaiting moves.
type CloseResponse struct {
	Status  CloseStatus  `json:"status"`
	Result  *RoundResult `json:"result,omitempty"`
	Missing []string     `json:"missing,omitempty"`
}

// RoundInfo is a read view of a round and its progress
type RoundInfo struct {
	Round     *Round   `json:"round"`
	MovesMade int      `json:"movesMade"`
	Missing   []string `json:"missing"`
}
