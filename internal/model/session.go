package model

import "time"

type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// SessionOutcome says how a finished session ended
type SessionOutcome string

const (
	OutcomeNone      SessionOutcome = ""
	OutcomeDepleted  SessionOutcome = "depleted"  // the commons ran out
	OutcomeCompleted SessionOutcome = "completed" // round limit reached
)

// GameParams are fixed when a session starts
type GameParams struct {
	StartAmount ResourceAmount `json:"startAmount" bson:"startAmount"`
	NumRounds   int            `json:"numRounds" bson:"numRounds"`
	PoolFloor   ResourceAmount `json:"poolFloor" bson:"poolFloor"`
}

type Session struct {
	ID             string                    `json:"id" bson:"_id"`
	Code           string                    `json:"code" bson:"code"`
	AnchorID       string                    `json:"anchorId" bson:"anchorId"`
	OwnerID        string                    `json:"ownerId" bson:"ownerId"`
	Roster         []RosterEntry             `json:"roster" bson:"roster"`
	PlayerIDs      []string                  `json:"-" bson:"playerIds"`
	ActiveCode     string                    `json:"-" bson:"activeCode,omitempty"`
	Status         SessionStatus             `json:"status" bson:"status"`
	Outcome        SessionOutcome            `json:"outcome,omitempty" bson:"outcome,omitempty"`
	Params         GameParams                `json:"params" bson:"params"`
	FirstRoundID   string                    `json:"firstRoundId" bson:"firstRoundId"`
	CurrentRoundID string                    `json:"currentRoundId" bson:"currentRoundId"`
	LastRoundID    string                    `json:"lastRoundId,omitempty" bson:"lastRoundId,omitempty"`
	Scores         map[string]ResourceAmount `json:"scores,omitempty" bson:"scores,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt" bson:"createdAt"`
	FinishedAt     *time.Time                `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
}

// HasPlayer reports whether playerID is in the session roster
func (s *Session) HasPlayer(playerID string) bool {
	for _, p := range s.PlayerIDs {
		if p == playerID {
			return true
		}
	}
	return false
}

// SessionFinish is what gets recorded when a session ends
type SessionFinish struct {
	Outcome     SessionOutcome
	LastRoundID string
	Scores      map[string]ResourceAmount
	FinishedAt  time.Time
}

// StartSessionRequest optionally overrides the configured game parameters
type StartSessionRequest struct {
	StartAmount *ResourceAmount `json:"startAmount,omitempty"`
	NumRounds   *int            `json:"numRounds,omitempty"`
	PoolFloor   *ResourceAmount `json:"poolFloor,omitempty"`
}

// ScoreEntry is one player's cumulative extraction in a session
type ScoreEntry struct {
	PlayerID  string         `json:"playerId"`
	Nickname  string         `json:"nickname"`
	Extracted ResourceAmount `json:"extracted"`
	Rank      int            `json:"rank"`
}
