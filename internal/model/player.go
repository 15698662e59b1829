package model

import "time"

// PlayerProfile is a player's entry in a game code's candidate roster
type PlayerProfile struct {
	ID       string    `json:"id" bson:"_id"`
	Code     string    `json:"code" bson:"code"`
	PlayerID string    `json:"playerId" bson:"playerId"`
	Nickname string    `json:"nickname" bson:"nickname"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// RosterEntry is a player snapshotted into a session
type RosterEntry struct {
	PlayerID string `json:"playerId" bson:"playerId"`
	Nickname string `json:"nickname" bson:"nickname"`
}

// RegisterPlayerRequest is the request body for obtaining a player identity
type RegisterPlayerRequest struct {
	Label string `json:"label,omitempty"`
}

// RegisterPlayerResponse carries a freshly issued player identity
type RegisterPlayerResponse struct {
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}
