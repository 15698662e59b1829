package model

import "time"

// Move is one player's extraction request for a round
type Move struct {
	ID          string         `json:"id" bson:"_id"`
	RoundID     string         `json:"roundId" bson:"roundId"`
	SessionID   string         `json:"sessionId" bson:"sessionId"`
	RoundNumber int            `json:"roundNumber" bson:"roundNumber"`
	PlayerID    string         `json:"playerId" bson:"playerId"`
	Amount      ResourceAmount `json:"amount" bson:"amount"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
}

// SubmitMoveRequest is the request body for making a move
type SubmitMoveRequest struct {
	Amount ResourceAmount `json:"amount"`
}
