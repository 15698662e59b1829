package model

import "github.com/golang-jwt/jwt/v5"

// PlayerClaims are JWT claims identifying a player across every game code
type PlayerClaims struct {
	PlayerID string `json:"playerId"`
	Label    string `json:"label,omitempty"`
	jwt.RegisteredClaims
}
