package model

import (
	"encoding/json"
	"fmt"
)

// SignalKind tags the payload carried by a signal envelope
type SignalKind string

const (
	SignalSessionStarted SignalKind = "session_started"
	SignalRoundClosed    SignalKind = "round_closed"
)

// Signal is a notification pushed to players. Each kind has a fixed payload shape.
type Signal interface {
	Kind() SignalKind
	// Key identifies the event; receivers drop repeated keys.
	Key() string
}

// SessionStarted tells the roster that round one is open
type SessionStarted struct {
	SessionID    string         `json:"sessionId"`
	Code         string         `json:"code"`
	RoundID      string         `json:"roundId"`
	StartingPool ResourceAmount `json:"startingPool"`
	NumRounds    int            `json:"numRounds"`
}

func (s *SessionStarted) Kind() SignalKind { return SignalSessionStarted }
func (s *SessionStarted) Key() string      { return string(SignalSessionStarted) + ":" + s.RoundID }

// RoundClosed carries the close decision of a round
type RoundClosed struct {
	SessionID     string         `json:"sessionId"`
	RoundID       string         `json:"roundId"`
	RoundNumber   int            `json:"roundNumber"`
	NextAction    NextAction     `json:"nextAction"`
	ResultingPool ResourceAmount `json:"resultingPool"`
	NextRoundID   string         `json:"nextRoundId,omitempty"`
}

func (s *RoundClosed) Kind() SignalKind { return SignalRoundClosed }
func (s *RoundClosed) Key() string      { return string(SignalRoundClosed) + ":" + s.RoundID }

// RoundClosedFrom builds the signal for a round result
func RoundClosedFrom(r *RoundResult) *RoundClosed {
	return &RoundClosed{
		SessionID:     r.SessionID,
		RoundID:       r.RoundID,
		RoundNumber:   r.RoundNumber,
		NextAction:    r.NextAction,
		ResultingPool: r.ResultingPool,
		NextRoundID:   r.NextRoundID,
	}
}

// SignalEnvelope is the wire format of a signal
type SignalEnvelope struct {
	Type    SignalKind      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeSignal wraps a signal in its envelope
func EncodeSignal(s Signal) (*SignalEnvelope, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return &SignalEnvelope{Type: s.Kind(), Payload: data}, nil
}

// DecodeSignal resolves an envelope into its concrete signal type
func DecodeSignal(env *SignalEnvelope) (Signal, error) {
	var s Signal
	switch env.Type {
	case SignalSessionStarted:
		s = &SessionStarted{}
	case SignalRoundClosed:
		s = &RoundClosed{}
	default:
		return nil, fmt.Errorf("unknown signal type %q", env.Type)
	}
	if err := json.Unmarshal(env.Payload, s); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return s, nil
}
