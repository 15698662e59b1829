package service

import (
	"commons/internal/model"
	"commons/internal/repository"
	"context"
	"sort"
)

// QueryService answers read-only questions about a player's sessions
type QueryService struct {
	sessions repository.SessionRepo
}

// NewQueryService creates a new query service
func NewQueryService(sessions repository.SessionRepo) *QueryService {
	return &QueryService{sessions: sessions}
}

// OwnedSessions returns sessions started by playerID
func (s *QueryService) OwnedSessions(ctx context.Context, playerID string) ([]*model.Session, error) {
	sessions, err := s.sessions.ListByOwner(ctx, playerID)
	if err != nil {
		return nil, unavailable("list owned sessions", err)
	}
	return newestFirst(sessions), nil
}

// PlayedSessions returns sessions with playerID in the roster that someone else started
func (s *QueryService) PlayedSessions(ctx context.Context, playerID string) ([]*model.Session, error) {
	sessions, err := s.sessions.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, unavailable("list played sessions", err)
	}
	played := []*model.Session{}
	for _, session := range sessions {
		if session.OwnerID != playerID {
			played = append(played, session)
		}
	}
	return newestFirst(played), nil
}

// AllSessions is the union of owned and played sessions
func (s *QueryService) AllSessions(ctx context.Context, playerID string) ([]*model.Session, error) {
	owned, err := s.sessions.ListByOwner(ctx, playerID)
	if err != nil {
		return nil, unavailable("list owned sessions", err)
	}
	member, err := s.sessions.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, unavailable("list played sessions", err)
	}

	seen := make(map[string]bool, len(owned)+len(member))
	all := []*model.Session{}
	for _, list := range [][]*model.Session{owned, member} {
		for _, session := range list {
			if seen[session.ID] {
				continue
			}
			seen[session.ID] = true
			all = append(all, session)
		}
	}
	return newestFirst(all), nil
}

// ActiveSessions is the subset of AllSessions still being played
func (s *QueryService) ActiveSessions(ctx context.Context, playerID string) ([]*model.Session, error) {
	all, err := s.AllSessions(ctx, playerID)
	if err != nil {
		return nil, err
	}
	active := []*model.Session{}
	for _, session := range all {
		if session.Status == model.SessionActive {
			active = append(active, session)
		}
	}
	return active, nil
}

func newestFirst(sessions []*model.Session) []*model.Session {
	if sessions == nil {
		return []*model.Session{}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions
}
