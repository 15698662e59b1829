package service

import (
	"commons/internal/model"
	"commons/internal/repository"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLen    = 6
	maxCodeLen = 32
)

// CodeService is the registry of game codes and their roster candidates
type CodeService struct {
	codes   repository.CodeRepo
	players repository.PlayerRepo
	logger  *zap.Logger
}

// NewCodeService creates a new code service
func NewCodeService(codes repository.CodeRepo, players repository.PlayerRepo, logger *zap.Logger) *CodeService {
	return &CodeService{
		codes:   codes,
		players: players,
		logger:  logger,
	}
}

// CreateCode returns the anchor for code, creating it on first use.
// An empty code gets a freshly generated one.
func (s *CodeService) CreateCode(ctx context.Context, code, creatorID string) (*model.GameCode, error) {
	code = normalizeCode(code)
	if code == "" {
		generated, err := s.freshCode(ctx)
		if err != nil {
			return nil, err
		}
		code = generated
	}
	if !validCode(code) {
		return nil, ErrInvalidCode
	}

	anchor, err := s.codes.Ensure(ctx, code, creatorID)
	if err != nil {
		return nil, unavailable("ensure code", err)
	}
	s.logger.Debug("code ensured", zap.String("code", anchor.Code), zap.String("anchor", anchor.ID))
	return anchor, nil
}

// JoinWithCode adds playerID under nickname to the code's roster candidates
func (s *CodeService) JoinWithCode(ctx context.Context, code, playerID, nickname string) (*model.GameCode, error) {
	anchor, err := s.anchor(ctx, code)
	if err != nil {
		return nil, err
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrInvalidNickname
	}

	profile := &model.PlayerProfile{
		Code:     anchor.Code,
		PlayerID: playerID,
		Nickname: nickname,
	}
	if err := s.players.Create(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repository.ErrNicknameTaken):
			return nil, ErrDuplicateNickname
		case errors.Is(err, repository.ErrAlreadyJoined):
			return nil, ErrAlreadyJoined
		}
		return nil, unavailable("join code", err)
	}

	s.logger.Info("player joined code",
		zap.String("code", anchor.Code),
		zap.String("player", playerID),
		zap.String("nickname", nickname),
	)
	return anchor, nil
}

// ListPlayers returns the code's roster candidates in join order
func (s *CodeService) ListPlayers(ctx context.Context, code string) ([]*model.PlayerProfile, error) {
	anchor, err := s.anchor(ctx, code)
	if err != nil {
		return nil, err
	}
	profiles, err := s.players.ListByCode(ctx, anchor.Code)
	if err != nil {
		return nil, unavailable("list players", err)
	}
	if profiles == nil {
		profiles = []*model.PlayerProfile{}
	}
	return profiles, nil
}

func (s *CodeService) anchor(ctx context.Context, code string) (*model.GameCode, error) {
	code = normalizeCode(code)
	if !validCode(code) {
		return nil, ErrUnknownCode
	}
	anchor, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return nil, unavailable("get code", err)
	}
	if anchor == nil {
		return nil, ErrUnknownCode
	}
	return anchor, nil
}

// freshCode picks a generated code no anchor uses yet
func (s *CodeService) freshCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		existing, err := s.codes.GetByCode(ctx, code)
		if err != nil {
			return "", unavailable("get code", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique game code")
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validCode(code string) bool {
	if code == "" || len(code) > maxCodeLen {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

// generateCode creates a 6-char code without look-alike characters
func generateCode() (string, error) {
	b := make([]byte, codeLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	code := make([]byte, codeLen)
	for i := range code {
		code[i] = codeChars[int(b[i])%len(codeChars)]
	}
	return string(code), nil
}
