package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ReplayService issues signed spectator and replay tokens so the replay
// gateway can authorize stream access without a Nakama session.
type ReplayService struct {
	secret string
	issuer string
}

const (
	ReplayTokenActionSpectate = "spectate"
	ReplayTokenActionReplay   = "replay"
)

func NewReplayService(secret, issuer string) *ReplayService {
	return &ReplayService{secret: secret, issuer: issuer}
}

// GenerateToken signs an HS256 token scoping the user to one match stream.
func (s *ReplayService) GenerateToken(user, action, matchID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("replay service is nil")
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("replay token config is incomplete")
	}

	switch action {
	case ReplayTokenActionSpectate, ReplayTokenActionReplay:
	default:
		return "", fmt.Errorf("unsupported replay action: %s", action)
	}

	claims := jwt.MapClaims{
		"iss":    s.issuer,
		"sub":    user,
		"exp":    time.Now().Add(time.Hour * 1).Unix(),
		"jti":    uuid.NewString(),
		"action": action,
		"match":  matchID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
