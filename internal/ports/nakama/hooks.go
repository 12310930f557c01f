package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"kmahjong/internal/app/onboarding"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice onboards freshly created accounts: a friendly
// display name plus the starting chip grant. Returning sessions pass
// straight through.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID, err := sessionUserID(ctx, out)
	if err != nil {
		logger.Error("onboarding: cannot resolve user id: %v", err)
		return err
	}

	logger.Info("onboarding new player %s", userID)

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaWelcomeBonusAdapter(nk), nil)
	result, err := service.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("onboarding: profile update for %s failed: %v", userID, result.ProfileUpdateErr)
	}
	if !result.WelcomeBonusGranted {
		logger.Info("onboarding: player %s already holds starting chips", userID)
	}
	if err != nil {
		logger.Error("onboarding failed for %s: %v", userID, err)
		return err
	}
	return nil
}

// sessionUserID prefers the runtime context's user id and falls back to
// the session token, which carries it in the uid claim.
func sessionUserID(ctx context.Context, session *api.Session) (string, error) {
	if id, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok && id != "" {
		return id, nil
	}
	return userIDFromSessionToken(session.Token)
}

func userIDFromSessionToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("session token is not a JWT")
	}

	// JWT segments use unpadded base64url.
	data, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode session token payload: %w", err)
	}

	var claims struct {
		UID string `json:"uid"`
	}
	if err := json.Unmarshal(data, &claims); err != nil {
		return "", fmt.Errorf("parse session token claims: %w", err)
	}
	if claims.UID == "" {
		return "", fmt.Errorf("session token carries no uid claim")
	}
	return claims.UID, nil
}
