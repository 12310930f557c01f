package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"kmahjong/internal/app"
	"kmahjong/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ReplayTokenResponse carries the signed token back to the client.
type ReplayTokenResponse struct {
	Token string `json:"token"`
}

// rpcReplayToken handles the RPC call from the client to get a spectator or replay token.
// Payload: {"action": "spectate" | "replay", "match_id": "..."}
func rpcReplayToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("No user ID in context", 16) // UNAUTHENTICATED
	}

	var req struct {
		Action  string `json:"action"`
		MatchID string `json:"match_id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	secret, issuer := config.ReplayTokenConfig()
	if secret == "" {
		// Config file may not ship a secret; allow an env override.
		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		secret = env["kmahjong_replay_secret"]
		if issuer == "" {
			issuer = env["kmahjong_replay_issuer"]
		}
	}

	service := app.NewReplayService(secret, issuer)
	token, err := service.GenerateToken(userID, req.Action, req.MatchID)
	if err != nil {
		logger.Warn("rpcReplayToken [User:%s]: %v", userID, err)
		return "", runtime.NewError(err.Error(), 3) // INVALID_ARGUMENT
	}

	b, _ := json.Marshal(ReplayTokenResponse{Token: token})
	return string(b), nil
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcReplayToken, rpcReplayToken)
}
