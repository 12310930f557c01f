package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"kmahjong/internal/app"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/runtime"
)

func replayTestContext(userID string) context.Context {
	ctx := context.Background()
	if userID != "" {
		ctx = context.WithValue(ctx, runtime.RUNTIME_CTX_USER_ID, userID)
	}
	return context.WithValue(ctx, runtime.RUNTIME_CTX_ENV, map[string]string{
		"kmahjong_replay_secret": "test-secret",
		"kmahjong_replay_issuer": "kmahjong",
	})
}

func TestRpcReplayToken_GeneratesValidClaims(t *testing.T) {
	ctx := replayTestContext("user123")
	payload := `{"action":"spectate","match_id":"match-1"}`

	raw1, err := rpcReplayToken(ctx, noopLogger{}, nil, nil, payload)
	if err != nil {
		t.Fatalf("rpcReplayToken error: %v", err)
	}
	token1 := parseReplayToken(t, raw1)

	raw2, err := rpcReplayToken(ctx, noopLogger{}, nil, nil, payload)
	if err != nil {
		t.Fatalf("rpcReplayToken error: %v", err)
	}
	token2 := parseReplayToken(t, raw2)

	claims1 := parseReplayClaims(t, token1, "test-secret")
	claims2 := parseReplayClaims(t, token2, "test-secret")

	assertClaim(t, claims1, "iss", "kmahjong")
	assertClaim(t, claims1, "sub", "user123")
	assertClaim(t, claims1, "action", app.ReplayTokenActionSpectate)
	assertClaim(t, claims1, "match", "match-1")

	// jti is a per-token nonce.
	jti1, ok1 := claims1["jti"]
	jti2, ok2 := claims2["jti"]
	if !ok1 || !ok2 {
		t.Fatal("jti claim missing")
	}
	if jti1 == jti2 {
		t.Errorf("jti claim must be unique per token. Got %v for both.", jti1)
	}
}

func TestRpcReplayToken_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		payload string
	}{
		{
			name:    "NoSession",
			payload: `{"action":"spectate","match_id":"match-1"}`,
		},
		{
			name:    "BadPayload",
			userID:  "user123",
			payload: `action=spectate`,
		},
		{
			name:    "UnknownAction",
			userID:  "user123",
			payload: `{"action":"rewind","match_id":"match-1"}`,
		},
		{
			name:    "MissingMatchID",
			userID:  "user123",
			payload: `{"action":"replay"}`,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			ctx := replayTestContext(test.userID)
			if _, err := rpcReplayToken(ctx, noopLogger{}, nil, nil, test.payload); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func parseReplayToken(t *testing.T, jsonRaw string) string {
	t.Helper()

	var resp ReplayTokenResponse
	if err := json.Unmarshal([]byte(jsonRaw), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token in response")
	}
	return resp.Token
}

func parseReplayClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func assertClaim(t *testing.T, claims jwt.MapClaims, key, expected string) {
	t.Helper()
	val, ok := claims[key]
	if !ok {
		t.Errorf("missing claim: %s", key)
		return
	}
	str, ok := val.(string)
	if !ok {
		t.Errorf("claim %s is not a string: %v", key, val)
		return
	}
	if str != expected {
		t.Errorf("claim %s = %s, want %s", key, str, expected)
	}
}
