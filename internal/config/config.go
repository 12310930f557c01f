package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig carries the tunables a deployment can override without a
// rebuild. Values the file leaves at zero fall back to the defaults below.
type GameConfig struct {
	// TurnDurationSeconds is how long a human seat may think before the
	// server discards for it.
	TurnDurationSeconds int `json:"turn_duration_seconds"`
	// CallDurationSeconds is how long a human seat may hold a call offer
	// before it counts as a pass.
	CallDurationSeconds int `json:"call_duration_seconds"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding bots to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// ReplayTokenSecret signs spectator/replay tokens. Empty disables the RPC.
	ReplayTokenSecret string `json:"replay_token_secret"`
	// ReplayTokenIssuer is the iss claim of issued tokens.
	ReplayTokenIssuer string `json:"replay_token_issuer"`
}

const (
	defaultTurnDurationSeconds     = 20
	defaultCallDurationSeconds     = 8
	defaultBotAutoFillDelaySeconds = 5
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// TurnDurationSeconds returns the configured turn timer or the default.
func TurnDurationSeconds() int {
	if cfg == nil || cfg.TurnDurationSeconds <= 0 {
		return defaultTurnDurationSeconds
	}
	return cfg.TurnDurationSeconds
}

// CallDurationSeconds returns the configured call timer or the default.
func CallDurationSeconds() int {
	if cfg == nil || cfg.CallDurationSeconds <= 0 {
		return defaultCallDurationSeconds
	}
	return cfg.CallDurationSeconds
}

// BotAutoFillDelaySeconds returns the configured auto-fill delay or the default.
func BotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return defaultBotAutoFillDelaySeconds
	}
	return cfg.BotAutoFillDelaySeconds
}

// ReplayTokenConfig returns the signing secret and issuer for replay
// tokens. Either may be empty when unconfigured.
func ReplayTokenConfig() (secret, issuer string) {
	if cfg == nil {
		return "", ""
	}
	return cfg.ReplayTokenSecret, cfg.ReplayTokenIssuer
}
