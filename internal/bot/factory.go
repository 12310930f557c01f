package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// BotLevel selects a strategy implementation.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelSmart
)

// LevelFromDifficulty maps an identity difficulty string to a level.
func LevelFromDifficulty(difficulty string) BotLevel {
	switch difficulty {
	case "smart", "hard":
		return BotLevelSmart
	default:
		return BotLevelEasy
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelEasy:
		return &EasyBot{rng: rng}, nil
	case BotLevelSmart:
		return &SmartBot{rng: rng, weights: DefaultWeights}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// NewAgent builds an agent for a provisioned bot identity, falling back to
// the easy strategy when the identity is unknown.
func NewAgent(botID string) (*Agent, error) {
	level := BotLevelEasy
	name := GetBotDisplayName(botID)
	if identity, ok := GetBotConfig(botID); ok {
		level = LevelFromDifficulty(identity.Difficulty)
	}

	brain, err := NewBrain(level, nil)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: botID, Name: name, Strategy: brain}, nil
}
