package domain

import (
	"encoding/json"
	"math/rand"
)

// Snapshot serializes the complete match state, the in-flight round
// included. The RNG is not part of the snapshot: the wall is already laid
// when a round starts, so replaying the same actions against a restored
// snapshot gives the same results.
func (m *Match) Snapshot() ([]byte, error) {
	return json.Marshal(m)
}

// RestoreMatch rebuilds a match from a snapshot, injecting a fresh RNG for
// the rounds still to come.
func RestoreMatch(data []byte, rng *rand.Rand) (*Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.rng = rng
	return &m, nil
}
