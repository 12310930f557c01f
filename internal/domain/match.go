package domain

import (
	"math/rand"
	"sort"
)

const (
	// TotalRounds is the fixed match length.
	TotalRounds = 12
	// StartingScore is each seat's opening score.
	StartingScore = 50
)

// Standing is one row of the final table.
type Standing struct {
	Seat  int `json:"seat"`
	Score int `json:"score"`
	Wins  int `json:"wins"`
	Rank  int `json:"rank"`
}

// Settlement describes the score movement after a round.
type Settlement struct {
	Deltas     [NumSeats]int `json:"deltas"`
	Scores     [NumSeats]int `json:"scores"`
	Winner     int           `json:"winner"`
	Points     int           `json:"points"`
	NextDealer int           `json:"next_dealer"`
	MatchOver  bool          `json:"match_over"`
}

// Match runs a full twelve-round session: dealer determination, rounds,
// carry-over scoring and final standings.
type Match struct {
	Scores      [NumSeats]int    `json:"scores"`
	Wins        [NumSeats]int    `json:"wins"`
	RoundNumber int              `json:"round_number"`
	Dealer      int              `json:"dealer"`
	OpeningRoll [NumSeats][2]int `json:"opening_roll"`
	Round       *Round           `json:"round,omitempty"`
	Over        bool             `json:"over"`

	rng *rand.Rand
}

// NewMatch rolls for the first dealer and seats everyone at the starting
// score. Every seat throws two dice; the highest sum deals, ties going to
// the lowest seat index.
func NewMatch(rng *rand.Rand) *Match {
	m := &Match{rng: rng}
	best := -1
	for seat := 0; seat < NumSeats; seat++ {
		m.Scores[seat] = StartingScore
		roll := [2]int{rng.Intn(6) + 1, rng.Intn(6) + 1}
		m.OpeningRoll[seat] = roll
		if sum := roll[0] + roll[1]; sum > best {
			best = sum
			m.Dealer = seat
		}
	}
	return m
}

// StartRound deals the next round with the current dealer.
func (m *Match) StartRound() (TurnStart, error) {
	if m.Over {
		return TurnStart{}, ErrMatchFinished
	}
	if m.Round != nil && !m.Round.Finished() {
		return TurnStart{}, ErrRoundInProgress
	}

	round, turn, err := NewRound(m.rng, m.Dealer)
	if err != nil {
		return TurnStart{}, err
	}
	m.RoundNumber++
	m.Round = round
	return turn, nil
}

// CompleteRound settles the finished round into the match scores. On a
// tsumo every other seat pays the winner the full point total; on a ron
// only the discarder pays. A drawn round moves nothing and keeps the
// dealer; otherwise the winner deals next. Scores may go negative.
func (m *Match) CompleteRound() (Settlement, error) {
	if m.Round == nil || !m.Round.Finished() {
		return Settlement{}, ErrRoundInProgress
	}

	outcome := m.Round.Outcome
	s := Settlement{Winner: -1, NextDealer: m.Dealer}

	if outcome.Winner >= 0 {
		points := outcome.Result.Points
		s.Winner = outcome.Winner
		s.Points = points

		if outcome.Tsumo {
			for seat := 0; seat < NumSeats; seat++ {
				if seat == outcome.Winner {
					continue
				}
				s.Deltas[seat] -= points
				s.Deltas[outcome.Winner] += points
			}
		} else {
			s.Deltas[outcome.Loser] -= points
			s.Deltas[outcome.Winner] += points
		}

		m.Wins[outcome.Winner]++
		m.Dealer = outcome.Winner
		s.NextDealer = outcome.Winner
	}

	for seat := 0; seat < NumSeats; seat++ {
		m.Scores[seat] += s.Deltas[seat]
	}
	s.Scores = m.Scores

	m.Round = nil
	if m.RoundNumber >= TotalRounds {
		m.Over = true
	}
	s.MatchOver = m.Over

	return s, nil
}

// FinalStandings ranks the seats by score, ties broken by seat index.
func (m *Match) FinalStandings() []Standing {
	out := make([]Standing, 0, NumSeats)
	for seat := 0; seat < NumSeats; seat++ {
		out = append(out, Standing{Seat: seat, Score: m.Scores[seat], Wins: m.Wins[seat]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Seat < out[j].Seat
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
