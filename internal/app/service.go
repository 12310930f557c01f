package app

import (
	"errors"
	"math/rand"
	"time"

	"kmahjong/internal/domain"
)

// Service contains the match use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNoActiveRound = errors.New("no round in progress")
	ErrRoundActive   = errors.New("round already in progress")
)

// StartMatch rolls for the first dealer and returns the fresh match.
func (s *Service) StartMatch() (*domain.Match, []Event) {
	m := domain.NewMatch(s.rng)
	return m, []Event{{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			OpeningRoll: m.OpeningRoll,
			Dealer:      m.Dealer,
			Scores:      m.Scores,
		},
	}}
}

// StartRound deals the next round and emits the opening events: the public
// round info, each seat's hand privately, and the dealer's opening turn.
func (s *Service) StartRound(m *domain.Match) ([]Event, error) {
	turn, err := m.StartRound()
	if err != nil {
		return nil, err
	}

	round := m.Round
	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:  m.RoundNumber,
			Dealer: round.Dealer,
			Dice:   round.Dice,
		},
	}}

	for seat := 0; seat < domain.NumSeats; seat++ {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Seat:    seat,
				Tiles:   round.Seats[seat].Tiles,
				Flowers: round.Seats[seat].Flowers,
			},
			RecipientSeats: []int{seat},
		})
	}

	return append(events, s.turnEvents(m, &turn)...), nil
}

// Discard plays a tile for the given seat. When other seats can call, the
// offers go out privately and the round waits for ResolveCalls.
func (s *Service) Discard(m *domain.Match, seat int, tile domain.Tile) ([]Event, error) {
	round := m.Round
	if round == nil {
		return nil, ErrNoActiveRound
	}

	res, err := round.Discard(seat, tile)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventTileDiscarded,
		Payload: TileDiscardedPayload{Seat: seat, Tile: tile},
	}}

	if len(res.Offers) > 0 {
		for target := 0; target < domain.NumSeats; target++ {
			opts, ok := res.Offers[target]
			if !ok {
				continue
			}
			events = append(events, Event{
				Kind: EventCallsOffered,
				Payload: CallsOfferedPayload{
					Seat:    target,
					From:    seat,
					Tile:    tile,
					Options: opts,
				},
				RecipientSeats: []int{target},
			})
		}
		return events, nil
	}

	return append(events, s.advance(m, res.Turn, res.Outcome)...), nil
}

// ResolveCalls settles the pending discard from the collected decisions
// and continues play.
func (s *Service) ResolveCalls(m *domain.Match, decisions map[int]domain.CallKind) ([]Event, error) {
	round := m.Round
	if round == nil {
		return nil, ErrNoActiveRound
	}

	res, err := round.ResolveCalls(decisions)
	if err != nil {
		return nil, err
	}

	var events []Event
	if res.Call != nil {
		events = append(events, Event{
			Kind: EventCallMade,
			Payload: CallMadePayload{
				Seat: res.Call.Seat,
				Kind: res.Call.Kind,
				Tile: res.Call.Tile,
				From: res.Call.From,
			},
		})
	}

	return append(events, s.advance(m, res.Turn, res.Outcome)...), nil
}

// DeclareTsumo ends the round on a self-drawn win.
func (s *Service) DeclareTsumo(m *domain.Match, seat int) ([]Event, error) {
	round := m.Round
	if round == nil {
		return nil, ErrNoActiveRound
	}

	if _, err := round.DeclareTsumo(seat); err != nil {
		return nil, err
	}
	return s.finishRound(m), nil
}

// DeclareKong exposes a self-kong and continues with the replacement draw.
func (s *Service) DeclareKong(m *domain.Match, seat int, opt domain.KongOption) ([]Event, error) {
	round := m.Round
	if round == nil {
		return nil, ErrNoActiveRound
	}

	res, err := round.DeclareKong(seat, opt)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind: EventCallMade,
		Payload: CallMadePayload{
			Seat: res.Call.Seat,
			Kind: res.Call.Kind,
			Tile: res.Call.Tile,
			From: res.Call.From,
		},
	}}

	return append(events, s.advance(m, res.Turn, res.Outcome)...), nil
}

// advance emits whatever a state transition led to: the next turn, or the
// end of the round.
func (s *Service) advance(m *domain.Match, turn *domain.TurnStart, outcome *domain.Outcome) []Event {
	if outcome != nil {
		return s.finishRound(m)
	}
	if turn == nil {
		return nil
	}
	return s.turnEvents(m, turn)
}

// turnEvents splits a turn into its public and private views.
func (s *Service) turnEvents(m *domain.Match, turn *domain.TurnStart) []Event {
	return []Event{
		{
			Kind: EventTurnStarted,
			Payload: TurnStartedPayload{
				Seat:          turn.Seat,
				Drew:          turn.Drawn != nil,
				DeadDraw:      turn.DeadDraw,
				Flowers:       turn.Flowers,
				WallRemaining: m.Round.Wall.Remaining(),
			},
		},
		{
			Kind: EventTileDrawn,
			Payload: TileDrawnPayload{
				Seat:     turn.Seat,
				Tile:     turn.Drawn,
				CanTsumo: turn.CanTsumo,
				Kongs:    turn.Kongs,
			},
			RecipientSeats: []int{turn.Seat},
		},
	}
}

// finishRound settles the completed round into the match scores and emits
// the closing events.
func (s *Service) finishRound(m *domain.Match) []Event {
	roundNumber := m.RoundNumber
	outcome := *m.Round.Outcome

	settlement, err := m.CompleteRound()
	if err != nil {
		return nil
	}

	events := []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			Round:      roundNumber,
			Outcome:    outcome,
			Settlement: settlement,
			Scores:     settlement.Scores,
		},
	}}

	if settlement.MatchOver {
		events = append(events, Event{
			Kind:    EventMatchEnded,
			Payload: MatchEndedPayload{Standings: m.FinalStandings()},
		})
	}

	return events
}
