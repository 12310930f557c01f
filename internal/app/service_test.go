package app

import (
	"errors"
	"math/rand"
	"testing"

	"kmahjong/internal/domain"
)

func TestStartMatchEmitsOpening(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))

	m, events := svc.StartMatch()
	if m == nil || m.Over {
		t.Fatal("match not started")
	}
	if len(events) != 1 || events[0].Kind != EventMatchStarted {
		t.Fatalf("events = %+v, want one match_started", events)
	}
	payload := events[0].Payload.(MatchStartedPayload)
	if payload.Dealer != m.Dealer {
		t.Fatalf("payload dealer = %d, want %d", payload.Dealer, m.Dealer)
	}
	if payload.Scores[0] != domain.StartingScore {
		t.Fatalf("payload scores = %v", payload.Scores)
	}
}

func TestStartRoundEventFlow(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(7)))
	m, _ := svc.StartMatch()

	events, err := svc.StartRound(m)
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}

	if events[0].Kind != EventRoundStarted {
		t.Fatalf("first event = %s, want round_started", events[0].Kind)
	}
	if len(events[0].RecipientSeats) != 0 {
		t.Fatal("round_started must broadcast")
	}

	hands := 0
	for _, ev := range events {
		if ev.Kind != EventHandDealt {
			continue
		}
		hands++
		payload := ev.Payload.(HandDealtPayload)
		if len(ev.RecipientSeats) != 1 || ev.RecipientSeats[0] != payload.Seat {
			t.Fatalf("hand_dealt recipients = %v for seat %d", ev.RecipientSeats, payload.Seat)
		}
		want := 13
		if payload.Seat == m.Round.Dealer {
			want = 14
		}
		if len(payload.Tiles) != want {
			t.Fatalf("seat %d dealt %d tiles, want %d", payload.Seat, len(payload.Tiles), want)
		}
	}
	if hands != domain.NumSeats {
		t.Fatalf("hand_dealt events = %d, want %d", hands, domain.NumSeats)
	}

	last := events[len(events)-1]
	if last.Kind != EventTileDrawn {
		t.Fatalf("last event = %s, want tile_drawn", last.Kind)
	}
	drawn := last.Payload.(TileDrawnPayload)
	if drawn.Seat != m.Round.Dealer {
		t.Fatalf("tile_drawn seat = %d, want dealer", drawn.Seat)
	}
	// The dealer's opening turn has no separate draw.
	if drawn.Tile != nil {
		t.Fatalf("opening draw = %v, want none", drawn.Tile)
	}

	if _, err := svc.StartRound(m); !errors.Is(err, domain.ErrRoundInProgress) {
		t.Fatalf("double start error = %v, want ErrRoundInProgress", err)
	}
}

func TestDiscardWithoutRound(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)))
	m, _ := svc.StartMatch()

	if _, err := svc.Discard(m, 0, domain.Tile{Suit: domain.SuitMan, Rank: 1}); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("error = %v, want ErrNoActiveRound", err)
	}
	if _, err := svc.DeclareTsumo(m, 0); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("error = %v, want ErrNoActiveRound", err)
	}
	if _, err := svc.ResolveCalls(m, nil); !errors.Is(err, ErrNoActiveRound) {
		t.Fatalf("error = %v, want ErrNoActiveRound", err)
	}
}

func TestDiscardEmitsTurnOrOffers(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(11)))
	m, _ := svc.StartMatch()
	if _, err := svc.StartRound(m); err != nil {
		t.Fatalf("start round error: %v", err)
	}

	round := m.Round
	seat := round.Current
	tile := round.Seats[seat].Tiles[len(round.Seats[seat].Tiles)-1]

	events, err := svc.Discard(m, seat, tile)
	if err != nil {
		t.Fatalf("discard error: %v", err)
	}
	if events[0].Kind != EventTileDiscarded {
		t.Fatalf("first event = %s, want tile_discarded", events[0].Kind)
	}

	switch round.Phase {
	case domain.RoundCalling:
		for _, ev := range events[1:] {
			if ev.Kind != EventCallsOffered {
				t.Fatalf("event = %s, want calls_offered", ev.Kind)
			}
			payload := ev.Payload.(CallsOfferedPayload)
			if len(ev.RecipientSeats) != 1 || ev.RecipientSeats[0] != payload.Seat {
				t.Fatalf("calls_offered recipients = %v", ev.RecipientSeats)
			}
			if payload.From != seat {
				t.Fatalf("calls_offered from = %d, want %d", payload.From, seat)
			}
		}
	case domain.RoundDiscarding:
		if events[1].Kind != EventTurnStarted {
			t.Fatalf("second event = %s, want turn_started", events[1].Kind)
		}
		turn := events[1].Payload.(TurnStartedPayload)
		if !turn.Drew {
			t.Fatal("advanced turn must draw")
		}
		private := events[2].Payload.(TileDrawnPayload)
		if private.Tile == nil {
			t.Fatal("private draw missing")
		}
	default:
		t.Fatalf("unexpected phase %s", round.Phase)
	}
}

// Drive full matches with a trivial policy: tsumo when possible, otherwise
// discard the freshest tile, pass every call. Twelve rounds must settle
// and the match must close with standings.
func TestFullMatchPlaysToCompletion(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(99)))
	m, _ := svc.StartMatch()

	roundsEnded := 0
	var standings []domain.Standing

	for !m.Over {
		events, err := svc.StartRound(m)
		if err != nil {
			t.Fatalf("start round error: %v", err)
		}

		for m.Round != nil && !m.Round.Finished() {
			round := m.Round
			switch round.Phase {
			case domain.RoundDiscarding:
				seat := round.Current
				if round.CanTsumo {
					events, err = svc.DeclareTsumo(m, seat)
				} else {
					s := round.Seats[seat]
					events, err = svc.Discard(m, seat, s.Tiles[len(s.Tiles)-1])
				}
			case domain.RoundCalling:
				events, err = svc.ResolveCalls(m, nil)
			}
			if err != nil {
				t.Fatalf("play error: %v", err)
			}
		}

		for _, ev := range events {
			switch ev.Kind {
			case EventRoundEnded:
				roundsEnded++
				payload := ev.Payload.(RoundEndedPayload)
				if payload.Round != roundsEnded {
					t.Fatalf("round_ended number = %d, want %d", payload.Round, roundsEnded)
				}
			case EventMatchEnded:
				standings = ev.Payload.(MatchEndedPayload).Standings
			}
		}
	}

	if roundsEnded != domain.TotalRounds {
		t.Fatalf("rounds ended = %d, want %d", roundsEnded, domain.TotalRounds)
	}
	if len(standings) != domain.NumSeats {
		t.Fatalf("standings = %+v", standings)
	}
	if standings[0].Rank != 1 {
		t.Fatalf("top rank = %d, want 1", standings[0].Rank)
	}

	total := 0
	for _, st := range standings {
		total += st.Score
	}
	// Settlements are zero-sum.
	if total != domain.NumSeats*domain.StartingScore {
		t.Fatalf("score total = %d, want %d", total, domain.NumSeats*domain.StartingScore)
	}
}
