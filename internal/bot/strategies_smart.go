package bot

import (
	"math/rand"

	"kmahjong/internal/domain"
)

// SmartBot keeps the easy bot's reflexes but scores its discards: lone
// honors go first, then isolated tiles and classes that can no longer
// complete a set. Ties break randomly so its play does not telegraph.
type SmartBot struct {
	rng     *rand.Rand
	weights DiscardWeights
}

func (b *SmartBot) ChooseTurn(round *domain.Round, seat int, canTsumo bool, kongs []domain.KongOption) (Move, error) {
	if canTsumo {
		return Move{Tsumo: true}, nil
	}
	if len(kongs) > 0 {
		return Move{Kong: &kongs[0]}, nil
	}
	return Move{Discard: b.pickDiscard(round, seat)}, nil
}

func (b *SmartBot) pickDiscard(round *domain.Round, seat int) domain.Tile {
	tiles := round.Seats[seat].Tiles
	counts := domain.CountTiles(tiles)

	visible := make(map[domain.Tile]int, len(counts))
	for t, n := range counts {
		visible[t] = n
	}
	for _, s := range round.Seats {
		for _, t := range s.Discards {
			visible[t]++
		}
		for _, m := range s.Melds {
			n := 3
			if m.IsKong() {
				n = 4
			}
			visible[m.Tile] += n
		}
	}

	best := -1
	var candidates []domain.Tile
	for t, n := range counts {
		w := 0
		if t.IsHonor() {
			w += b.weights.Honor
		}
		if n == 1 {
			w += b.weights.Single
		}
		if visible[t] >= 4 && n < 3 {
			w += b.weights.DeadClass
		}
		if w > best {
			best = w
			candidates = candidates[:0]
		}
		if w == best {
			candidates = append(candidates, t)
		}
	}

	return candidates[b.rng.Intn(len(candidates))]
}

func (b *SmartBot) ChooseCall(round *domain.Round, seat int, tile domain.Tile, options []domain.CallKind) domain.CallKind {
	for _, o := range options {
		if o == domain.CallRon {
			return domain.CallRon
		}
	}
	for _, o := range options {
		if o == domain.CallKong {
			return domain.CallKong
		}
	}
	for _, o := range options {
		if o == domain.CallPung && b.rng.Intn(2) == 0 {
			return domain.CallPung
		}
	}
	return domain.CallPass
}

func (b *SmartBot) OnEvent(event interface{}) {}
