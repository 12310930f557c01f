package bot

import (
	"math/rand"

	"kmahjong/internal/domain"
)

// EasyBot plays the simplest sensible game: it always wins when it can,
// declares the first kong on offer, and otherwise throws a random honor
// before a random number tile.
type EasyBot struct {
	rng *rand.Rand
}

func (b *EasyBot) ChooseTurn(round *domain.Round, seat int, canTsumo bool, kongs []domain.KongOption) (Move, error) {
	if canTsumo {
		return Move{Tsumo: true}, nil
	}
	if len(kongs) > 0 {
		return Move{Kong: &kongs[0]}, nil
	}

	tiles := round.Seats[seat].Tiles
	var honors, numbers []domain.Tile
	for _, t := range tiles {
		if t.IsHonor() {
			honors = append(honors, t)
		} else {
			numbers = append(numbers, t)
		}
	}

	if len(honors) > 0 {
		return Move{Discard: honors[b.rng.Intn(len(honors))]}, nil
	}
	return Move{Discard: numbers[b.rng.Intn(len(numbers))]}, nil
}

func (b *EasyBot) ChooseCall(round *domain.Round, seat int, tile domain.Tile, options []domain.CallKind) domain.CallKind {
	for _, o := range options {
		if o == domain.CallRon {
			return domain.CallRon
		}
	}
	for _, o := range options {
		if o == domain.CallKong && b.rng.Intn(2) == 0 {
			return domain.CallKong
		}
	}
	for _, o := range options {
		if o == domain.CallPung && b.rng.Intn(4) == 0 {
			return domain.CallPung
		}
	}
	return domain.CallPass
}

func (b *EasyBot) OnEvent(event interface{}) {}
