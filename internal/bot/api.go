package bot

import (
	"kmahjong/internal/domain"
)

// Move represents the decision a brain makes on its own turn. When Tsumo
// is set the seat wins; when Kong is set the seat declares it and will be
// asked again after the replacement draw; otherwise Discard is played.
type Move struct {
	Tsumo   bool
	Kong    *domain.KongOption
	Discard domain.Tile
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// ChooseTurn decides the seat's own turn given the options the round
	// reported for it.
	ChooseTurn(round *domain.Round, seat int, canTsumo bool, kongs []domain.KongOption) (Move, error)
	// ChooseCall reacts to another seat's discard.
	ChooseCall(round *domain.Round, seat int, tile domain.Tile, options []domain.CallKind) domain.CallKind
	OnEvent(event interface{})
}
