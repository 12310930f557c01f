package bot

import (
	"kmahjong/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to act on its own turn.
func (a *Agent) Play(round *domain.Round, seat int, canTsumo bool, kongs []domain.KongOption) (Move, error) {
	move, err := a.Strategy.ChooseTurn(round, seat, canTsumo, kongs)
	if err != nil {
		// Fall back to discarding the last tile so the round keeps moving.
		tiles := round.Seats[seat].Tiles
		return Move{Discard: tiles[len(tiles)-1]}, err
	}
	return move, nil
}

// React asks the agent to answer a call offer on another seat's discard.
func (a *Agent) React(round *domain.Round, seat int, tile domain.Tile, options []domain.CallKind) domain.CallKind {
	return a.Strategy.ChooseCall(round, seat, tile, options)
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event interface{}) {
	a.Strategy.OnEvent(event)
}
