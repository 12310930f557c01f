package domain

import "errors"

var (
	ErrNotYourTurn     = errors.New("not this seat's turn")
	ErrWrongPhase      = errors.New("action not legal in current phase")
	ErrTileNotInHand   = errors.New("tile not in hand")
	ErrNoSuchCall      = errors.New("call not available for this seat")
	ErrRoundFinished   = errors.New("round already finished")
	ErrMatchFinished   = errors.New("match already finished")
	ErrRoundInProgress = errors.New("round still in progress")
	ErrNotWinningHand  = errors.New("hand is not a winning hand")
	ErrNoSuchKong      = errors.New("kong not available")
	ErrMalformedTile   = errors.New("malformed tile reference")
	ErrInvalidSeat     = errors.New("seat index out of range")
)
