package app

import "kmahjong/internal/domain"

// EventKind identifies emitted engine events for Nakama dispatch.
type EventKind string

const (
	EventMatchStarted  EventKind = "match_started"
	EventRoundStarted  EventKind = "round_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventTurnStarted   EventKind = "turn_started"
	EventTileDrawn     EventKind = "tile_drawn"
	EventTileDiscarded EventKind = "tile_discarded"
	EventCallsOffered  EventKind = "calls_offered"
	EventCallMade      EventKind = "call_made"
	EventRoundEnded    EventKind = "round_ended"
	EventMatchEnded    EventKind = "match_ended"
)

// Event is an engine event with optional targeted recipient seats. Empty
// RecipientSeats means broadcast; the adapter maps seats to presences.
type Event struct {
	Kind           EventKind
	Payload        any
	RecipientSeats []int
}

type MatchStartedPayload struct {
	OpeningRoll [domain.NumSeats][2]int `json:"opening_roll"`
	Dealer      int                     `json:"dealer"`
	Scores      [domain.NumSeats]int    `json:"scores"`
}

type RoundStartedPayload struct {
	Round  int    `json:"round"`
	Dealer int    `json:"dealer"`
	Dice   [2]int `json:"dice"`
}

// HandDealtPayload is sent privately to each seat after the deal.
type HandDealtPayload struct {
	Seat    int           `json:"seat"`
	Tiles   []domain.Tile `json:"tiles"`
	Flowers []domain.Tile `json:"flowers"`
}

// TurnStartedPayload is the public view of a turn: the drawn tile stays
// hidden, stashed flowers and the wall count are open information.
type TurnStartedPayload struct {
	Seat          int           `json:"seat"`
	Drew          bool          `json:"drew"`
	DeadDraw      bool          `json:"dead_draw"`
	Flowers       []domain.Tile `json:"flowers,omitempty"`
	WallRemaining int           `json:"wall_remaining"`
}

// TileDrawnPayload is the private view of a turn for the acting seat.
type TileDrawnPayload struct {
	Seat     int                 `json:"seat"`
	Tile     *domain.Tile        `json:"tile,omitempty"`
	CanTsumo bool                `json:"can_tsumo"`
	Kongs    []domain.KongOption `json:"kongs,omitempty"`
}

type TileDiscardedPayload struct {
	Seat int         `json:"seat"`
	Tile domain.Tile `json:"tile"`
}

// CallsOfferedPayload is sent privately to a seat that may react to the
// pending discard.
type CallsOfferedPayload struct {
	Seat    int               `json:"seat"`
	From    int               `json:"from"`
	Tile    domain.Tile       `json:"tile"`
	Options []domain.CallKind `json:"options"`
}

type CallMadePayload struct {
	Seat int             `json:"seat"`
	Kind domain.CallKind `json:"kind"`
	Tile domain.Tile     `json:"tile"`
	From int             `json:"from"`
}

type RoundEndedPayload struct {
	Round      int                  `json:"round"`
	Outcome    domain.Outcome       `json:"outcome"`
	Settlement domain.Settlement    `json:"settlement"`
	Scores     [domain.NumSeats]int `json:"scores"`
}

type MatchEndedPayload struct {
	Standings []domain.Standing `json:"standings"`
}
