package domain

import "math/rand"

const (
	// NumSeats is the fixed table size.
	NumSeats = 4
	// MaxTurns caps a round as a stuck-game guard. Hitting it forces a
	// drawn round.
	MaxTurns = 200
)

// RoundPhase is the lifecycle stage of a round.
type RoundPhase string

const (
	// RoundDiscarding means the current seat must discard, and may first
	// declare tsumo or a self-kong.
	RoundDiscarding RoundPhase = "discarding"
	// RoundCalling means a discard is on the table and other seats may
	// claim it.
	RoundCalling RoundPhase = "calling"
	// RoundFinished means the round has an outcome.
	RoundFinished RoundPhase = "finished"
)

// CallKind is a reaction to another seat's discard.
type CallKind string

const (
	CallPass CallKind = "pass"
	CallPung CallKind = "pung"
	CallKong CallKind = "kong"
	CallRon  CallKind = "ron"
)

// SeatState holds everything one seat owns during a round.
type SeatState struct {
	Tiles    []Tile `json:"tiles"`
	Melds    []Meld `json:"melds"`
	Flowers  []Tile `json:"flowers"`
	Discards []Tile `json:"discards"`
}

// KongOption is a self-kong the current seat may declare.
type KongOption struct {
	Kind MeldKind `json:"kind"`
	Tile Tile     `json:"tile"`
}

// PendingDiscard is a discard awaiting call decisions.
type PendingDiscard struct {
	Seat   int                `json:"seat"`
	Tile   Tile               `json:"tile"`
	Offers map[int][]CallKind `json:"offers"`
}

// ExecutedCall records the call that won arbitration. From is the seat
// whose discard was claimed, or -1 for a self-declared kong.
type ExecutedCall struct {
	Seat int      `json:"seat"`
	Kind CallKind `json:"kind"`
	Tile Tile     `json:"tile"`
	From int      `json:"from"`
}

// Outcome is the terminal state of a round. Winner is -1 for a drawn
// round; Loser is the discarder on a ron and -1 otherwise.
type Outcome struct {
	Winner int        `json:"winner"`
	Loser  int        `json:"loser"`
	Tsumo  bool       `json:"tsumo"`
	Result *WinResult `json:"result,omitempty"`
	Reason string     `json:"reason"` // "win", "wall", "turns"
}

// TurnStart describes what happened when a seat came to act: the tile it
// drew (nil when it already owed a discard), any flowers stashed on the
// way, and the self-actions now open to it.
type TurnStart struct {
	Seat     int          `json:"seat"`
	Drawn    *Tile        `json:"drawn,omitempty"`
	DeadDraw bool         `json:"dead_draw"`
	Flowers  []Tile       `json:"flowers,omitempty"`
	CanTsumo bool         `json:"can_tsumo"`
	Kongs    []KongOption `json:"kongs,omitempty"`
}

// DiscardResult reports what a discard led to. Exactly one of Offers,
// Turn or Outcome is meaningful: offers put the round into the calling
// phase, otherwise play advances to the next seat or the round ends.
type DiscardResult struct {
	Offers  map[int][]CallKind `json:"offers,omitempty"`
	Turn    *TurnStart         `json:"turn,omitempty"`
	Outcome *Outcome           `json:"outcome,omitempty"`
}

// ResolveResult reports how a pending discard was settled.
type ResolveResult struct {
	Call    *ExecutedCall `json:"call,omitempty"`
	Turn    *TurnStart    `json:"turn,omitempty"`
	Outcome *Outcome      `json:"outcome,omitempty"`
}

// Round is the authoritative state of one round. All methods run on the
// match goroutine; the struct is not safe for concurrent use.
type Round struct {
	Wall    *Wall                `json:"wall"`
	Seats   [NumSeats]*SeatState `json:"seats"`
	Dealer  int                  `json:"dealer"`
	Current int                  `json:"current"`
	Phase   RoundPhase           `json:"phase"`
	Turns   int                  `json:"turns"`
	Dice    [2]int               `json:"dice"`

	Pending   *PendingDiscard `json:"pending,omitempty"`
	Outcome   *Outcome        `json:"outcome,omitempty"`
	CanTsumo  bool            `json:"can_tsumo"`
	LastDrawn *Tile           `json:"last_drawn,omitempty"`
}

// NewRound shuffles a wall, breaks it on a fresh dice roll and deals the
// opening hands. The returned TurnStart is the dealer's opening action:
// fourteen tiles, no draw, with the blessing-of-heaven tsumo check done.
func NewRound(rng *rand.Rand, dealer int) (*Round, TurnStart, error) {
	r := &Round{
		Wall:    NewWall(rng),
		Dealer:  dealer,
		Current: dealer,
		Phase:   RoundDiscarding,
		Dice:    [2]int{rng.Intn(6) + 1, rng.Intn(6) + 1},
		Turns:   1,
	}
	for i := range r.Seats {
		r.Seats[i] = &SeatState{}
	}
	r.Wall.Break(dealer, r.Dice[0]+r.Dice[1])

	if err := r.deal(); err != nil {
		return nil, TurnStart{}, err
	}

	seat := r.Seats[dealer]
	r.CanTsumo = IsWinningHand(seat.Tiles, seat.Melds, r.winContext(dealer, true))
	return r, TurnStart{
		Seat:     dealer,
		CanTsumo: r.CanTsumo,
		Kongs:    r.selfKongOptions(dealer),
	}, nil
}

// deal hands out 4-4-4-1 to every seat clockwise from the dealer, then one
// extra tile to the dealer. Flowers stash immediately and are replaced
// from the live end until a playing tile arrives.
func (r *Round) deal() error {
	give := func(seat, n int) error {
		for i := 0; i < n; i++ {
			t, ok := r.drawLiveSkippingFlowers(seat)
			if !ok {
				return ErrRoundFinished
			}
			r.Seats[seat].Tiles = append(r.Seats[seat].Tiles, t)
		}
		return nil
	}

	for block := 0; block < 3; block++ {
		for i := 0; i < NumSeats; i++ {
			if err := give((r.Dealer+i)%NumSeats, 4); err != nil {
				return err
			}
		}
	}
	for i := 0; i < NumSeats; i++ {
		if err := give((r.Dealer+i)%NumSeats, 1); err != nil {
			return err
		}
	}
	if err := give(r.Dealer, 1); err != nil {
		return err
	}

	for i := range r.Seats {
		SortTiles(r.Seats[i].Tiles)
	}
	return nil
}

// drawLiveSkippingFlowers draws from the live end during the deal,
// stashing flowers to the seat and redrawing until a playing tile comes up.
func (r *Round) drawLiveSkippingFlowers(seat int) (Tile, bool) {
	for {
		t, ok := r.Wall.DrawLive()
		if !ok {
			return Tile{}, false
		}
		if !t.IsFlower() {
			return t, true
		}
		r.Seats[seat].Flowers = append(r.Seats[seat].Flowers, t)
	}
}

// drawDeadSkippingFlowers draws a replacement from the dead end with the
// same flower handling.
func (r *Round) drawDeadSkippingFlowers(seat int, stashed *[]Tile) (Tile, bool) {
	for {
		t, ok := r.Wall.DrawDead()
		if !ok {
			return Tile{}, false
		}
		if !t.IsFlower() {
			return t, true
		}
		r.Seats[seat].Flowers = append(r.Seats[seat].Flowers, t)
		if stashed != nil {
			*stashed = append(*stashed, t)
		}
	}
}

func (r *Round) seatWindRank(seat int) int {
	return (seat-r.Dealer+NumSeats)%NumSeats + 1
}

// isFirstTurn reports whether the seat is still on its untouched opening:
// it has not discarded and no call has exposed a meld anywhere.
func (r *Round) isFirstTurn(seat int) bool {
	if len(r.Seats[seat].Discards) > 0 {
		return false
	}
	for _, s := range r.Seats {
		if len(s.Melds) > 0 {
			return false
		}
	}
	return true
}

func (r *Round) winContext(seat int, tsumo bool) WinContext {
	return WinContext{
		SeatWind:  Tile{Suit: SuitWind, Rank: r.seatWindRank(seat)},
		RoundWind: Tile{Suit: SuitWind, Rank: WindEast},
		Tsumo:     tsumo,
		Flowers:   len(r.Seats[seat].Flowers),
		Dealer:    seat == r.Dealer,
		FirstTurn: r.isFirstTurn(seat),
	}
}

// selfKongOptions lists the kongs the seat could declare right now.
func (r *Round) selfKongOptions(seat int) []KongOption {
	s := r.Seats[seat]
	counts := CountTiles(s.Tiles)

	var out []KongOption
	for t, n := range counts {
		if n == 4 {
			out = append(out, KongOption{Kind: MeldClosedKong, Tile: t})
		}
	}
	for _, m := range s.Melds {
		if m.Kind == MeldPung && counts[m.Tile] > 0 {
			out = append(out, KongOption{Kind: MeldAddedKong, Tile: m.Tile})
		}
	}
	SortKongOptions(out)
	return out
}

// SortKongOptions orders kong options deterministically for stable
// presentation and bot choice.
func SortKongOptions(opts []KongOption) {
	if len(opts) < 2 {
		return
	}
	for i := 1; i < len(opts); i++ {
		for j := i; j > 0; j-- {
			a, b := opts[j-1], opts[j]
			if tilePower(a.Tile) < tilePower(b.Tile) ||
				(tilePower(a.Tile) == tilePower(b.Tile) && a.Kind <= b.Kind) {
				break
			}
			opts[j-1], opts[j] = b, a
		}
	}
}

func (r *Round) finish(o Outcome) *Outcome {
	r.Outcome = &o
	r.Phase = RoundFinished
	r.Pending = nil
	r.CanTsumo = false
	r.LastDrawn = nil
	return r.Outcome
}

// beginTurn advances play to the given seat with a live-wall draw. A
// flower goes to the stash and its replacement comes from the dead end.
func (r *Round) beginTurn(seat int) (*TurnStart, *Outcome) {
	r.Turns++
	if r.Turns > MaxTurns {
		return nil, r.finish(Outcome{Winner: -1, Loser: -1, Reason: "turns"})
	}

	var flowers []Tile
	t, ok := r.Wall.DrawLive()
	if !ok {
		return nil, r.finish(Outcome{Winner: -1, Loser: -1, Reason: "wall"})
	}
	if t.IsFlower() {
		r.Seats[seat].Flowers = append(r.Seats[seat].Flowers, t)
		flowers = append(flowers, t)
		t, ok = r.drawDeadSkippingFlowers(seat, &flowers)
		if !ok {
			return nil, r.finish(Outcome{Winner: -1, Loser: -1, Reason: "wall"})
		}
	}

	s := r.Seats[seat]
	s.Tiles = append(s.Tiles, t)
	SortTiles(s.Tiles)

	r.Current = seat
	r.Phase = RoundDiscarding
	r.LastDrawn = &t
	r.CanTsumo = IsWinningHand(s.Tiles, s.Melds, r.winContext(seat, true))

	return &TurnStart{
		Seat:     seat,
		Drawn:    &t,
		Flowers:  flowers,
		CanTsumo: r.CanTsumo,
		Kongs:    r.selfKongOptions(seat),
	}, nil
}

// Discard plays a tile from the current seat's hand. When other seats can
// react, the round moves to the calling phase and the offers come back;
// otherwise play advances clockwise immediately.
func (r *Round) Discard(seat int, tile Tile) (DiscardResult, error) {
	if r.Phase == RoundFinished {
		return DiscardResult{}, ErrRoundFinished
	}
	if r.Phase != RoundDiscarding {
		return DiscardResult{}, ErrWrongPhase
	}
	if seat != r.Current {
		return DiscardResult{}, ErrNotYourTurn
	}

	s := r.Seats[seat]
	before := len(s.Tiles)
	s.Tiles = RemoveTiles(s.Tiles, []Tile{tile})
	if len(s.Tiles) == before {
		return DiscardResult{}, ErrTileNotInHand
	}
	s.Discards = append(s.Discards, tile)
	r.CanTsumo = false
	r.LastDrawn = nil

	offers := r.callOffers(seat, tile)
	if len(offers) > 0 {
		r.Phase = RoundCalling
		r.Pending = &PendingDiscard{Seat: seat, Tile: tile, Offers: offers}
		return DiscardResult{Offers: offers}, nil
	}

	turn, outcome := r.beginTurn((seat + 1) % NumSeats)
	return DiscardResult{Turn: turn, Outcome: outcome}, nil
}

// callOffers collects the legal reactions to a discard, seat by seat.
func (r *Round) callOffers(discarder int, tile Tile) map[int][]CallKind {
	offers := make(map[int][]CallKind)
	for seat := 0; seat < NumSeats; seat++ {
		if seat == discarder {
			continue
		}
		s := r.Seats[seat]
		var opts []CallKind

		if len(s.Tiles)%3 == 1 {
			hand := append(append([]Tile{}, s.Tiles...), tile)
			if IsWinningHand(hand, s.Melds, r.winContext(seat, false)) {
				opts = append(opts, CallRon)
			}
		}

		n := 0
		for _, t := range s.Tiles {
			if t == tile {
				n++
			}
		}
		if n >= 3 {
			opts = append(opts, CallKong)
		}
		if n >= 2 {
			opts = append(opts, CallPung)
		}

		if len(opts) > 0 {
			offers[seat] = opts
		}
	}
	return offers
}

// ResolveCalls settles a pending discard from the collected decisions.
// Missing decisions count as passes. A ron ends the round at once; a kong
// outranks a pung; equal calls go to the lowest seat index. With no takers
// play advances clockwise from the discarder.
func (r *Round) ResolveCalls(decisions map[int]CallKind) (ResolveResult, error) {
	if r.Phase == RoundFinished {
		return ResolveResult{}, ErrRoundFinished
	}
	if r.Phase != RoundCalling || r.Pending == nil {
		return ResolveResult{}, ErrWrongPhase
	}

	pending := r.Pending
	for seat, kind := range decisions {
		if kind == CallPass {
			continue
		}
		if !offerContains(pending.Offers[seat], kind) {
			return ResolveResult{}, ErrNoSuchCall
		}
	}

	if seat, ok := firstCaller(decisions, CallRon); ok {
		return r.executeRon(seat)
	}
	if seat, ok := firstCaller(decisions, CallKong); ok {
		return r.executeMeldCall(seat, CallKong)
	}
	if seat, ok := firstCaller(decisions, CallPung); ok {
		return r.executeMeldCall(seat, CallPung)
	}

	r.Pending = nil
	turn, outcome := r.beginTurn((pending.Seat + 1) % NumSeats)
	return ResolveResult{Turn: turn, Outcome: outcome}, nil
}

func offerContains(opts []CallKind, kind CallKind) bool {
	for _, o := range opts {
		if o == kind {
			return true
		}
	}
	return false
}

func firstCaller(decisions map[int]CallKind, kind CallKind) (int, bool) {
	for seat := 0; seat < NumSeats; seat++ {
		if decisions[seat] == kind {
			return seat, true
		}
	}
	return 0, false
}

func (r *Round) executeRon(seat int) (ResolveResult, error) {
	pending := r.Pending
	s := r.Seats[seat]
	hand := append(append([]Tile{}, s.Tiles...), pending.Tile)
	result, ok := Evaluate(hand, s.Melds, r.winContext(seat, false))
	if !ok {
		return ResolveResult{}, ErrNotWinningHand
	}

	call := &ExecutedCall{Seat: seat, Kind: CallRon, Tile: pending.Tile, From: pending.Seat}
	outcome := r.finish(Outcome{
		Winner: seat,
		Loser:  pending.Seat,
		Result: &result,
		Reason: "win",
	})
	return ResolveResult{Call: call, Outcome: outcome}, nil
}

// executeMeldCall claims the pending tile into a pung or open kong. The
// tile leaves the discarder's pile, the caller exposes the meld and takes
// the turn. A kong draws its replacement from the dead end first.
func (r *Round) executeMeldCall(seat int, kind CallKind) (ResolveResult, error) {
	pending := r.Pending
	discarder := r.Seats[pending.Seat]
	discarder.Discards = discarder.Discards[:len(discarder.Discards)-1]

	s := r.Seats[seat]
	meld := Meld{Kind: MeldPung, Tile: pending.Tile, From: pending.Seat}
	remove := 2
	if kind == CallKong {
		meld.Kind = MeldOpenKong
		remove = 3
	}
	removed := make([]Tile, remove)
	for i := range removed {
		removed[i] = pending.Tile
	}
	s.Tiles = RemoveTiles(s.Tiles, removed)
	s.Melds = append(s.Melds, meld)

	r.Pending = nil
	r.Current = seat
	r.Phase = RoundDiscarding

	call := &ExecutedCall{Seat: seat, Kind: kind, Tile: pending.Tile, From: pending.Seat}

	if kind == CallKong {
		turn, outcome := r.kongReplacement(seat)
		return ResolveResult{Call: call, Turn: turn, Outcome: outcome}, nil
	}

	return ResolveResult{
		Call: call,
		Turn: &TurnStart{Seat: seat, Kongs: r.selfKongOptions(seat)},
	}, nil
}

// kongReplacement draws the dead-wall tile owed after any kong.
func (r *Round) kongReplacement(seat int) (*TurnStart, *Outcome) {
	var flowers []Tile
	t, ok := r.drawDeadSkippingFlowers(seat, &flowers)
	if !ok {
		return nil, r.finish(Outcome{Winner: -1, Loser: -1, Reason: "wall"})
	}

	s := r.Seats[seat]
	s.Tiles = append(s.Tiles, t)
	SortTiles(s.Tiles)

	r.LastDrawn = &t
	r.CanTsumo = IsWinningHand(s.Tiles, s.Melds, r.winContext(seat, true))

	return &TurnStart{
		Seat:     seat,
		Drawn:    &t,
		DeadDraw: true,
		Flowers:  flowers,
		CanTsumo: r.CanTsumo,
		Kongs:    r.selfKongOptions(seat),
	}, nil
}

// DeclareTsumo ends the round on a self-drawn win by the current seat.
func (r *Round) DeclareTsumo(seat int) (*Outcome, error) {
	if r.Phase == RoundFinished {
		return nil, ErrRoundFinished
	}
	if r.Phase != RoundDiscarding {
		return nil, ErrWrongPhase
	}
	if seat != r.Current {
		return nil, ErrNotYourTurn
	}

	s := r.Seats[seat]
	result, ok := Evaluate(s.Tiles, s.Melds, r.winContext(seat, true))
	if !ok {
		return nil, ErrNotWinningHand
	}

	return r.finish(Outcome{
		Winner: seat,
		Loser:  -1,
		Tsumo:  true,
		Result: &result,
		Reason: "win",
	}), nil
}

// DeclareKong exposes a closed or added kong for the current seat and
// draws the replacement tile.
func (r *Round) DeclareKong(seat int, opt KongOption) (ResolveResult, error) {
	if r.Phase == RoundFinished {
		return ResolveResult{}, ErrRoundFinished
	}
	if r.Phase != RoundDiscarding {
		return ResolveResult{}, ErrWrongPhase
	}
	if seat != r.Current {
		return ResolveResult{}, ErrNotYourTurn
	}

	legal := false
	for _, o := range r.selfKongOptions(seat) {
		if o == opt {
			legal = true
			break
		}
	}
	if !legal {
		return ResolveResult{}, ErrNoSuchKong
	}

	s := r.Seats[seat]
	switch opt.Kind {
	case MeldClosedKong:
		s.Tiles = RemoveTiles(s.Tiles, []Tile{opt.Tile, opt.Tile, opt.Tile, opt.Tile})
		s.Melds = append(s.Melds, Meld{Kind: MeldClosedKong, Tile: opt.Tile, From: -1})
	case MeldAddedKong:
		s.Tiles = RemoveTiles(s.Tiles, []Tile{opt.Tile})
		for i := range s.Melds {
			if s.Melds[i].Kind == MeldPung && s.Melds[i].Tile == opt.Tile {
				s.Melds[i].Kind = MeldAddedKong
				break
			}
		}
	default:
		return ResolveResult{}, ErrNoSuchKong
	}

	call := &ExecutedCall{Seat: seat, Kind: CallKong, Tile: opt.Tile, From: -1}
	turn, outcome := r.kongReplacement(seat)
	return ResolveResult{Call: call, Turn: turn, Outcome: outcome}, nil
}

// SelfKongs lists the kongs the seat could declare right now.
func (r *Round) SelfKongs(seat int) []KongOption {
	if seat < 0 || seat >= NumSeats {
		return nil
	}
	return r.selfKongOptions(seat)
}

// Finished reports whether the round has an outcome.
func (r *Round) Finished() bool {
	return r.Phase == RoundFinished
}
