package domain

// BasePoints is the floor every winning hand scores before yaku, flowers
// and draw bonuses.
const BasePoints = 10

// Yaku is one scoring pattern awarded to a winning hand.
type Yaku struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// WinContext carries the table situation the hand is judged under.
type WinContext struct {
	SeatWind  Tile `json:"seat_wind"`
	RoundWind Tile `json:"round_wind"`
	Tsumo     bool `json:"tsumo"`
	Flowers   int  `json:"flowers"`
	Dealer    bool `json:"dealer"`
	// FirstTurn is set when the hand completes before the seat has
	// discarded and before any call has interrupted the opening
	// go-around. It enables the blessing hands.
	FirstTurn bool `json:"first_turn"`
}

// WinResult is the full evaluation of a winning hand.
type WinResult struct {
	Decomp Decomposition `json:"decomp"`
	Yaku   []Yaku        `json:"yaku"`
	Points int           `json:"points"`
}

// handEval is the working view the yaku checks share.
type handEval struct {
	tiles     []Tile
	counts    map[Tile]int
	decomp    *Decomposition
	melds     []Meld
	ctx       WinContext
	concealed bool
}

func (e *handEval) hasTriple(t Tile) bool {
	for _, s := range e.decomp.Sets {
		if s.Kind == SetTriple && s.Tile == t {
			return true
		}
	}
	return false
}

func (e *handEval) tripleCount() int {
	return len(e.decomp.Triples())
}

// numericSuits returns the numeric suits present in the hand.
func (e *handEval) numericSuits() map[Suit]bool {
	suits := make(map[Suit]bool)
	for _, t := range e.tiles {
		if !t.IsHonor() {
			suits[t.Suit] = true
		}
	}
	return suits
}

func (e *handEval) hasHonors() bool {
	for _, t := range e.tiles {
		if t.IsHonor() {
			return true
		}
	}
	return false
}

var windTiles = []Tile{
	{Suit: SuitWind, Rank: WindEast},
	{Suit: SuitWind, Rank: WindSouth},
	{Suit: SuitWind, Rank: WindWest},
	{Suit: SuitWind, Rank: WindNorth},
}

var dragonTiles = []Tile{
	{Suit: SuitDragon, Rank: DragonRed},
	{Suit: SuitDragon, Rank: DragonGreen},
	{Suit: SuitDragon, Rank: DragonWhite},
}

// yakuBattery lists the pattern checks in scoring order. Checks are
// additive: a big-three-dragons hand also collects its three dragon-triple
// awards, matching the traditional Korean count.
var yakuBattery = []func(e *handEval) []Yaku{
	checkMenzenTsumo,
	checkSeatWind,
	checkRoundWind,
	checkDragonTriples,
	checkBigThreeDragons,
	checkSmallThreeDragons,
	checkBigFourWinds,
	checkSmallFourWinds,
	checkAllSimples,
	checkAllRuns,
	checkHalfFlush,
	checkFullFlush,
	checkPureStraight,
	checkFourTriples,
	checkThreeConcealedTriples,
	checkTwoConcealedKongs,
	checkSevenHonorKinds,
	checkNineGates,
	checkBlessings,
}

func checkMenzenTsumo(e *handEval) []Yaku {
	if e.ctx.Tsumo && e.concealed {
		return []Yaku{{Name: "menzen_tsumo", Label: "멘젠쯔모", Points: 1}}
	}
	return nil
}

func checkSeatWind(e *handEval) []Yaku {
	if e.hasTriple(e.ctx.SeatWind) {
		return []Yaku{{Name: "seat_wind", Label: "자풍", Points: 1}}
	}
	return nil
}

func checkRoundWind(e *handEval) []Yaku {
	if e.hasTriple(e.ctx.RoundWind) {
		return []Yaku{{Name: "round_wind", Label: "장풍", Points: 1}}
	}
	return nil
}

func checkDragonTriples(e *handEval) []Yaku {
	var out []Yaku
	for _, d := range dragonTiles {
		if e.hasTriple(d) {
			out = append(out, Yaku{Name: "dragon_triple", Label: "역패", Points: 1})
		}
	}
	return out
}

func checkBigThreeDragons(e *handEval) []Yaku {
	for _, d := range dragonTiles {
		if !e.hasTriple(d) {
			return nil
		}
	}
	return []Yaku{{Name: "big_three_dragons", Label: "대삼원", Points: 8}}
}

func checkSmallThreeDragons(e *handEval) []Yaku {
	triples := 0
	pair := false
	for _, d := range dragonTiles {
		if e.hasTriple(d) {
			triples++
		}
		if e.decomp.Pair == d {
			pair = true
		}
	}
	if triples == 2 && pair {
		return []Yaku{{Name: "small_three_dragons", Label: "소삼원", Points: 6}}
	}
	return nil
}

func checkBigFourWinds(e *handEval) []Yaku {
	for _, w := range windTiles {
		if !e.hasTriple(w) {
			return nil
		}
	}
	return []Yaku{{Name: "big_four_winds", Label: "대사희", Points: 16}}
}

func checkSmallFourWinds(e *handEval) []Yaku {
	triples := 0
	pair := false
	for _, w := range windTiles {
		if e.hasTriple(w) {
			triples++
		}
		if e.decomp.Pair == w {
			pair = true
		}
	}
	if triples == 3 && pair {
		return []Yaku{{Name: "small_four_winds", Label: "소사희", Points: 8}}
	}
	return nil
}

func checkAllSimples(e *handEval) []Yaku {
	for _, t := range e.tiles {
		if !t.IsSimple() {
			return nil
		}
	}
	return []Yaku{{Name: "all_simples", Label: "탕야오", Points: 1}}
}

func checkAllRuns(e *handEval) []Yaku {
	if e.tripleCount() > 0 || len(e.decomp.Runs()) < 4 || e.decomp.Pair.IsHonor() {
		return nil
	}
	return []Yaku{{Name: "all_runs", Label: "핀후", Points: 1}}
}

func checkHalfFlush(e *handEval) []Yaku {
	if len(e.numericSuits()) == 1 && e.hasHonors() {
		return []Yaku{{Name: "half_flush", Label: "혼일색", Points: 2}}
	}
	return nil
}

func checkFullFlush(e *handEval) []Yaku {
	if len(e.numericSuits()) == 1 && !e.hasHonors() {
		return []Yaku{{Name: "full_flush", Label: "청일색", Points: 8}}
	}
	return nil
}

func checkPureStraight(e *handEval) []Yaku {
	bySuit := make(map[Suit]map[int]bool)
	for _, s := range e.decomp.Sets {
		if s.Kind != SetRun {
			continue
		}
		if bySuit[s.Tile.Suit] == nil {
			bySuit[s.Tile.Suit] = make(map[int]bool)
		}
		bySuit[s.Tile.Suit][s.Tile.Rank] = true
	}
	for _, starts := range bySuit {
		if starts[1] && starts[4] && starts[7] {
			return []Yaku{{Name: "pure_straight", Label: "일기통관", Points: 4}}
		}
	}
	return nil
}

func checkFourTriples(e *handEval) []Yaku {
	if e.tripleCount() != 4 {
		return nil
	}
	if e.concealed {
		return []Yaku{{Name: "four_concealed_triples", Label: "사앙꼬", Points: 8}}
	}
	return []Yaku{{Name: "four_triples", Label: "돌돌이", Points: 2}}
}

func checkThreeConcealedTriples(e *handEval) []Yaku {
	if e.tripleCount() == 3 && e.concealed {
		return []Yaku{{Name: "three_concealed_triples", Label: "삼앙꼬", Points: 4}}
	}
	return nil
}

func checkTwoConcealedKongs(e *handEval) []Yaku {
	kongs := 0
	for _, m := range e.melds {
		if m.Kind == MeldClosedKong {
			kongs++
		}
	}
	if kongs >= 2 {
		return []Yaku{{Name: "two_concealed_kongs", Label: "이깡자", Points: 2}}
	}
	return nil
}

// allHonorsAllKinds reports whether the fourteen tiles are honors covering
// all seven honor kinds, the 칠대작 special shape.
func allHonorsAllKinds(tiles []Tile) bool {
	counts := CountTiles(tiles)
	for _, t := range tiles {
		if !t.IsHonor() {
			return false
		}
	}
	for _, t := range windTiles {
		if counts[t] == 0 {
			return false
		}
	}
	for _, t := range dragonTiles {
		if counts[t] == 0 {
			return false
		}
	}
	return true
}

func checkSevenHonorKinds(e *handEval) []Yaku {
	for _, t := range windTiles {
		if e.counts[t] == 0 {
			return nil
		}
	}
	for _, t := range dragonTiles {
		if e.counts[t] == 0 {
			return nil
		}
	}
	return []Yaku{{Name: "seven_honor_kinds", Label: "칠대작", Points: 4}}
}

func checkNineGates(e *handEval) []Yaku {
	if len(e.melds) > 0 {
		return nil
	}
	suits := e.numericSuits()
	if len(suits) != 1 || e.hasHonors() {
		return nil
	}
	var suit Suit
	for s := range suits {
		suit = s
	}
	if suit != SuitMan && suit != SuitPin {
		return nil
	}
	need := func(rank, n int) bool {
		return e.counts[Tile{Suit: suit, Rank: rank}] >= n
	}
	if !need(1, 3) || !need(9, 3) {
		return nil
	}
	for r := 2; r <= 8; r++ {
		if !need(r, 1) {
			return nil
		}
	}
	return []Yaku{{Name: "nine_gates", Label: "구려보등", Points: 24}}
}

func checkBlessings(e *handEval) []Yaku {
	if !e.ctx.FirstTurn {
		return nil
	}
	if !e.ctx.Tsumo {
		return []Yaku{{Name: "blessing_of_man", Label: "인화", Points: 16}}
	}
	if e.ctx.Dealer {
		return []Yaku{{Name: "blessing_of_heaven", Label: "천화", Points: 16}}
	}
	return []Yaku{{Name: "blessing_of_earth", Label: "지화", Points: 16}}
}

// Evaluate judges a hand against the table context. It returns false when
// the tiles do not form a winning shape or the shape carries no yaku. The
// virtual hand must come to exactly fourteen tiles; anything else is
// reported as not winning.
func Evaluate(concealed []Tile, melds []Meld, ctx WinContext) (WinResult, bool) {
	virtual := VirtualHand(concealed, melds)
	if len(virtual) != 14 {
		return WinResult{}, false
	}

	decomp, ok := Decompose(virtual)
	if !ok {
		// All-honor hands holding every honor kind cannot split into
		// four sets and a pair, but still win as 칠대작.
		if len(melds) > 0 || !allHonorsAllKinds(virtual) {
			return WinResult{}, false
		}
		decomp = Decomposition{}
	}

	e := &handEval{
		tiles:     virtual,
		counts:    CountTiles(virtual),
		decomp:    &decomp,
		melds:     melds,
		ctx:       ctx,
		concealed: HandConcealed(melds),
	}

	var awards []Yaku
	for _, check := range yakuBattery {
		awards = append(awards, check(e)...)
	}

	// A shaped hand with no pattern of its own still wins on a concealed
	// tsumo. Menzen tsumo alone does not count as a pattern here.
	others := 0
	for _, y := range awards {
		if y.Name != "menzen_tsumo" {
			others++
		}
	}
	if others == 0 {
		if ctx.Tsumo && e.concealed {
			awards = append(awards, Yaku{Name: "no_yaku_tsumo", Label: "부지부", Points: 5})
		} else {
			return WinResult{}, false
		}
	}

	points := BasePoints + ctx.Flowers
	for _, y := range awards {
		points += y.Points
	}
	if ctx.Tsumo {
		points++
		if e.concealed {
			points++
		}
	}

	return WinResult{Decomp: decomp, Yaku: awards, Points: points}, true
}

// IsWinningHand reports whether the tiles complete a scoring hand in the
// given context.
func IsWinningHand(concealed []Tile, melds []Meld, ctx WinContext) bool {
	_, ok := Evaluate(concealed, melds, ctx)
	return ok
}
