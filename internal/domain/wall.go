package domain

import "math/rand"

// Wall geometry. Four sides of thirteen stacks, two tiles per stack.
const (
	WallSides     = 4
	WallStacks    = 13
	WallLayers    = 2
	WallTileCount = WallSides * WallStacks * WallLayers
)

// sideDirection gives the stack traversal direction per side in screen
// order (top, right, bottom, left). Top and right build left-to-right,
// bottom and left build right-to-left.
var sideDirection = [WallSides]int{1, 1, -1, -1}

func sideStart(side int) int {
	if sideDirection[side] > 0 {
		return 0
	}
	return WallStacks - 1
}

func sideEnd(side int) int {
	if sideDirection[side] > 0 {
		return WallStacks - 1
	}
	return 0
}

// WallCursor points at one tile position while walking the wall.
type WallCursor struct {
	Side  int `json:"side"`
	Stack int `json:"stack"`
	Layer int `json:"layer"`
}

func (c WallCursor) index() int {
	return (c.Side*WallStacks+c.Stack)*WallLayers + c.Layer
}

// Wall is the shuffled 104-tile wall with the two draw cursors. The live
// cursor feeds deals and normal draws and runs clockwise from the break;
// the dead cursor feeds flower and kong replacements and runs
// counter-clockwise from just behind it. Both skip positions the other has
// already claimed, so the wall exhausts exactly once.
type Wall struct {
	Tiles [WallTileCount]Tile `json:"tiles"`
	Taken [WallTileCount]bool `json:"taken"`
	Live  WallCursor          `json:"live"`
	Dead  WallCursor          `json:"dead"`
	Drawn int                 `json:"drawn"`
}

// NewWall shuffles the catalogue into wall positions. Cursors are placed by
// Break once the dice are rolled.
func NewWall(rng *rand.Rand) *Wall {
	set := NewTileSet()
	rng.Shuffle(len(set), func(i, j int) { set[i], set[j] = set[j], set[i] })

	w := &Wall{}
	copy(w.Tiles[:], set)
	return w
}

// Break places both cursors from the dealer's side and the dice sum. The
// breaking side is counted clockwise from the dealer, the breaking stack is
// counted into that side's build direction.
func (w *Wall) Break(dealerSide, diceSum int) {
	side := (dealerSide + diceSum - 1) % WallSides
	offset := (diceSum - 1) % WallStacks
	dir := sideDirection[side]

	stack := sideStart(side) + dir*offset
	if dir > 0 && stack > sideEnd(side) {
		stack = sideEnd(side)
	}
	if dir < 0 && stack < sideEnd(side) {
		stack = sideEnd(side)
	}

	w.Live = WallCursor{Side: side, Stack: stack, Layer: WallLayers - 1}

	// The dead end starts one stack behind the break and walks the other way.
	dead := w.Live
	dead.Stack -= dir
	if dead.Stack < 0 || dead.Stack >= WallStacks {
		dead.Side = (dead.Side + WallSides - 1) % WallSides
		dead.Stack = sideEnd(dead.Side)
	}
	w.Dead = dead
}

// advance steps the live cursor clockwise: top tile then bottom tile of a
// stack, next stack along the side, next side at the wrap.
func advance(c WallCursor) WallCursor {
	if c.Layer > 0 {
		c.Layer--
		return c
	}
	c.Layer = WallLayers - 1
	c.Stack += sideDirection[c.Side]
	if c.Stack < 0 || c.Stack >= WallStacks {
		c.Side = (c.Side + 1) % WallSides
		c.Stack = sideStart(c.Side)
	}
	return c
}

// retreat steps the dead cursor counter-clockwise: top tile then bottom
// tile of a stack, previous stack along the side, previous side at the
// wrap, entering that side at its far end.
func retreat(c WallCursor) WallCursor {
	if c.Layer > 0 {
		c.Layer--
		return c
	}
	c.Layer = WallLayers - 1
	c.Stack -= sideDirection[c.Side]
	if c.Stack < 0 || c.Stack >= WallStacks {
		c.Side = (c.Side + WallSides - 1) % WallSides
		c.Stack = sideEnd(c.Side)
	}
	return c
}

// DrawLive takes the next tile from the live end. The second return is
// false when no unclaimed position remains, which ends the round in a draw.
func (w *Wall) DrawLive() (Tile, bool) {
	return w.draw(&w.Live, advance)
}

// DrawDead takes the next replacement tile from the dead end.
func (w *Wall) DrawDead() (Tile, bool) {
	return w.draw(&w.Dead, retreat)
}

func (w *Wall) draw(cursor *WallCursor, step func(WallCursor) WallCursor) (Tile, bool) {
	for i := 0; i < WallTileCount; i++ {
		idx := cursor.index()
		if !w.Taken[idx] {
			w.Taken[idx] = true
			w.Drawn++
			t := w.Tiles[idx]
			*cursor = step(*cursor)
			return t, true
		}
		*cursor = step(*cursor)
	}
	return Tile{}, false
}

// Remaining reports how many tiles are still in the wall.
func (w *Wall) Remaining() int {
	return WallTileCount - w.Drawn
}
