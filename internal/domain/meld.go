package domain

// MeldKind distinguishes the exposed sets a seat can own.
type MeldKind string

const (
	// MeldPung is a claimed triple (펑).
	MeldPung MeldKind = "pung"
	// MeldOpenKong is a kong claimed from a discard (대명깡).
	MeldOpenKong MeldKind = "open_kong"
	// MeldClosedKong is a kong declared from four held tiles (안깡).
	MeldClosedKong MeldKind = "closed_kong"
	// MeldAddedKong upgrades an own pung with the fourth tile (가깡).
	MeldAddedKong MeldKind = "added_kong"
)

// Meld is an exposed set in front of a seat. From is the seat the claimed
// tile came from, or -1 for self-declared kongs.
type Meld struct {
	Kind MeldKind `json:"kind"`
	Tile Tile     `json:"tile"`
	From int      `json:"from"`
}

// IsKong reports whether the meld holds four tiles.
func (m Meld) IsKong() bool {
	return m.Kind != MeldPung
}

// HandConcealed reports whether a hand with these melds still counts as
// concealed. Closed kongs do not break concealment.
func HandConcealed(melds []Meld) bool {
	for _, m := range melds {
		if m.Kind != MeldClosedKong {
			return false
		}
	}
	return true
}

// meldSetTiles returns the three class tiles a meld contributes to the
// virtual hand. A kong still stands in for one triple.
func meldSetTiles(m Meld) []Tile {
	return []Tile{m.Tile, m.Tile, m.Tile}
}
