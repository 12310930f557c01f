package domain

import "sort"

// SetKind is the shape of one decomposed set.
type SetKind int

const (
	SetTriple SetKind = iota
	SetRun
)

// Set is one three-tile group of a winning decomposition. For runs, Tile is
// the lowest tile of the sequence.
type Set struct {
	Kind SetKind `json:"kind"`
	Tile Tile    `json:"tile"`
}

// Decomposition is a winning split of fourteen tiles into a pair and four
// sets.
type Decomposition struct {
	Pair Tile  `json:"pair"`
	Sets []Set `json:"sets"`
}

// Triples returns the set tiles decomposed as triples.
func (d *Decomposition) Triples() []Tile {
	var out []Tile
	for _, s := range d.Sets {
		if s.Kind == SetTriple {
			out = append(out, s.Tile)
		}
	}
	return out
}

// Runs returns the starting tiles of the decomposed runs.
func (d *Decomposition) Runs() []Tile {
	var out []Tile
	for _, s := range d.Sets {
		if s.Kind == SetRun {
			out = append(out, s.Tile)
		}
	}
	return out
}

// runSuit reports whether the suit forms sequences. Honors never do, and
// the bamboo suit only has rank 1 so no run can complete in it either.
func runSuit(s Suit) bool {
	return s == SuitMan || s == SuitPin || s == SuitSak
}

// Decompose splits fourteen tiles into a pair plus four sets. Every class
// with two or more copies is tried as the pair; the remainder is consumed
// smallest class first, preferring a triple over a run. The first complete
// split wins, so the result is deterministic for a given multiset.
func Decompose(tiles []Tile) (Decomposition, bool) {
	if len(tiles) != 14 {
		return Decomposition{}, false
	}

	counts := CountTiles(tiles)
	classes := make([]Tile, 0, len(counts))
	for t := range counts {
		classes = append(classes, t)
	}
	sort.Slice(classes, func(i, j int) bool {
		return tilePower(classes[i]) < tilePower(classes[j])
	})

	for _, pair := range classes {
		if counts[pair] < 2 {
			continue
		}
		counts[pair] -= 2
		if sets, ok := extractSets(classes, counts, 4); ok {
			counts[pair] += 2
			return Decomposition{Pair: pair, Sets: sets}, true
		}
		counts[pair] += 2
	}

	return Decomposition{}, false
}

func extractSets(classes []Tile, counts map[Tile]int, need int) ([]Set, bool) {
	if need == 0 {
		return nil, true
	}

	// Work from the smallest class that still has tiles.
	var first Tile
	found := false
	for _, t := range classes {
		if counts[t] > 0 {
			first = t
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	if counts[first] >= 3 {
		counts[first] -= 3
		if rest, ok := extractSets(classes, counts, need-1); ok {
			counts[first] += 3
			return append([]Set{{Kind: SetTriple, Tile: first}}, rest...), true
		}
		counts[first] += 3
	}

	if runSuit(first.Suit) && first.Rank <= 7 {
		second := Tile{Suit: first.Suit, Rank: first.Rank + 1}
		third := Tile{Suit: first.Suit, Rank: first.Rank + 2}
		if counts[second] > 0 && counts[third] > 0 {
			counts[first]--
			counts[second]--
			counts[third]--
			if rest, ok := extractSets(classes, counts, need-1); ok {
				counts[first]++
				counts[second]++
				counts[third]++
				return append([]Set{{Kind: SetRun, Tile: first}}, rest...), true
			}
			counts[first]++
			counts[second]++
			counts[third]++
		}
	}

	return nil, false
}

// VirtualHand joins the concealed tiles with three class tiles per meld,
// which is the fourteen-tile multiset the shape search runs over. Kongs
// contribute three tiles like any other set.
func VirtualHand(concealed []Tile, melds []Meld) []Tile {
	out := make([]Tile, 0, len(concealed)+3*len(melds))
	out = append(out, concealed...)
	for _, m := range melds {
		out = append(out, meldSetTiles(m)...)
	}
	return out
}
