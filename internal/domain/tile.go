package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Suit identifies a tile family in the Korean mahjong set.
type Suit string

const (
	// SuitMan is the character suit (만), ranks 1-9.
	SuitMan Suit = "man"
	// SuitPin is the circle suit (통), ranks 1-9.
	SuitPin Suit = "pin"
	// SuitSak is the bamboo suit (삭). Only rank 1 exists in the Korean set
	// and it is used exclusively as the flower tile.
	SuitSak Suit = "sak"
	// SuitWind covers the four wind tiles (동 남 서 북), ranks 1-4.
	SuitWind Suit = "wind"
	// SuitDragon covers the three dragon tiles (중 발 백), ranks 1-3.
	SuitDragon Suit = "dragon"
)

// Wind ranks within SuitWind.
const (
	WindEast  = 1
	WindSouth = 2
	WindWest  = 3
	WindNorth = 4
)

// Dragon ranks within SuitDragon.
const (
	DragonRed   = 1 // 중
	DragonGreen = 2 // 발
	DragonWhite = 3 // 백
)

// Tile is a single mahjong tile identified by class. The four physical
// copies of a class are indistinguishable in domain terms.
type Tile struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

var windLabels = [...]string{"동", "남", "서", "북"}
var dragonLabels = [...]string{"중", "발", "백"}

// Label returns the Korean display name of the tile.
func (t Tile) Label() string {
	switch t.Suit {
	case SuitMan:
		return fmt.Sprintf("%d만", t.Rank)
	case SuitPin:
		return fmt.Sprintf("%d통", t.Rank)
	case SuitSak:
		return fmt.Sprintf("%d삭", t.Rank)
	case SuitWind:
		if t.Rank >= 1 && t.Rank <= 4 {
			return windLabels[t.Rank-1]
		}
	case SuitDragon:
		if t.Rank >= 1 && t.Rank <= 3 {
			return dragonLabels[t.Rank-1]
		}
	}
	return fmt.Sprintf("?%s-%d", t.Suit, t.Rank)
}

// String returns the wire form of the tile, e.g. "man-3" or "wind-1".
func (t Tile) String() string {
	return string(t.Suit) + "-" + strconv.Itoa(t.Rank)
}

// ParseTile converts the wire form back into a tile. It rejects anything
// outside the catalogue so malformed client input never enters the engine.
func ParseTile(s string) (Tile, error) {
	idx := strings.LastIndexByte(s, '-')
	if idx <= 0 || idx == len(s)-1 {
		return Tile{}, fmt.Errorf("%w: %q", ErrMalformedTile, s)
	}
	rank, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return Tile{}, fmt.Errorf("%w: %q", ErrMalformedTile, s)
	}
	t := Tile{Suit: Suit(s[:idx]), Rank: rank}
	if !t.Valid() {
		return Tile{}, fmt.Errorf("%w: %q", ErrMalformedTile, s)
	}
	return t, nil
}

// Valid reports whether the tile exists in the 104-tile catalogue.
func (t Tile) Valid() bool {
	switch t.Suit {
	case SuitMan, SuitPin:
		return t.Rank >= 1 && t.Rank <= 9
	case SuitSak:
		return t.Rank == 1
	case SuitWind:
		return t.Rank >= 1 && t.Rank <= 4
	case SuitDragon:
		return t.Rank >= 1 && t.Rank <= 3
	}
	return false
}

// IsFlower reports whether the tile is a bonus tile. In the Korean set all
// bamboo tiles are flowers.
func (t Tile) IsFlower() bool {
	return t.Suit == SuitSak
}

// IsHonor reports whether the tile is a wind or dragon.
func (t Tile) IsHonor() bool {
	return t.Suit == SuitWind || t.Suit == SuitDragon
}

// IsTerminal reports whether the tile is a 1 or 9 of a numeric suit.
func (t Tile) IsTerminal() bool {
	switch t.Suit {
	case SuitMan, SuitPin, SuitSak:
		return t.Rank == 1 || t.Rank == 9
	}
	return false
}

// IsSimple reports whether the tile counts for the all-simples hand.
func (t Tile) IsSimple() bool {
	return !t.IsHonor() && !t.IsTerminal()
}

// tilePower orders tiles for hand display: characters, circles, winds,
// dragons, flowers last.
func tilePower(t Tile) int {
	switch t.Suit {
	case SuitMan:
		return 100 + t.Rank
	case SuitPin:
		return 200 + t.Rank
	case SuitWind:
		return 300 + t.Rank
	case SuitDragon:
		return 400 + t.Rank
	case SuitSak:
		return 900 + t.Rank
	}
	return 1000
}

// SortTiles orders tiles in-place by the canonical display order.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		return tilePower(tiles[i]) < tilePower(tiles[j])
	})
}

// NewTileSet returns the ordered 104-tile catalogue: four copies each of
// characters 1-9, circles 1-9, the flower, the winds and the dragons.
func NewTileSet() []Tile {
	set := make([]Tile, 0, WallTileCount)
	add := func(t Tile) {
		for i := 0; i < 4; i++ {
			set = append(set, t)
		}
	}
	for r := 1; r <= 9; r++ {
		add(Tile{Suit: SuitMan, Rank: r})
	}
	for r := 1; r <= 9; r++ {
		add(Tile{Suit: SuitPin, Rank: r})
	}
	add(Tile{Suit: SuitSak, Rank: 1})
	for r := WindEast; r <= WindNorth; r++ {
		add(Tile{Suit: SuitWind, Rank: r})
	}
	for r := DragonRed; r <= DragonWhite; r++ {
		add(Tile{Suit: SuitDragon, Rank: r})
	}
	return set
}

// RemoveTiles removes the given tiles from a hand, one occurrence per
// requested tile, and returns the updated hand.
func RemoveTiles(hand []Tile, toRemove []Tile) []Tile {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[Tile]int, len(toRemove))
	for _, t := range toRemove {
		removeCounts[t]++
	}

	updated := make([]Tile, 0, len(hand))
	for _, t := range hand {
		if count, ok := removeCounts[t]; ok && count > 0 {
			removeCounts[t] = count - 1
			continue
		}
		updated = append(updated, t)
	}

	return updated
}

// CountTiles builds a class count map for the given tiles.
func CountTiles(tiles []Tile) map[Tile]int {
	counts := make(map[Tile]int, len(tiles))
	for _, t := range tiles {
		counts[t]++
	}
	return counts
}
