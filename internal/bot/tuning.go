package bot

// DiscardWeights tunes how the smart strategy scores discard candidates.
// Higher weight means the tile is more likely to be thrown.
type DiscardWeights struct {
	// Honor favors throwing winds and dragons that formed no set.
	Honor int
	// Single favors throwing tiles with no partner in hand.
	Single int
	// DeadClass favors throwing tiles whose remaining copies are all
	// visible, so the class can no longer grow into a set.
	DeadClass int
}

// DefaultWeights are the tuned values the smart strategy ships with.
var DefaultWeights = DiscardWeights{
	Honor:     10,
	Single:    5,
	DeadClass: 8,
}
