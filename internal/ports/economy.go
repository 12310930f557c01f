package ports

import "context"

// WalletUpdate represents a single chip-balance change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing the chip currency.
type EconomyPort interface {
	// GetBalance retrieves the current chip balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes.
	// This is used after a match to settle the final standings.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
