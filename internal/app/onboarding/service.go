package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"kmahjong/internal/ports"
)

const (
	defaultStartingChips = 5000
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when the starting stack was already granted.
	WelcomeBonusGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	bonuses  ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/bonuses must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		bonuses:  bonuses,
		rng:      rng,
	}
}

// OnboardNewUser initializes profile and wallet for a newly created account.
// It assigns a generated display name and grants the starting chip stack.
// Profile updates are best-effort; a failed chip grant is an error.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	metadata := map[string]interface{}{
		"reason": "starting_chips",
	}
	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, defaultStartingChips, metadata)
	if err != nil {
		return result, fmt.Errorf("failed to grant starting chips: %w", err)
	}
	result.WelcomeBonusGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Golden", "Quiet", "Sharp", "Gentle", "Bold", "Steady", "Bright", "Jade", "Iron"}
	nouns := []string{"Crane", "Sparrow", "Dragon", "Phoenix", "Tiger", "Koi", "Magpie", "Heron", "Lantern", "Turtle"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
