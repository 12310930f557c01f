package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type mockAccounts struct {
	err         error
	userID      string
	username    string
	displayName string
	calls       int
}

func (m *mockAccounts) UpdateProfile(_ context.Context, userID, username, displayName string) error {
	m.calls++
	m.userID = userID
	m.username = username
	m.displayName = displayName
	return m.err
}

type mockBonuses struct {
	granted  bool
	err      error
	userID   string
	amount   int64
	metadata map[string]interface{}
	calls    int
}

func (m *mockBonuses) GrantWelcomeBonusOnce(_ context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	m.calls++
	m.userID = userID
	m.amount = amount
	m.metadata = metadata
	return m.granted, m.err
}

func TestOnboardNewUser(t *testing.T) {
	accounts := &mockAccounts{}
	bonuses := &mockBonuses{granted: true}
	svc := NewService(accounts, bonuses, rand.New(rand.NewSource(42)))

	result, err := svc.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("onboard error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("profile update err = %v, want nil", result.ProfileUpdateErr)
	}
	if !result.WelcomeBonusGranted {
		t.Fatal("welcome bonus not granted")
	}

	if accounts.calls != 1 || accounts.userID != "user-1" {
		t.Fatalf("accounts calls = %d for %q", accounts.calls, accounts.userID)
	}
	if accounts.username != accounts.displayName {
		t.Fatalf("username %q != display name %q", accounts.username, accounts.displayName)
	}
	if bonuses.calls != 1 || bonuses.userID != "user-1" {
		t.Fatalf("bonuses calls = %d for %q", bonuses.calls, bonuses.userID)
	}
	if bonuses.amount != defaultStartingChips {
		t.Fatalf("amount = %d, want %d", bonuses.amount, defaultStartingChips)
	}
	if bonuses.metadata["reason"] != "starting_chips" {
		t.Fatalf("metadata = %v", bonuses.metadata)
	}
}

func TestOnboardNewUserProfileFailureIsNonFatal(t *testing.T) {
	profileErr := errors.New("account update failed")
	accounts := &mockAccounts{err: profileErr}
	bonuses := &mockBonuses{granted: true}
	svc := NewService(accounts, bonuses, rand.New(rand.NewSource(42)))

	result, err := svc.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("onboard error: %v", err)
	}
	if !errors.Is(result.ProfileUpdateErr, profileErr) {
		t.Fatalf("profile update err = %v, want %v", result.ProfileUpdateErr, profileErr)
	}
	if bonuses.calls != 1 {
		t.Fatal("chip grant skipped after profile failure")
	}
}

func TestOnboardNewUserGrantFailureIsFatal(t *testing.T) {
	grantErr := errors.New("wallet update failed")
	accounts := &mockAccounts{}
	bonuses := &mockBonuses{err: grantErr}
	svc := NewService(accounts, bonuses, rand.New(rand.NewSource(42)))

	if _, err := svc.OnboardNewUser(context.Background(), "user-1"); !errors.Is(err, grantErr) {
		t.Fatalf("onboard error = %v, want %v", err, grantErr)
	}
}

func TestOnboardNewUserAlreadyGranted(t *testing.T) {
	svc := NewService(&mockAccounts{}, &mockBonuses{granted: false}, rand.New(rand.NewSource(42)))

	result, err := svc.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("onboard error: %v", err)
	}
	if result.WelcomeBonusGranted {
		t.Fatal("bonus reported granted twice")
	}
}

func TestGenerateFriendlyName(t *testing.T) {
	svc := NewService(&mockAccounts{}, &mockBonuses{}, rand.New(rand.NewSource(7)))
	pattern := regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+[1-9]\d{3}$`)

	for i := 0; i < 20; i++ {
		name := svc.generateFriendlyName()
		if !pattern.MatchString(name) {
			t.Fatalf("name %q does not match expected shape", name)
		}
	}
}
