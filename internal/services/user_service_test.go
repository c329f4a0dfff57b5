package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cryptopredict/internal/models"
)

func newUserFixture(t *testing.T, name string) (*UserService, *WalletService) {
	t.Helper()

	db := setupTestDB(t, name)
	wallets := NewWalletService(db, testLogger())
	svc := NewUserService(db, wallets, decimal.NewFromInt(100000), testLogger())
	return svc, wallets
}

func TestRegisterSeedsWallet(t *testing.T) {
	svc, wallets := newUserFixture(t, "user_register")
	ctx := context.Background()

	user, err := svc.Register(ctx, &models.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
		Mobile:    "5551234567",
		Email:     "ada@test.com",
		Password:  "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if len(user.UserID) != 6 {
		t.Errorf("expected 6-digit public id, got %q", user.UserID)
	}
	if len(user.WalletAddress) != 12 {
		t.Errorf("expected 12-char wallet address, got %q", user.WalletAddress)
	}
	if user.Password == "s3cret-pass" {
		t.Errorf("password stored in plaintext")
	}

	balances, err := wallets.GetBalances(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected starting balance 100000, got %s", balances[models.CashSymbol])
	}

	txs, err := wallets.ListTransactions(ctx, user.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != models.TransactionTypeSignup {
		t.Errorf("expected a single signup journal entry, got %+v", txs)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture(t, "user_dup_email")
	ctx := context.Background()

	req := &models.RegisterRequest{
		FirstName: "First",
		LastName:  "User",
		Age:       25,
		Mobile:    "5550001111",
		Email:     "dup@test.com",
		Password:  "password1",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register(ctx, req)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newUserFixture(t, "user_login")
	ctx := context.Background()

	registered, err := svc.Register(ctx, &models.RegisterRequest{
		FirstName: "Log",
		LastName:  "In",
		Age:       40,
		Mobile:    "5552223333",
		Email:     "login@test.com",
		Password:  "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.Login(ctx, "login@test.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("expected user %d, got %d", registered.ID, user.ID)
	}

	if _, err := svc.Login(ctx, "login@test.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@test.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	db := setupTestDB(t, "user_admin")
	wallets := NewWalletService(db, testLogger())
	svc := NewUserService(db, wallets, decimal.Zero, testLogger())
	ctx := context.Background()

	user := newTestUser(t, db, "admin@test.com")
	isAdmin, err := svc.IsAdmin(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsAdmin failed: %v", err)
	}
	if isAdmin {
		t.Errorf("expected non-admin by default")
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
	isAdmin, err = svc.IsAdmin(ctx, user.ID)
	if err != nil {
		t.Fatalf("IsAdmin failed: %v", err)
	}
	if !isAdmin {
		t.Errorf("expected admin after promotion")
	}
}
