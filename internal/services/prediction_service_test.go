package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cryptopredict/internal/models"
	"cryptopredict/internal/repository"
)

func newPredictionFixture(t *testing.T, name string, oracle PriceOracle) (*PredictionService, *WalletService, *models.User) {
	t.Helper()

	db := setupTestDB(t, name)
	wallets := NewWalletService(db, testLogger())
	repo := repository.NewPredictionRepository(db)
	svc := NewPredictionService(db, repo, wallets, oracle, testLogger())
	user := newTestUser(t, db, name+"@test.com")

	if err := wallets.Credit(context.Background(), user.ID, models.CashSymbol, decimal.NewFromInt(1000),
		models.TransactionTypeDeposit, "seed"); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
	return svc, wallets, user
}

func TestStakeTierValidation(t *testing.T) {
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc, wallets, user := newPredictionFixture(t, "stake_tiers", oracle)
	ctx := context.Background()

	// 600s tier requires at least 50
	_, err := svc.Stake(ctx, user.ID, &models.StakeRequest{
		Symbol: "btc", Direction: models.DirectionUp,
		Amount: decimal.NewFromInt(40), DeliveryTime: 600,
	})
	if !errors.Is(err, ErrAmountBelowMinimum) {
		t.Fatalf("expected ErrAmountBelowMinimum, got %v", err)
	}

	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("rejected stake must not touch the balance, got %s", balances[models.CashSymbol])
	}

	p, err := svc.Stake(ctx, user.ID, &models.StakeRequest{
		Symbol: "btc", Direction: models.DirectionUp,
		Amount: decimal.NewFromInt(50), DeliveryTime: 600,
	})
	if err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	balances, _ = wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(950)) {
		t.Errorf("expected 50 reserved, balance %s", balances[models.CashSymbol])
	}
	if !p.Fee.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("expected fee 0.05, got %s", p.Fee)
	}
	if !p.CurrentPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected stake price 100, got %s", p.CurrentPrice)
	}
	wantMaturity := p.PredictedAt.Add(600 * time.Second)
	if !p.MaturesAt.Equal(wantMaturity) {
		t.Errorf("expected maturity %v, got %v", wantMaturity, p.MaturesAt)
	}
}

func TestStakeInvalidDeliveryTime(t *testing.T) {
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc, _, user := newPredictionFixture(t, "stake_invalid_dt", oracle)

	_, err := svc.Stake(context.Background(), user.ID, &models.StakeRequest{
		Symbol: "btc", Direction: models.DirectionDown,
		Amount: decimal.NewFromInt(100), DeliveryTime: 120,
	})
	if !errors.Is(err, ErrInvalidDeliveryTime) {
		t.Fatalf("expected ErrInvalidDeliveryTime, got %v", err)
	}
}

func TestStakeInsufficientBalance(t *testing.T) {
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc, wallets, user := newPredictionFixture(t, "stake_insufficient", oracle)
	ctx := context.Background()

	_, err := svc.Stake(ctx, user.ID, &models.StakeRequest{
		Symbol: "btc", Direction: models.DirectionUp,
		Amount: decimal.NewFromInt(5000), DeliveryTime: 86400,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Fail closed: no record, no debit
	open, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("expected no prediction record after failed stake, got %d", len(open))
	}
	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected untouched balance, got %s", balances[models.CashSymbol])
	}
}

func TestStakeOracleDown(t *testing.T) {
	oracle := &stubOracle{err: ErrOracleUnavailable}
	svc, wallets, user := newPredictionFixture(t, "stake_oracle_down", oracle)
	ctx := context.Background()

	_, err := svc.Stake(ctx, user.ID, &models.StakeRequest{
		Symbol: "btc", Direction: models.DirectionUp,
		Amount: decimal.NewFromInt(50), DeliveryTime: 600,
	})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}

	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(1000)) {
		t.Errorf("oracle failure must abort before reserving, got %s", balances[models.CashSymbol])
	}
}

func TestListByUserAndOpen(t *testing.T) {
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc, _, user := newPredictionFixture(t, "stake_lists", oracle)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Stake(ctx, user.ID, &models.StakeRequest{
			Symbol: "btc", Direction: models.DirectionUp,
			Amount: decimal.NewFromInt(20), DeliveryTime: 60,
		})
		if err != nil {
			t.Fatalf("Stake failed: %v", err)
		}
	}

	mine, err := svc.ListByUser(ctx, user.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("expected 3 predictions, got %d", len(mine))
	}

	open, err := svc.ListOpen(ctx)
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 3 {
		t.Errorf("expected 3 open predictions, got %d", len(open))
	}
}
