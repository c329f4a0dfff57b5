package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cryptopredict/internal/models"
)

func TestDepositApprovedOnce(t *testing.T) {
	db := setupTestDB(t, "funding_deposit")
	wallets := NewWalletService(db, testLogger())
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc := NewFundingService(db, wallets, oracle, testLogger())
	user := newTestUser(t, db, "deposit@test.com")
	ctx := context.Background()

	deposit, err := svc.RequestDeposit(ctx, user.ID, &models.DepositRequest{
		Amount: decimal.NewFromInt(500),
		Proof:  "txn-proof-123",
	})
	if err != nil {
		t.Fatalf("RequestDeposit failed: %v", err)
	}

	// The request alone credits nothing
	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].IsZero() {
		t.Fatalf("unapproved deposit must not credit, got %s", balances[models.CashSymbol])
	}

	pending, err := svc.ListPendingDeposits(ctx)
	if err != nil {
		t.Fatalf("ListPendingDeposits failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending deposit, got %d", len(pending))
	}

	approved, err := svc.ApproveDeposit(ctx, deposit.ID)
	if err != nil {
		t.Fatalf("ApproveDeposit failed: %v", err)
	}
	if !approved.Approved || approved.ApprovedAt == nil {
		t.Errorf("expected approved deposit with timestamp, got %+v", approved)
	}

	balances, _ = wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected cash 500 after approval, got %s", balances[models.CashSymbol])
	}

	// Double approval must not double credit
	_, err = svc.ApproveDeposit(ctx, deposit.ID)
	if !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
	balances, _ = wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].Equal(decimal.NewFromInt(500)) {
		t.Errorf("double approval changed the balance, got %s", balances[models.CashSymbol])
	}
}

func TestWithdrawConvertsAtOraclePrice(t *testing.T) {
	db := setupTestDB(t, "funding_withdraw")
	wallets := NewWalletService(db, testLogger())
	oracle := &stubOracle{price: decimal.NewFromInt(250)}
	svc := NewFundingService(db, wallets, oracle, testLogger())
	user := newTestUser(t, db, "withdraw@test.com")
	ctx := context.Background()

	if err := wallets.Credit(ctx, user.ID, "eth", decimal.NewFromInt(4), models.TransactionTypeDeposit, "seed"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	w, err := svc.Withdraw(ctx, user.ID, &models.WithdrawRequest{
		Symbol: "eth",
		Amount: decimal.RequireFromString("1.5"),
	})
	if err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if !w.CashValue.Equal(decimal.RequireFromString("375")) {
		t.Errorf("expected cash value 375, got %s", w.CashValue)
	}

	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances["eth"].Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("expected eth 2.5, got %s", balances["eth"])
	}
	if !balances[models.CashSymbol].Equal(decimal.RequireFromString("375")) {
		t.Errorf("expected cash 375, got %s", balances[models.CashSymbol])
	}
}

func TestWithdrawInsufficientHolding(t *testing.T) {
	db := setupTestDB(t, "funding_withdraw_short")
	wallets := NewWalletService(db, testLogger())
	oracle := &stubOracle{price: decimal.NewFromInt(250)}
	svc := NewFundingService(db, wallets, oracle, testLogger())
	user := newTestUser(t, db, "withdrawshort@test.com")
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, user.ID, &models.WithdrawRequest{
		Symbol: "eth",
		Amount: decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// The aborted transaction leaves no stray cash credit
	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances[models.CashSymbol].IsZero() {
		t.Errorf("failed withdrawal credited cash: %s", balances[models.CashSymbol])
	}
}

func TestSendDebitsImmediately(t *testing.T) {
	db := setupTestDB(t, "funding_send")
	wallets := NewWalletService(db, testLogger())
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc := NewFundingService(db, wallets, oracle, testLogger())
	user := newTestUser(t, db, "send@test.com")
	ctx := context.Background()

	if err := wallets.Credit(ctx, user.ID, "btc", decimal.NewFromInt(3), models.TransactionTypeDeposit, "seed"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	send, err := svc.Send(ctx, user.ID, &models.SendRequest{
		Symbol:  "btc",
		Amount:  decimal.NewFromInt(2),
		Address: "ExternalAddr1",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if send.Status != models.SendStatusPending {
		t.Errorf("expected pending status, got %s", send.Status)
	}

	balances, _ := wallets.GetBalances(ctx, user.ID)
	if !balances["btc"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected btc 1 after send debit, got %s", balances["btc"])
	}

	// Rejection finalizes the record without restoring the balance
	rejected, err := svc.UpdateSendStatus(ctx, send.ID, models.SendStatusRejected)
	if err != nil {
		t.Fatalf("UpdateSendStatus failed: %v", err)
	}
	if rejected.Status != models.SendStatusRejected {
		t.Errorf("expected rejected status, got %s", rejected.Status)
	}

	balances, _ = wallets.GetBalances(ctx, user.ID)
	if !balances["btc"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("rejection must not restore the balance, got %s", balances["btc"])
	}

	// A finalized send cannot be finalized again
	_, err = svc.UpdateSendStatus(ctx, send.ID, models.SendStatusCompleted)
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestSendInsufficientBalanceCreatesNoRecord(t *testing.T) {
	db := setupTestDB(t, "funding_send_short")
	wallets := NewWalletService(db, testLogger())
	oracle := &stubOracle{price: decimal.NewFromInt(100)}
	svc := NewFundingService(db, wallets, oracle, testLogger())
	user := newTestUser(t, db, "sendshort@test.com")
	ctx := context.Background()

	_, err := svc.Send(ctx, user.ID, &models.SendRequest{
		Symbol:  "btc",
		Amount:  decimal.NewFromInt(1),
		Address: "ExternalAddr2",
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	pending, err := svc.ListPendingSends(ctx)
	if err != nil {
		t.Fatalf("ListPendingSends failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("failed send must not leave a record, got %d", len(pending))
	}
}
