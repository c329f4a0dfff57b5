package services

import (
	"context"
	"fmt"

	"cryptopredict/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService is the wallet ledger: the only component allowed to mutate
// balances. Every operation is atomic per (user, symbol) — debits are
// conditional updates that fail instead of observing a stale balance, and
// credits are upserts. Each mutation journals a transactions row.
type WalletService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(db *gorm.DB, logger *zap.Logger) *WalletService {
	return &WalletService{db: db, logger: logger}
}

// WithTx returns a WalletService bound to an open transaction so callers
// can compose ledger mutations with their own record writes atomically.
func (s *WalletService) WithTx(tx *gorm.DB) *WalletService {
	return &WalletService{db: tx, logger: s.logger}
}

// ensureWallet lazily creates the wallet row on first use, carrying the
// user's generated address.
func (s *WalletService) ensureWallet(ctx context.Context, tx *gorm.DB, userID uint) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var user models.User
	if err := tx.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}

	wallet := models.Wallet{
		UserID:   userID,
		Address:  user.WalletAddress,
		Invested: decimal.Zero,
	}
	// A concurrent first operation may have created it already.
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&wallet).Error
}

// Reserve debits the stake from the user's balance at prediction time.
func (s *WalletService) Reserve(ctx context.Context, userID uint, symbol string, amount decimal.Decimal, description string) error {
	return s.Debit(ctx, userID, symbol, amount, models.TransactionTypeStake, description)
}

// Credit adds amount to the (user, symbol) balance, creating the entry at
// zero if absent. Amount may be fractional.
func (s *WalletService) Credit(ctx context.Context, userID uint, symbol string, amount decimal.Decimal, txType, description string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureWallet(ctx, tx, userID); err != nil {
			return err
		}

		balance := models.WalletBalance{
			UserID: userID,
			Symbol: symbol,
			Amount: amount,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount": gorm.Expr("amount + ?", amount),
			}),
		}).Create(&balance).Error
		if err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		return s.journal(ctx, tx, userID, txType, symbol, amount, description)
	})
}

// Debit subtracts amount from the (user, symbol) balance. The balance
// check and the write are a single conditional UPDATE, so two concurrent
// debits can never both succeed against one affordable balance.
func (s *WalletService) Debit(ctx context.Context, userID uint, symbol string, amount decimal.Decimal, txType, description string) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureWallet(ctx, tx, userID); err != nil {
			return err
		}

		res := tx.Model(&models.WalletBalance{}).
			Where("user_id = ? AND symbol = ? AND amount >= ?", userID, symbol, amount).
			Update("amount", gorm.Expr("amount - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to debit balance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		return s.journal(ctx, tx, userID, txType, symbol, amount.Neg(), description)
	})
}

// SetBalance sets the (user, symbol) balance to an absolute amount.
// Administrative; the journal records it as an adjustment.
func (s *WalletService) SetBalance(ctx context.Context, userID uint, symbol string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureWallet(ctx, tx, userID); err != nil {
			return err
		}

		balance := models.WalletBalance{
			UserID: userID,
			Symbol: symbol,
			Amount: amount,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "symbol"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount": amount,
			}),
		}).Create(&balance).Error
		if err != nil {
			return fmt.Errorf("failed to set balance: %w", err)
		}

		return s.journal(ctx, tx, userID, models.TransactionTypeAdjustment, symbol, amount,
			fmt.Sprintf("balance set to %s", amount.String()))
	})
}

// GetBalances returns a snapshot of all balances for a user. Display
// only; authorization of a later mutation always re-checks inside the
// mutation itself.
func (s *WalletService) GetBalances(ctx context.Context, userID uint) (map[string]decimal.Decimal, error) {
	var rows []models.WalletBalance
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.Symbol] = row.Amount
	}
	return balances, nil
}

// GetWallet returns the wallet row for a user
func (s *WalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: wallet for user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return &wallet, nil
}

// MarkInvested bumps the wallet's lifetime invested total
func (s *WalletService) MarkInvested(ctx context.Context, userID uint, amount decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("invested", gorm.Expr("invested + ?", amount)).Error
}

// ListTransactions returns the journal for a user, newest first
func (s *WalletService) ListTransactions(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *WalletService) journal(ctx context.Context, tx *gorm.DB, userID uint, txType, symbol string, amount decimal.Decimal, description string) error {
	entry := models.Transaction{
		UserID:      userID,
		Type:        txType,
		Symbol:      symbol,
		Amount:      amount,
		Description: description,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to journal transaction: %w", err)
	}
	return nil
}
