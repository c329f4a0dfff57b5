package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptopredict/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FundingService runs the one-shot balance workflows: admin-approved
// deposits, self-service withdrawals and pending sends. All ledger
// mutations go through the wallet service.
type FundingService struct {
	db      *gorm.DB
	wallets *WalletService
	oracle  PriceOracle
	logger  *zap.Logger
}

// NewFundingService creates a new FundingService
func NewFundingService(db *gorm.DB, wallets *WalletService, oracle PriceOracle, logger *zap.Logger) *FundingService {
	return &FundingService{
		db:      db,
		wallets: wallets,
		oracle:  oracle,
		logger:  logger,
	}
}

// RequestDeposit records a deposit claim with its payment proof. No
// balance changes until an admin approves it.
func (s *FundingService) RequestDeposit(ctx context.Context, userID uint, req *models.DepositRequest) (*models.Deposit, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	deposit := &models.Deposit{
		ID:     uuid.New(),
		UserID: userID,
		Amount: req.Amount,
		Proof:  req.Proof,
	}
	if err := s.db.WithContext(ctx).Create(deposit).Error; err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}
	return deposit, nil
}

// ListPendingDeposits returns unapproved deposits for the admin queue
func (s *FundingService) ListPendingDeposits(ctx context.Context) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := s.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&deposits).Error
	if err != nil {
		return nil, err
	}
	return deposits, nil
}

// ApproveDeposit credits the deposit amount to the user's cash balance
// exactly once. The approved flag flip and the credit commit together;
// approving an already-approved deposit is rejected.
func (s *FundingService) ApproveDeposit(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", depositID).First(&deposit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: deposit %s", ErrNotFound, depositID)
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Deposit{}).
			Where("id = ? AND approved = ?", depositID, false).
			Updates(map[string]interface{}{"approved": true, "approved_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: deposit %s", ErrAlreadyApproved, depositID)
		}

		deposit.Approved = true
		deposit.ApprovedAt = &now

		return s.wallets.WithTx(tx).Credit(ctx, deposit.UserID, models.CashSymbol, deposit.Amount,
			models.TransactionTypeDeposit, fmt.Sprintf("deposit %s approved", depositID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit approved",
		zap.String("deposit_id", depositID.String()),
		zap.Uint("user_id", deposit.UserID),
		zap.String("amount", deposit.Amount.String()))
	return &deposit, nil
}

// Withdraw converts a held asset amount to cash at the current oracle
// price: the asset debit and the cash credit commit atomically.
func (s *FundingService) Withdraw(ctx context.Context, userID uint, req *models.WithdrawRequest) (*models.Withdraw, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	price, err := s.oracle.GetPrice(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}
	cashValue := req.Amount.Mul(price)

	withdraw := &models.Withdraw{
		ID:        uuid.New(),
		UserID:    userID,
		Symbol:    req.Symbol,
		Amount:    req.Amount,
		CashValue: cashValue,
		Approved:  true, // self-service: approved once the swap commits
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.wallets.WithTx(tx)
		if err := ledger.Debit(ctx, userID, req.Symbol, req.Amount, models.TransactionTypeWithdraw,
			fmt.Sprintf("withdraw %s %s at %s", req.Amount, req.Symbol, price)); err != nil {
			return err
		}
		if err := ledger.Credit(ctx, userID, models.CashSymbol, cashValue, models.TransactionTypeWithdraw,
			fmt.Sprintf("cash from withdrawing %s %s", req.Amount, req.Symbol)); err != nil {
			return err
		}
		return tx.Create(withdraw).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal completed",
		zap.Uint("user_id", userID),
		zap.String("symbol", req.Symbol),
		zap.String("amount", req.Amount.String()),
		zap.String("cash_value", cashValue.String()))
	return withdraw, nil
}

// Send debits the asset immediately and records the transfer as pending.
func (s *FundingService) Send(ctx context.Context, userID uint, req *models.SendRequest) (*models.Send, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	send := &models.Send{
		ID:      uuid.New(),
		UserID:  userID,
		Symbol:  req.Symbol,
		Amount:  req.Amount,
		Address: req.Address,
		Status:  models.SendStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.wallets.WithTx(tx).Debit(ctx, userID, req.Symbol, req.Amount, models.TransactionTypeSend,
			fmt.Sprintf("send %s %s to %s", req.Amount, req.Symbol, req.Address)); err != nil {
			return err
		}
		return tx.Create(send).Error
	})
	if err != nil {
		return nil, err
	}
	return send, nil
}

// ListPendingSends returns pending sends for the admin queue
func (s *FundingService) ListPendingSends(ctx context.Context) ([]models.Send, error) {
	var sends []models.Send
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SendStatusPending).
		Order("created_at ASC").
		Find(&sends).Error
	if err != nil {
		return nil, err
	}
	return sends, nil
}

// UpdateSendStatus moves a pending send to completed or rejected. A
// rejection does not restore the debited balance; compensation, if ever
// wanted, would be an explicit admin credit.
func (s *FundingService) UpdateSendStatus(ctx context.Context, sendID uuid.UUID, status models.SendStatus) (*models.Send, error) {
	if status != models.SendStatusCompleted && status != models.SendStatusRejected {
		return nil, fmt.Errorf("invalid send status: %s", status)
	}

	var send models.Send
	if err := s.db.WithContext(ctx).Where("id = ?", sendID).First(&send).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: send %s", ErrNotFound, sendID)
		}
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&models.Send{}).
		Where("id = ? AND status = ?", sendID, models.SendStatusPending).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: send %s", ErrAlreadyFinalized, sendID)
	}

	send.Status = status
	return &send, nil
}
