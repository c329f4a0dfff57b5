package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptopredict/internal/models"
	"cryptopredict/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// forceInterest is the flat rate the admin override path uses regardless
// of the prediction's tier. The automatic path uses the tier rate; the
// two paths are intentionally kept separate and asymmetric.
var forceInterest = decimal.RequireFromString("0.10")

// SettlementService moves predictions from open to settled. Settle is the
// scheduled market-evaluation trigger and is idempotent; ForceResult is
// the admin override and deliberately is not. Every settlement claim
// commits in the same transaction as the wallet mutation it implies, so
// a prediction can never end up settled with its payout missing.
type SettlementService struct {
	db      *gorm.DB
	repo    *repository.PredictionRepository
	wallets *WalletService
	oracle  PriceOracle
	logger  *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(db *gorm.DB, repo *repository.PredictionRepository, wallets *WalletService, oracle PriceOracle, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		db:      db,
		repo:    repo,
		wallets: wallets,
		oracle:  oracle,
		logger:  logger,
	}
}

// Settle evaluates one matured prediction. Already-settled predictions
// are a no-op. An admin-attached provisional result is honored verbatim
// instead of a fresh market check. Oracle failure leaves the prediction
// open for the next sweep and is never recorded as a lost stake.
func (s *SettlementService) Settle(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: prediction %s", ErrNotFound, id)
		}
		return err
	}

	if p.Settled() {
		return nil
	}

	tier, ok := models.TierForDeliveryTime(p.DeliveryTime)
	if !ok {
		return fmt.Errorf("%w: prediction %s has delivery time %d", ErrInvalidDeliveryTime, id, p.DeliveryTime)
	}

	if p.HasResult() {
		return s.settleProvisional(ctx, p, tier)
	}

	newPrice, err := s.oracle.GetPrice(ctx, p.Symbol)
	if err != nil {
		// Retryable: the prediction stays open past maturity until a
		// fetch succeeds.
		return err
	}

	success := (p.Direction == models.DirectionUp && newPrice.GreaterThan(p.CurrentPrice)) ||
		(p.Direction == models.DirectionDown && newPrice.LessThan(p.CurrentPrice))

	if !success {
		res := models.PredictionResult{
			Success: false,
			Loss:    p.Amount,
			Message: fmt.Sprintf("price moved from %s to %s against your %s prediction", p.CurrentPrice, newPrice, p.Direction),
			Source:  models.ResultSourceMarket,
		}
		claimed, err := s.repo.SettleOnce(ctx, p.ID, res)
		if err != nil {
			return err
		}
		if claimed {
			s.logger.Info("prediction settled as loss",
				zap.String("prediction_id", p.ID.String()),
				zap.String("symbol", p.Symbol),
				zap.String("price", newPrice.String()))
		}
		// Stake was reserved at creation; a loss mutates nothing.
		return nil
	}

	// profit is in cash units; the payout is credited in asset units at
	// the maturity price.
	profit := p.Amount.Sub(p.Fee).Add(p.Amount.Mul(tier.Interest))
	assetPayout := profit.Div(newPrice)

	res := models.PredictionResult{
		Success: true,
		Profit:  profit,
		Message: fmt.Sprintf("price moved from %s to %s, your %s prediction paid out", p.CurrentPrice, newPrice, p.Direction),
		Source:  models.ResultSourceMarket,
	}

	// The claim and the payout commit together: if the credit fails the
	// claim rolls back and the prediction stays open for the next sweep.
	var claimed bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		claimed, txErr = s.repo.WithTx(tx).SettleOnce(ctx, p.ID, res)
		if txErr != nil {
			return txErr
		}
		if !claimed {
			// A concurrent invocation settled it first; the credit
			// belongs to that invocation.
			return nil
		}
		return s.wallets.WithTx(tx).Credit(ctx, p.UserID, p.Symbol, assetPayout, models.TransactionTypePayout,
			fmt.Sprintf("payout for prediction %s", p.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to settle prediction %s: %w", p.ID, err)
	}
	if !claimed {
		return nil
	}

	s.logger.Info("prediction settled as win",
		zap.String("prediction_id", p.ID.String()),
		zap.String("symbol", p.Symbol),
		zap.String("profit", profit.String()),
		zap.String("asset_payout", assetPayout.String()))
	return nil
}

// settleProvisional finalizes a prediction whose result an admin attached
// before maturity. The success flag is honored as-is; profit is recomputed
// from the tier and paid in cash units, not asset units.
func (s *SettlementService) settleProvisional(ctx context.Context, p *models.Prediction, tier models.DeliveryTimeTier) error {
	success := *p.ResultSuccess

	res := models.PredictionResult{
		Success: success,
		Source:  models.ResultSourceAdmin,
	}
	if success {
		res.Profit = p.Amount.Sub(p.Fee).Add(p.Amount.Mul(tier.Interest))
		res.Message = "result set by administrator: prediction successful"
	} else {
		res.Loss = p.Amount
		res.Message = "result set by administrator: prediction failed"
	}

	var claimed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		claimed, txErr = s.repo.WithTx(tx).SettleOnce(ctx, p.ID, res)
		if txErr != nil {
			return txErr
		}
		if !claimed || !success {
			return nil
		}
		return s.wallets.WithTx(tx).Credit(ctx, p.UserID, models.CashSymbol, res.Profit, models.TransactionTypePayout,
			fmt.Sprintf("admin-set payout for prediction %s", p.ID))
	})
	if err != nil {
		return fmt.Errorf("failed to settle prediction %s: %w", p.ID, err)
	}
	if !claimed {
		return nil
	}

	s.logger.Info("prediction settled from provisional admin result",
		zap.String("prediction_id", p.ID.String()),
		zap.Bool("success", success))
	return nil
}

// ForceResult is the privileged override. It always overwrites the result
// (an admin can correct a settled outcome), computes profit at the flat
// forceInterest rate, converts at the price at stake time and applies the
// wallet delta in asset units: credit on success, debit on failure. A
// failure debit that would drive the balance negative is refused with
// InsufficientBalance rather than breaking the ledger invariant.
func (s *SettlementService) ForceResult(ctx context.Context, id uuid.UUID, success bool) (*models.Prediction, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: prediction %s", ErrNotFound, id)
		}
		return nil, err
	}

	profit := p.Amount.Sub(p.Fee).Add(p.Amount.Mul(forceInterest))
	cryptoProfit := profit.Div(p.CurrentPrice)

	res := models.PredictionResult{
		Success: success,
		Source:  models.ResultSourceAdmin,
	}
	if success {
		res.Profit = profit
		res.Message = "result overridden by administrator: prediction successful"
	} else {
		res.Loss = p.Amount
		res.Message = "result overridden by administrator: prediction failed"
	}

	// The wallet delta and the result overwrite commit together: a single
	// invocation is atomic even though repeated invocations reapply it.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.wallets.WithTx(tx)
		if success {
			if err := ledger.Credit(ctx, p.UserID, p.Symbol, cryptoProfit, models.TransactionTypePayout,
				fmt.Sprintf("admin override payout for prediction %s", p.ID)); err != nil {
				return err
			}
		} else {
			if err := ledger.Debit(ctx, p.UserID, p.Symbol, cryptoProfit, models.TransactionTypeAdjustment,
				fmt.Sprintf("admin override deduction for prediction %s", p.ID)); err != nil {
				return err
			}
		}
		return s.repo.WithTx(tx).OverwriteResult(ctx, p.ID, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("prediction result forced",
		zap.String("prediction_id", p.ID.String()),
		zap.Bool("success", success),
		zap.String("crypto_profit", cryptoProfit.String()))

	return s.repo.GetByID(ctx, p.ID)
}

// SettleDue runs one sweep pass: every unsettled prediction past maturity
// gets one settlement attempt. Oracle failures are logged and left for
// the next pass.
func (s *SettlementService) SettleDue(ctx context.Context, batchSize int) (int, error) {
	due, err := s.repo.ListDue(ctx, time.Now(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due predictions: %w", err)
	}

	settled := 0
	for _, p := range due {
		if err := s.Settle(ctx, p.ID); err != nil {
			if errors.Is(err, ErrOracleUnavailable) {
				s.logger.Warn("oracle unavailable, will retry",
					zap.String("prediction_id", p.ID.String()),
					zap.String("symbol", p.Symbol))
			} else {
				s.logger.Error("settlement failed",
					zap.String("prediction_id", p.ID.String()),
					zap.Error(err))
			}
			continue
		}
		settled++
	}
	return settled, nil
}
