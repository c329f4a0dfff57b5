package services

import (
	"context"
	"fmt"
	"time"

	"cryptopredict/internal/models"
	"cryptopredict/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PredictionService creates predictions and answers queries over them.
// Stake reservation and record creation commit in one transaction so a
// failed write can never leave money debited.
type PredictionService struct {
	db      *gorm.DB
	repo    *repository.PredictionRepository
	wallets *WalletService
	oracle  PriceOracle
	logger  *zap.Logger
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(db *gorm.DB, repo *repository.PredictionRepository, wallets *WalletService, oracle PriceOracle, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		db:      db,
		repo:    repo,
		wallets: wallets,
		oracle:  oracle,
		logger:  logger,
	}
}

// Stake validates a stake request against the tier table, reserves the
// cash stake and creates the prediction record. All validation happens
// before any ledger mutation.
func (s *PredictionService) Stake(ctx context.Context, userID uint, req *models.StakeRequest) (*models.Prediction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tier, ok := models.TierForDeliveryTime(req.DeliveryTime)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDeliveryTime, req.DeliveryTime)
	}
	if req.Amount.LessThan(tier.MinAmount) {
		return nil, fmt.Errorf("%w: tier %ds requires at least %s", ErrAmountBelowMinimum, tier.Time, tier.MinAmount.String())
	}

	price, err := s.oracle.GetPrice(ctx, req.Symbol)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	now := time.Now()
	prediction := &models.Prediction{
		ID:            uuid.New(),
		UserID:        userID,
		WalletAddress: user.WalletAddress,
		Symbol:        req.Symbol,
		Direction:     req.Direction,
		Amount:        req.Amount,
		Fee:           req.Amount.Mul(models.FeeRate),
		CurrentPrice:  price,
		DeliveryTime:  req.DeliveryTime,
		PredictedAt:   now,
		MaturesAt:     now.Add(time.Duration(req.DeliveryTime) * time.Second),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.wallets.WithTx(tx)
		if err := ledger.Reserve(ctx, userID, models.CashSymbol, req.Amount,
			fmt.Sprintf("stake on %s %s for %ds", req.Symbol, req.Direction, req.DeliveryTime)); err != nil {
			return err
		}
		if err := ledger.MarkInvested(ctx, userID, req.Amount); err != nil {
			return err
		}
		return tx.Create(prediction).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("prediction staked",
		zap.String("prediction_id", prediction.ID.String()),
		zap.Uint("user_id", userID),
		zap.String("symbol", req.Symbol),
		zap.String("direction", string(req.Direction)),
		zap.String("amount", req.Amount.String()),
		zap.Int64("delivery_time", req.DeliveryTime),
	)
	return prediction, nil
}

// GetByID retrieves a prediction by ID
func (s *PredictionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: prediction %s", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

// ListByUser retrieves a user's predictions, newest first
func (s *PredictionService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Prediction, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListOpen retrieves all predictions with no result yet
func (s *PredictionService) ListOpen(ctx context.Context) ([]*models.Prediction, error) {
	return s.repo.ListOpen(ctx)
}

// Tiers returns the fixed delivery-time tier schedule
func (s *PredictionService) Tiers() []models.DeliveryTimeTier {
	return models.DeliveryTimeTiers
}
