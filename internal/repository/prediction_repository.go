package repository

import (
	"context"
	"time"

	"cryptopredict/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionRepository owns durable prediction records. Settlement writes
// go through SettleOnce / OverwriteResult, which touch only result columns.
type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// WithTx returns a PredictionRepository bound to an open transaction so
// settlement writes can commit together with the wallet mutations they
// imply.
func (r *PredictionRepository) WithTx(tx *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: tx}
}

// Create persists a new prediction
func (r *PredictionRepository) Create(ctx context.Context, p *models.Prediction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID retrieves a prediction by ID
func (r *PredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	var p models.Prediction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser retrieves all predictions for a user, newest first
func (r *PredictionRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("predicted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// ListOpen retrieves predictions with no result yet (admin dashboard view)
func (r *PredictionRepository) ListOpen(ctx context.Context) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("result_success IS NULL").
		Order("predicted_at ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// ListDue retrieves unsettled predictions whose maturity has passed.
// This is the sweep's due-time index: dueness is derived from persisted
// matures_at, so pending settlements survive restarts.
func (r *PredictionRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("settled_at IS NULL AND matures_at <= ?", now).
		Order("matures_at ASC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// SettleOnce writes the result and marks the prediction settled, guarded
// by settled_at IS NULL. Returns false when another invocation already
// settled it; callers must skip the wallet credit in that case.
func (r *PredictionRepository) SettleOnce(ctx context.Context, id uuid.UUID, res models.PredictionResult) (bool, error) {
	now := time.Now()
	tx := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ? AND settled_at IS NULL", id).
		Updates(map[string]interface{}{
			"result_success": res.Success,
			"result_profit":  res.Profit,
			"result_loss":    res.Loss,
			"result_message": res.Message,
			"result_source":  res.Source,
			"settled_at":     now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// OverwriteResult unconditionally replaces the result columns. Used only
// by the admin force path, which is allowed to correct a settled outcome;
// settled_at is left alone so a pre-maturity override stays visible to
// the sweep.
func (r *PredictionRepository) OverwriteResult(ctx context.Context, id uuid.UUID, res models.PredictionResult) error {
	return r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"result_success": res.Success,
			"result_profit":  res.Profit,
			"result_loss":    res.Loss,
			"result_message": res.Message,
			"result_source":  res.Source,
		}).Error
}
