package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction of a predicted price move
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Result provenance
const (
	ResultSourceMarket = "market"
	ResultSourceAdmin  = "admin"
)

// Prediction represents a single stake on short-term price direction.
// Lifecycle: open (settled_at NULL) -> settled. An admin may attach a
// result before maturity; the prediction stays open until the sweep
// settles it, which is why result columns and settled_at are separate.
type Prediction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	WalletAddress string          `gorm:"size:12;not null" json:"wallet_address"`
	Symbol        string          `gorm:"size:20;not null" json:"symbol"`
	Direction     Direction       `gorm:"size:10;not null" json:"direction"`
	Amount        decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	Fee           decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"fee"`
	CurrentPrice  decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"current_price"` // price at stake time
	DeliveryTime  int64           `gorm:"not null" json:"delivery_time"`                     // seconds, one of the tier durations
	PredictedAt   time.Time       `gorm:"not null" json:"predicted_at"`
	MaturesAt     time.Time       `gorm:"not null;index" json:"matures_at"` // predicted_at + delivery_time, the sweep's due index

	ResultSuccess *bool            `json:"result_success,omitempty"`
	ResultProfit  *decimal.Decimal `gorm:"type:decimal(30,12)" json:"result_profit,omitempty"`
	ResultLoss    *decimal.Decimal `gorm:"type:decimal(30,12)" json:"result_loss,omitempty"`
	ResultMessage *string          `gorm:"type:text" json:"result_message,omitempty"`
	ResultSource  *string          `gorm:"size:10" json:"result_source,omitempty"`
	SettledAt     *time.Time       `gorm:"index" json:"settled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Prediction model
func (Prediction) TableName() string {
	return "predictions"
}

// Settled reports whether settlement has run to completion.
func (p *Prediction) Settled() bool {
	return p.SettledAt != nil
}

// HasResult reports whether a result is attached, settled or provisional.
func (p *Prediction) HasResult() bool {
	return p.ResultSuccess != nil
}

// PredictionResult is the outcome written during settlement.
type PredictionResult struct {
	Success bool            `json:"success"`
	Profit  decimal.Decimal `json:"profit"`
	Loss    decimal.Decimal `json:"loss"`
	Message string          `json:"message"`
	Source  string          `json:"source"`
}

// StakeRequest is the payload for creating a prediction
type StakeRequest struct {
	Symbol       string          `json:"symbol" binding:"required"`
	Direction    Direction       `json:"direction" binding:"required,oneof=up down"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	DeliveryTime int64           `json:"delivery_time" binding:"required"`
}

// ForceResultRequest is the payload for the admin result override
type ForceResultRequest struct {
	Success *bool `json:"success" binding:"required"`
}
