package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SendStatus is the lifecycle of a send-to-address request
type SendStatus string

const (
	SendStatusPending   SendStatus = "PENDING"
	SendStatusCompleted SendStatus = "COMPLETED"
	SendStatusRejected  SendStatus = "REJECTED"
)

// Deposit is a user-submitted cash deposit awaiting admin approval.
// Approval credits the usd balance exactly once.
type Deposit struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	Proof      string          `gorm:"size:500;not null" json:"proof"` // reference to the uploaded payment proof
	Approved   bool            `gorm:"not null;default:false;index" json:"approved"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName specifies the table name for Deposit model
func (Deposit) TableName() string {
	return "deposits"
}

// Withdraw converts a held asset amount to cash at the oracle price.
// Self-service: the record is created approved once the ledger swap commits.
type Withdraw struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Symbol    string          `gorm:"size:20;not null" json:"symbol"`
	Amount    decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	CashValue decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"cash_value"`
	Approved  bool            `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for Withdraw model
func (Withdraw) TableName() string {
	return "withdraws"
}

// Send is an outbound transfer request. The asset is debited when the
// request is created; a later rejection does not restore the balance.
type Send struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Symbol    string          `gorm:"size:20;not null" json:"symbol"`
	Amount    decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	Address   string          `gorm:"size:255;not null" json:"address"`
	Status    SendStatus      `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Send model
func (Send) TableName() string {
	return "sends"
}

// DepositRequest is the payload for submitting a deposit
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Proof  string          `json:"proof" binding:"required"`
}

// WithdrawRequest is the payload for a self-service withdrawal
type WithdrawRequest struct {
	Symbol string          `json:"symbol" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SendRequest is the payload for a send-to-address transfer
type SendRequest struct {
	Symbol  string          `json:"symbol" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
}

// UpdateSendStatusRequest is the payload for the admin status transition
type UpdateSendStatusRequest struct {
	Status SendStatus `json:"status" binding:"required,oneof=COMPLETED REJECTED"`
}
