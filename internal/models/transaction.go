package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types recorded by the wallet ledger
const (
	TransactionTypeSignup     = "signup_bonus"
	TransactionTypeStake      = "stake"
	TransactionTypePayout     = "payout"
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdraw   = "withdraw"
	TransactionTypeSend       = "send"
	TransactionTypeAdjustment = "adjustment"
)

// Transaction is the journal row written alongside every ledger mutation.
// Amount is signed: credits positive, debits negative.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Type        string          `gorm:"size:50;not null;index" json:"type"`
	Symbol      string          `gorm:"size:20;not null" json:"symbol"`
	Amount      decimal.Decimal `gorm:"type:decimal(30,12);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
