package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSymbol is the symbol under which a user's cash balance is held.
const CashSymbol = "usd"

// Wallet represents a user's wallet. Balances live in WalletBalance rows,
// one per (user, symbol); the wallet row itself carries identity and
// aggregate bookkeeping. Created lazily on the first balance-affecting
// operation.
type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Address   string          `gorm:"uniqueIndex;not null;size:12" json:"address"`
	Invested  decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"invested"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// WalletBalance holds one per-asset balance. The (user_id, symbol) unique
// index is what conditional debits and upsert credits key on; a balance
// never goes negative.
type WalletBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_balances_user_symbol" json:"user_id"`
	Symbol    string          `gorm:"size:20;not null;uniqueIndex:idx_balances_user_symbol" json:"symbol"`
	Amount    decimal.Decimal `gorm:"type:decimal(30,12);not null;default:0" json:"amount"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for WalletBalance model
func (WalletBalance) TableName() string {
	return "wallet_balances"
}
