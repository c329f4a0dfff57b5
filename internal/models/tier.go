package models

import (
	"github.com/shopspring/decimal"
)

// FeeRate is charged on every stake: fee = amount * 0.001.
var FeeRate = decimal.RequireFromString("0.001")

// DeliveryTimeTier maps a delivery duration to its interest rate and
// minimum stake. The table is fixed; a stake must match one tier's Time
// exactly.
type DeliveryTimeTier struct {
	Time      int64           `json:"time"` // seconds
	Interest  decimal.Decimal `json:"interest"`
	MinAmount decimal.Decimal `json:"min_amount"`
}

// DeliveryTimeTiers is the fixed tier schedule.
var DeliveryTimeTiers = []DeliveryTimeTier{
	{Time: 60, Interest: decimal.RequireFromString("0.10"), MinAmount: decimal.NewFromInt(20)},
	{Time: 600, Interest: decimal.RequireFromString("0.30"), MinAmount: decimal.NewFromInt(50)},
	{Time: 3600, Interest: decimal.RequireFromString("0.50"), MinAmount: decimal.NewFromInt(100)},
	{Time: 86400, Interest: decimal.RequireFromString("1.00"), MinAmount: decimal.NewFromInt(200)},
}

// TierForDeliveryTime returns the tier whose duration matches exactly.
func TierForDeliveryTime(seconds int64) (DeliveryTimeTier, bool) {
	for _, tier := range DeliveryTimeTiers {
		if tier.Time == seconds {
			return tier, true
		}
	}
	return DeliveryTimeTier{}, false
}
