package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierForDeliveryTime(t *testing.T) {
	tier, ok := TierForDeliveryTime(600)
	if !ok {
		t.Fatal("expected a tier for 600s")
	}
	if !tier.Interest.Equal(decimal.RequireFromString("0.30")) {
		t.Errorf("expected 30%% interest for 600s, got %s", tier.Interest)
	}
	if !tier.MinAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected minimum 50 for 600s, got %s", tier.MinAmount)
	}

	// Exact match only: near misses are invalid
	for _, seconds := range []int64{0, 59, 61, 599, 3601, 86401, -60} {
		if _, ok := TierForDeliveryTime(seconds); ok {
			t.Errorf("expected no tier for %ds", seconds)
		}
	}
}
