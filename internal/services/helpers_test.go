package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cryptopredict/internal/models"
)

// setupTestDB opens a named in-memory database so each test gets its own
// isolated schema. cache=shared keeps the DB alive across connections
// within the test.
func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.WalletBalance{},
		&models.Transaction{},
		&models.Prediction{},
		&models.Deposit{},
		&models.Withdraw{},
		&models.Send{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

var testUserSeq int

// newTestUser inserts a user directly; registration flows are covered in
// user_service_test.go.
func newTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	testUserSeq++
	user := models.User{
		FirstName:     "Test",
		LastName:      "User",
		Age:           30,
		Mobile:        "5550000000",
		Email:         email,
		Password:      "not-a-real-hash",
		UserID:        fmt.Sprintf("%06d", 100000+testUserSeq),
		WalletAddress: fmt.Sprintf("addr%08d", testUserSeq),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

// stubOracle returns a fixed price, or a fixed error, for every symbol.
type stubOracle struct {
	price decimal.Decimal
	err   error
}

func (o *stubOracle) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if o.err != nil {
		return decimal.Zero, o.err
	}
	return o.price, nil
}

func (o *stubOracle) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if o.err != nil {
		return nil, o.err
	}
	prices := make(map[string]decimal.Decimal, len(symbols))
	for _, s := range symbols {
		prices[s] = o.price
	}
	return prices, nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
