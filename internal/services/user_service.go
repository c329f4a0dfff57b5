package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"cryptopredict/internal/models"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const walletAddressLength = 12

// UserService handles registration, login and profile access
type UserService struct {
	db             *gorm.DB
	wallets        *WalletService
	initialBalance decimal.Decimal
	logger         *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, wallets *WalletService, initialBalance decimal.Decimal, logger *zap.Logger) *UserService {
	return &UserService{
		db:             db,
		wallets:        wallets,
		initialBalance: initialBalance,
		logger:         logger,
	}
}

// Register creates a new user with a generated public id and wallet
// address, and seeds the wallet's cash balance.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	publicID, err := s.generateUserID(ctx)
	if err != nil {
		return nil, err
	}
	address, err := s.generateWalletAddress(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Age:           req.Age,
		Mobile:        req.Mobile,
		Email:         req.Email,
		Password:      string(hash),
		UserID:        publicID,
		WalletAddress: address,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.initialBalance.IsPositive() {
		if err := s.wallets.Credit(ctx, user.ID, models.CashSymbol, s.initialBalance,
			models.TransactionTypeSignup, "starting balance"); err != nil {
			return nil, fmt.Errorf("failed to seed wallet: %w", err)
		}
	}

	s.logger.Info("user registered",
		zap.Uint("id", user.ID),
		zap.String("user_id", user.UserID),
		zap.String("wallet_address", user.WalletAddress))
	return user, nil
}

// Login verifies credentials and returns the user
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetByID retrieves a user by primary key
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// IsAdmin reports whether a user has the admin flag
func (s *UserService) IsAdmin(ctx context.Context, id uint) (bool, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// generateUserID draws random 6-digit ids until one is unused
func (s *UserService) generateUserID(ctx context.Context) (string, error) {
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(900000))
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%06d", n.Int64()+100000)

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}

// generateWalletAddress draws random base58 addresses until one is unused
func (s *UserService) generateWalletAddress(ctx context.Context) (string, error) {
	for {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		encoded := base58.Encode(buf)
		if len(encoded) < walletAddressLength {
			continue
		}
		candidate := encoded[:walletAddressLength]

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("wallet_address = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
}
