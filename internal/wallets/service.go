package wallets

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
)

// Service exposes wallet reads and the balance mutations other domains need.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	EnsureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error
	DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error
}

type service struct {
	repo Repository
}

// NewService wires a wallets service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallets repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	wallet, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A missing row reads as an empty wallet.
			return &models.Wallet{UserID: userID, TokenBalance: 0}, nil
		}
		return nil, err
	}
	return wallet, nil
}

func (s *service) EnsureWallet(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.WithTx(tx).Create(ctx, &models.Wallet{UserID: userID})
}

func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error {
	if tokens <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	repo := s.repo.WithTx(tx)
	// The wallet row may not exist yet for users created before wallets were
	// provisioned at registration.
	if err := repo.Create(ctx, &models.Wallet{UserID: userID}); err != nil {
		return err
	}
	return repo.Credit(ctx, userID, tokens)
}

func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tokens int) error {
	if tokens <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	rows, err := s.repo.WithTx(tx).Debit(ctx, userID, tokens)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient token balance")
	}
	return nil
}
