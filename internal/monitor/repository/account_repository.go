package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// AccountRepository defines the interface for account data operations.
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
	FindAll(ctx context.Context) ([]entity.Account, error)
}

// NewAccountRepository creates a new GORM-based account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindAll(ctx context.Context) ([]entity.Account, error) {
	var accounts []entity.Account
	if err := r.db.WithContext(ctx).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
