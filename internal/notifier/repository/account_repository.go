package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// AccountRepository resolves delivery targets for an alert's account.
type AccountRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Account, error)
}

// NewAccountRepository creates a new GORM-based account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

type accountRepository struct {
	db *gorm.DB
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
