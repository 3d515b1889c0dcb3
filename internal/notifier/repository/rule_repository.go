package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// RuleRepository resolves the channel list of the rule that raised an alert.
type RuleRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Rule, error)
}

// NewRuleRepository creates a new GORM-based rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

type ruleRepository struct {
	db *gorm.DB
}

func (r *ruleRepository) FindByID(ctx context.Context, id uint) (*entity.Rule, error) {
	var rule entity.Rule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &rule, nil
}
