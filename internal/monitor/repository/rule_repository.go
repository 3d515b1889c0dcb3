package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// RuleRepository defines the interface for rule data operations.
type RuleRepository interface {
	Create(ctx context.Context, rule *entity.Rule) error
	FindByID(ctx context.Context, id uint) (*entity.Rule, error)
	Find(ctx context.Context, param dto.GetRulesParam) ([]entity.Rule, error)
	FindActive(ctx context.Context, accountID uint) ([]entity.Rule, error)
	Update(ctx context.Context, rule *entity.Rule) error
	Delete(ctx context.Context, id uint) error
}

// NewRuleRepository creates a new GORM-based rule repository.
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

type ruleRepository struct {
	db *gorm.DB
}

func (r *ruleRepository) Create(ctx context.Context, rule *entity.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
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

func (r *ruleRepository) Find(ctx context.Context, param dto.GetRulesParam) ([]entity.Rule, error) {
	var rules []entity.Rule

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if param.AccountID != nil {
		qFilter = append(qFilter, "account_id = ?")
		qFilterParam = append(qFilterParam, *param.AccountID)
	}
	if param.AssetTicker != nil {
		qFilter = append(qFilter, "asset_ticker = ?")
		qFilterParam = append(qFilterParam, *param.AssetTicker)
	}
	if param.IsActive != nil {
		qFilter = append(qFilter, "is_active = ?")
		qFilterParam = append(qFilterParam, *param.IsActive)
	}

	q := r.db.WithContext(ctx)
	if len(qFilter) > 0 {
		q = q.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}
	if err := q.Order("created_at DESC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) FindActive(ctx context.Context, accountID uint) ([]entity.Rule, error) {
	var rules []entity.Rule
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND is_active = ?", accountID, true).
		Order("created_at DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *entity.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Rule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}
