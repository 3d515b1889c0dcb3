package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/utils"

	"github.com/stretchr/testify/assert"
)

type fakeRuleRepository struct {
	rules []*entity.Rule
}

func (r *fakeRuleRepository) Create(_ context.Context, rule *entity.Rule) error {
	rule.ID = uint(len(r.rules) + 1)
	r.rules = append(r.rules, rule)
	return nil
}

func (r *fakeRuleRepository) FindByID(_ context.Context, id uint) (*entity.Rule, error) {
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeRuleRepository) Find(_ context.Context, _ dto.GetRulesParam) ([]entity.Rule, error) {
	var out []entity.Rule
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (r *fakeRuleRepository) FindActive(_ context.Context, accountID uint) ([]entity.Rule, error) {
	var out []entity.Rule
	for _, rule := range r.rules {
		if rule.AccountID == accountID && rule.IsActive {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *fakeRuleRepository) Update(_ context.Context, _ *entity.Rule) error { return nil }

func (r *fakeRuleRepository) Delete(_ context.Context, _ uint) error { return nil }

type monitorFixture struct {
	svc        MonitorService
	alertRepo  *fakeAlertRepository
	enqueuer   *fakeEnqueuer
	quoteStore repository.QuoteStore
}

func newMonitorFixture(rules []*entity.Rule, positions []*entity.OptionPosition) *monitorFixture {
	accountRepo := &fakeAccountRepository{accounts: map[uint]*entity.Account{
		1: {ID: 1, Name: "main"},
	}}
	assetRepo := &fakeAssetRepository{assets: map[uint]*entity.Asset{
		1: {ID: 1, AccountID: 1, Ticker: "PETR4"},
	}}
	positionRepo := newFakePositionRepository()
	for _, p := range positions {
		positionRepo.positions[p.ID] = p
		if p.ID >= positionRepo.nextID {
			positionRepo.nextID = p.ID + 1
		}
	}
	alertRepo := newFakeAlertRepository()
	enqueuer := &fakeEnqueuer{}
	quoteStore := repository.NewQuoteStore(nil, logger.NewNop(), 0)
	alertSvc := NewAlertService(alertRepo, enqueuer, logger.NewNop())

	svc := NewMonitorService(
		accountRepo, assetRepo, positionRepo, &fakeRuleRepository{rules: rules},
		quoteStore, NewRuleMatcher(logger.NewNop()), NewRollCalculator(), alertSvc,
		nil, logger.NewNop(),
		time.Minute, "", 3,
	)
	return &monitorFixture{svc: svc, alertRepo: alertRepo, enqueuer: enqueuer, quoteStore: quoteStore}
}

func openCallPosition(id uint, strike float64, expiration time.Time) *entity.OptionPosition {
	return &entity.OptionPosition{
		ID:         id,
		AccountID:  1,
		AssetID:    1,
		Side:       entity.SideCall,
		Strategy:   entity.StrategyCoveredCall,
		Strike:     strike,
		Expiration: expiration,
		Quantity:   1,
		AvgPremium: 1.20,
		Status:     entity.PositionStatusOpen,
		Asset:      entity.Asset{ID: 1, AccountID: 1, Ticker: "PETR4"},
	}
}

// Concurrent evaluations of the same account must collapse into a single
// alert per (rule, position, day). The per-account lock serializes the
// match-then-create sequence; without it the dedup lookup races.
func TestMonitorServiceConcurrentEvaluationDedup(t *testing.T) {
	ctx := context.Background()
	rule := &entity.Rule{
		ID:               1,
		AccountID:        1,
		IsActive:         true,
		DteMin:           utils.ToPointer(3),
		DteMax:           utils.ToPointer(10),
		TargetOtmPctLow:  utils.ToPointer(0.02),
		TargetOtmPctHigh: utils.ToPointer(0.06),
	}
	position := openCallPosition(10, 64.50, time.Now().UTC().AddDate(0, 0, 7))
	fx := newMonitorFixture([]*entity.Rule{rule}, []*entity.OptionPosition{position})

	// OTM (64.50 - 62.00) / 62.00 = 0.0403, inside the band.
	assert.NoError(t, fx.quoteStore.Update(ctx, entity.Quote{
		Symbol:    "PETR4",
		Last:      62.00,
		Timestamp: time.Now().UTC(),
		Source:    "mt5",
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				fx.svc.EvaluateAccount(ctx, 1)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, fx.alertRepo.alerts, 1)
	alert := fx.alertRepo.alerts[0]
	assert.Equal(t, entity.AlertStatusPending, alert.Status)
	assert.Equal(t, entity.AlertReasonRollTrigger, alert.Reason)
	assert.Equal(t, position.ID, *alert.PositionID)
	assert.Len(t, fx.enqueuer.enqueued, 1)
}

// A profit-take alert raised by a premium threshold rule must expire once the
// premium moves back above the threshold.
func TestMonitorServiceExpiresStaleProfitTakeAlert(t *testing.T) {
	ctx := context.Background()
	rule := &entity.Rule{
		ID:                    1,
		AccountID:             1,
		IsActive:              true,
		DteMin:                utils.ToPointer(1),
		DteMax:                utils.ToPointer(30),
		PremiumCloseThreshold: utils.ToPointer(0.50),
	}
	position := openCallPosition(10, 64.50, time.Now().UTC().AddDate(0, 0, 14))
	fx := newMonitorFixture([]*entity.Rule{rule}, []*entity.OptionPosition{position})

	contract := position.ContractSymbol("PETR4")
	assert.NoError(t, fx.quoteStore.Update(ctx, entity.Quote{
		Symbol:    contract,
		Last:      0.40,
		Timestamp: time.Now().UTC(),
		Source:    "mt5",
	}))

	fx.svc.EvaluateAccount(ctx, 1)
	assert.Len(t, fx.alertRepo.alerts, 1)
	assert.Equal(t, entity.AlertReasonProfitTake, fx.alertRepo.alerts[0].Reason)
	assert.Equal(t, entity.AlertStatusPending, fx.alertRepo.alerts[0].Status)

	// Premium recovers above the threshold, the condition no longer holds.
	assert.NoError(t, fx.quoteStore.Update(ctx, entity.Quote{
		Symbol:    contract,
		Last:      0.80,
		Timestamp: time.Now().UTC().Add(time.Second),
		Source:    "mt5",
	}))

	fx.svc.EvaluateAccount(ctx, 1)
	assert.Len(t, fx.alertRepo.alerts, 1)
	assert.Equal(t, entity.AlertStatusExpired, fx.alertRepo.alerts[0].Status)
}
