package service

import (
	"context"
	"testing"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type fakePositionRepository struct {
	positions map[uint]*entity.OptionPosition
	nextID    uint
}

func newFakePositionRepository() *fakePositionRepository {
	return &fakePositionRepository{positions: map[uint]*entity.OptionPosition{}, nextID: 1}
}

func (r *fakePositionRepository) Create(_ context.Context, position *entity.OptionPosition) error {
	position.ID = r.nextID
	r.nextID++
	r.positions[position.ID] = position
	return nil
}

func (r *fakePositionRepository) FindByID(_ context.Context, id uint) (*entity.OptionPosition, error) {
	position, ok := r.positions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *position
	return &clone, nil
}

func (r *fakePositionRepository) Find(_ context.Context, _ dto.GetPositionsParam) ([]entity.OptionPosition, error) {
	var out []entity.OptionPosition
	for _, p := range r.positions {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePositionRepository) FindOpen(_ context.Context, accountID uint, _ *uint) ([]entity.OptionPosition, error) {
	var out []entity.OptionPosition
	for _, p := range r.positions {
		if p.AccountID == accountID && p.IsOpen() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePositionRepository) Update(_ context.Context, position *entity.OptionPosition) error {
	if _, ok := r.positions[position.ID]; !ok {
		return common.ErrNotFound
	}
	clone := *position
	r.positions[position.ID] = &clone
	return nil
}

func (r *fakePositionRepository) Roll(ctx context.Context, current *entity.OptionPosition, replacement *entity.OptionPosition) error {
	if err := r.Create(ctx, replacement); err != nil {
		return err
	}
	current.RolledToID = &replacement.ID
	return r.Update(ctx, current)
}

type fakeAccountRepository struct {
	accounts map[uint]*entity.Account
}

func (r *fakeAccountRepository) Create(_ context.Context, account *entity.Account) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id uint) (*entity.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return account, nil
}

func (r *fakeAccountRepository) FindAll(_ context.Context) ([]entity.Account, error) {
	var out []entity.Account
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

type fakeAssetRepository struct {
	assets map[uint]*entity.Asset
}

func (r *fakeAssetRepository) Create(_ context.Context, asset *entity.Asset) error {
	r.assets[asset.ID] = asset
	return nil
}

func (r *fakeAssetRepository) FindByID(_ context.Context, id uint) (*entity.Asset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return asset, nil
}

func (r *fakeAssetRepository) FindAll(_ context.Context, _ *uint) ([]entity.Asset, error) {
	var out []entity.Asset
	for _, a := range r.assets {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssetRepository) FindByTicker(_ context.Context, ticker string) ([]entity.Asset, error) {
	var out []entity.Asset
	for _, a := range r.assets {
		if a.Ticker == ticker {
			out = append(out, *a)
		}
	}
	return out, nil
}

func newOptionServiceFixture() (OptionService, *fakePositionRepository, *fakeAlertRepository) {
	positionRepo := newFakePositionRepository()
	alertRepo := newFakeAlertRepository()
	accountRepo := &fakeAccountRepository{accounts: map[uint]*entity.Account{
		1: {ID: 1, Name: "main"},
	}}
	assetRepo := &fakeAssetRepository{assets: map[uint]*entity.Asset{
		1: {ID: 1, AccountID: 1, Ticker: "PETR4"},
		2: {ID: 2, AccountID: 2, Ticker: "VALE3"},
	}}
	alertSvc := NewAlertService(alertRepo, &fakeEnqueuer{}, logger.NewNop())
	svc := NewOptionService(positionRepo, assetRepo, accountRepo, alertSvc, logger.NewNop())
	return svc, positionRepo, alertRepo
}

func validOpenRequest() *dto.CreatePositionRequest {
	return &dto.CreatePositionRequest{
		AccountID:  1,
		AssetID:    1,
		Side:       entity.SideCall,
		Strategy:   entity.StrategyCoveredCall,
		Strike:     64.50,
		Expiration: time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02"),
		Quantity:   1,
		AvgPremium: 1.20,
	}
}

func TestOptionServiceOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("opens with defaults", func(t *testing.T) {
		svc, _, _ := newOptionServiceFixture()
		req := validOpenRequest()
		req.Strategy = ""

		position, err := svc.Open(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, entity.PositionStatusOpen, position.Status)
		assert.Equal(t, entity.StrategyOther, position.Strategy)
		assert.NotZero(t, position.ID)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _, _ := newOptionServiceFixture()

		testCases := []struct {
			name   string
			mutate func(req *dto.CreatePositionRequest)
			target error
		}{
			{name: "bad side", mutate: func(r *dto.CreatePositionRequest) { r.Side = "STRADDLE" }, target: common.ErrValidation},
			{name: "zero strike", mutate: func(r *dto.CreatePositionRequest) { r.Strike = 0 }, target: common.ErrValidation},
			{name: "negative quantity", mutate: func(r *dto.CreatePositionRequest) { r.Quantity = -1 }, target: common.ErrValidation},
			{name: "negative premium", mutate: func(r *dto.CreatePositionRequest) { r.AvgPremium = -0.5 }, target: common.ErrValidation},
			{name: "malformed expiration", mutate: func(r *dto.CreatePositionRequest) { r.Expiration = "19/09/2025" }, target: common.ErrValidation},
			{name: "past expiration", mutate: func(r *dto.CreatePositionRequest) { r.Expiration = "2020-01-17" }, target: common.ErrValidation},
			{name: "unknown account", mutate: func(r *dto.CreatePositionRequest) { r.AccountID = 99 }, target: common.ErrNotFound},
			{name: "unknown asset", mutate: func(r *dto.CreatePositionRequest) { r.AssetID = 99 }, target: common.ErrNotFound},
			{name: "asset of another account", mutate: func(r *dto.CreatePositionRequest) { r.AssetID = 2 }, target: common.ErrValidation},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := validOpenRequest()
				tc.mutate(req)
				_, err := svc.Open(ctx, req)
				assert.ErrorIs(t, err, tc.target)
			})
		}
	})
}

func TestOptionServiceClose(t *testing.T) {
	ctx := context.Background()
	svc, _, alertRepo := newOptionServiceFixture()

	position, err := svc.Open(ctx, validOpenRequest())
	assert.NoError(t, err)

	alertRepo.alerts = append(alertRepo.alerts, &entity.Alert{
		ID:         1,
		AccountID:  1,
		PositionID: &position.ID,
		Reason:     entity.AlertReasonRollTrigger,
		Status:     entity.AlertStatusPending,
	})

	closed, err := svc.Close(ctx, position.ID, 0.35)
	assert.NoError(t, err)
	assert.Equal(t, entity.PositionStatusClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, 0.35, *closed.ClosingPremium)
	assert.Equal(t, entity.AlertStatusExpired, alertRepo.alerts[0].Status)

	_, err = svc.Close(ctx, position.ID, 0.35)
	assert.ErrorIs(t, err, common.ErrAlreadyClosed)

	_, err = svc.Close(ctx, 999, 0.35)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOptionServiceRoll(t *testing.T) {
	ctx := context.Background()
	svc, positionRepo, _ := newOptionServiceFixture()

	position, err := svc.Open(ctx, validOpenRequest())
	assert.NoError(t, err)

	t.Run("expiration must move forward", func(t *testing.T) {
		_, err := svc.Roll(ctx, position.ID, &dto.RollPositionRequest{
			ClosingPremium: 0.40,
			Strike:         66.00,
			Expiration:     position.Expiration.Format("2006-01-02"),
			Premium:        1.10,
		})
		assert.ErrorIs(t, err, common.ErrInvalidCandidate)
	})

	t.Run("rolls into a linked replacement", func(t *testing.T) {
		replacement, err := svc.Roll(ctx, position.ID, &dto.RollPositionRequest{
			ClosingPremium: 0.40,
			Strike:         66.00,
			Expiration:     position.Expiration.AddDate(0, 1, 0).Format("2006-01-02"),
			Premium:        1.50,
			Notes:          "rolled out and up",
		})
		assert.NoError(t, err)
		assert.Equal(t, entity.PositionStatusOpen, replacement.Status)
		assert.Equal(t, 66.00, replacement.Strike)
		assert.Equal(t, position.Quantity, replacement.Quantity)
		// Net credit (1.50 - 1.20) * 1 contract * 100 shares.
		assert.Contains(t, replacement.Notes, "net credit 30.00")
		assert.Contains(t, replacement.Notes, "rolled out and up")

		old, err := svc.Get(ctx, position.ID)
		assert.NoError(t, err)
		assert.Equal(t, entity.PositionStatusClosed, old.Status)
		assert.NotNil(t, old.RolledToID)
		assert.Equal(t, replacement.ID, *old.RolledToID)
		assert.Len(t, positionRepo.positions, 2)
	})

	t.Run("closed position cannot roll", func(t *testing.T) {
		_, err := svc.Roll(ctx, position.ID, &dto.RollPositionRequest{
			Strike:     66.00,
			Expiration: position.Expiration.AddDate(0, 2, 0).Format("2006-01-02"),
			Premium:    1.10,
		})
		assert.ErrorIs(t, err, common.ErrAlreadyClosed)
	})
}
