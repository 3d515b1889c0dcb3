package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/notifier/channel"
	"golang-options-monitor/internal/notifier/config"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/utils"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts map[uint]*entity.Alert
}

func (r *fakeAlertRepo) FindByID(_ context.Context, id uint) (*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.alerts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *alert
	return &clone, nil
}

func (r *fakeAlertRepo) FindPendingOlderThan(_ context.Context, _ time.Duration, _ int) ([]entity.Alert, error) {
	return nil, nil
}

func (r *fakeAlertRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	alert, ok := r.alerts[id]
	if !ok {
		return common.ErrNotFound
	}
	alert.Status = status
	return nil
}

func (r *fakeAlertRepo) status(id uint) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerts[id].Status
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []entity.NotificationAttempt
}

func (r *fakeAttemptRepo) Create(_ context.Context, attempt *entity.NotificationAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) forChannel(name string) []entity.NotificationAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.NotificationAttempt
	for _, a := range r.attempts {
		if a.Channel == name {
			out = append(out, a)
		}
	}
	return out
}

type fakeAccountRepo struct {
	account *entity.Account
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uint) (*entity.Account, error) {
	if r.account == nil || r.account.ID != id {
		return nil, common.ErrNotFound
	}
	return r.account, nil
}

type fakeRuleRepo struct {
	rule *entity.Rule
}

func (r *fakeRuleRepo) FindByID(_ context.Context, id uint) (*entity.Rule, error) {
	if r.rule == nil || r.rule.ID != id {
		return nil, common.ErrNotFound
	}
	return r.rule, nil
}

// fakeChannel fails its first failUntil sends, then succeeds.
type fakeChannel struct {
	name      string
	failUntil int

	mu    sync.Mutex
	sends int
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(_ context.Context, _ channel.Target, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if c.sends <= c.failUntil {
		return "", errors.New("provider unavailable")
	}
	return "msg-123", nil
}

func (c *fakeChannel) sendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

func dispatcherFixture(alert *entity.Alert, rule *entity.Rule, channels ...channel.Channel) (DispatcherService, *fakeAlertRepo, *fakeAttemptRepo) {
	cfg := &config.Config{}
	cfg.Notifier.MaxConcurrentDispatches = 5
	cfg.Notifier.DeliveryAttempts = 3
	cfg.Notifier.RetryBackoff = time.Millisecond
	cfg.Notifier.DefaultChannels = []string{channel.NameTelegram}

	alertRepo := &fakeAlertRepo{alerts: map[uint]*entity.Alert{alert.ID: alert}}
	attemptRepo := &fakeAttemptRepo{}
	accountRepo := &fakeAccountRepo{account: &entity.Account{
		ID: alert.AccountID, Name: "main", Phone: "+5511999990000", Email: "trader@example.com",
	}}
	ruleRepo := &fakeRuleRepo{rule: rule}

	svc := NewDispatcherService(cfg, alertRepo, attemptRepo, accountRepo, ruleRepo, channels, logger.NewNop())
	return svc, alertRepo, attemptRepo
}

func pendingAlert(id uint) *entity.Alert {
	return &entity.Alert{
		ID:          id,
		AccountID:   1,
		Reason:      entity.AlertReasonRollTrigger,
		Message:     "roll window open",
		Status:      entity.AlertStatusPending,
		TriggeredAt: time.Date(2025, 8, 20, 14, 30, 0, 0, time.UTC),
	}
}

func TestDispatcherDeliversOnDefaultChannel(t *testing.T) {
	ctx := context.Background()
	tg := &fakeChannel{name: channel.NameTelegram}
	svc, alertRepo, attemptRepo := dispatcherFixture(pendingAlert(1), nil, tg)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	assert.Equal(t, entity.AlertStatusSent, alertRepo.status(1))

	attempts := attemptRepo.forChannel(channel.NameTelegram)
	assert.Len(t, attempts, 1)
	assert.Equal(t, entity.AttemptStatusSuccess, attempts[0].Status)
	assert.Equal(t, "msg-123", attempts[0].ProviderMsgID)
	assert.Equal(t, "+5511999990000", attempts[0].Target)
	assert.Equal(t, 1, attempts[0].AttemptNumber)
}

func TestDispatcherAnyChannelSucceeding(t *testing.T) {
	ctx := context.Background()
	alert := pendingAlert(1)
	alert.Payload = datatypes.JSON(`{"channels":["telegram","whatsapp"]}`)

	tg := &fakeChannel{name: channel.NameTelegram, failUntil: 99}
	wa := &fakeChannel{name: channel.NameWhatsApp}
	svc, alertRepo, attemptRepo := dispatcherFixture(alert, nil, tg, wa)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	assert.Equal(t, entity.AlertStatusSent, alertRepo.status(1))

	// The failing channel exhausts its retry budget and is recorded.
	tgAttempts := attemptRepo.forChannel(channel.NameTelegram)
	assert.Len(t, tgAttempts, 3)
	assert.Equal(t, entity.AttemptStatusRetrying, tgAttempts[0].Status)
	assert.Equal(t, entity.AttemptStatusRetrying, tgAttempts[1].Status)
	assert.Equal(t, entity.AttemptStatusFailed, tgAttempts[2].Status)
	assert.NotEmpty(t, tgAttempts[2].Error)

	waAttempts := attemptRepo.forChannel(channel.NameWhatsApp)
	assert.Len(t, waAttempts, 1)
	assert.Equal(t, entity.AttemptStatusSuccess, waAttempts[0].Status)
}

func TestDispatcherAllChannelsFailing(t *testing.T) {
	ctx := context.Background()
	alert := pendingAlert(1)
	alert.Payload = datatypes.JSON(`{"channels":["telegram","whatsapp"]}`)

	tg := &fakeChannel{name: channel.NameTelegram, failUntil: 99}
	wa := &fakeChannel{name: channel.NameWhatsApp, failUntil: 99}
	svc, alertRepo, attemptRepo := dispatcherFixture(alert, nil, tg, wa)

	err := svc.Dispatch(ctx, 1)
	assert.Error(t, err)
	// The alert stays PENDING so the stream retry or sweep can pick it up.
	assert.Equal(t, entity.AlertStatusPending, alertRepo.status(1))
	assert.Len(t, attemptRepo.attempts, 6)
}

func TestDispatcherRecoversOnRetry(t *testing.T) {
	ctx := context.Background()
	tg := &fakeChannel{name: channel.NameTelegram, failUntil: 1}
	svc, alertRepo, attemptRepo := dispatcherFixture(pendingAlert(1), nil, tg)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	assert.Equal(t, entity.AlertStatusSent, alertRepo.status(1))

	attempts := attemptRepo.forChannel(channel.NameTelegram)
	assert.Len(t, attempts, 2)
	assert.Equal(t, entity.AttemptStatusRetrying, attempts[0].Status)
	assert.Equal(t, entity.AttemptStatusSuccess, attempts[1].Status)
}

func TestDispatcherSkipsNonPendingAlert(t *testing.T) {
	ctx := context.Background()
	alert := pendingAlert(1)
	alert.Status = entity.AlertStatusSent

	tg := &fakeChannel{name: channel.NameTelegram}
	svc, _, attemptRepo := dispatcherFixture(alert, nil, tg)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	assert.Zero(t, tg.sendCount())
	assert.Empty(t, attemptRepo.attempts)
}

func TestDispatcherRuleChannelsTakePrecedence(t *testing.T) {
	ctx := context.Background()
	alert := pendingAlert(1)
	alert.RuleID = utils.ToPointer(uint(7))
	alert.Payload = datatypes.JSON(`{"channels":["telegram"]}`)

	rule := &entity.Rule{ID: 7, AccountID: 1, NotifyChannels: datatypes.JSON(`["whatsapp"]`)}

	tg := &fakeChannel{name: channel.NameTelegram}
	wa := &fakeChannel{name: channel.NameWhatsApp}
	svc, _, _ := dispatcherFixture(alert, rule, tg, wa)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	assert.Zero(t, tg.sendCount())
	assert.Equal(t, 1, wa.sendCount())
}

func TestDispatcherEmailTargetLabel(t *testing.T) {
	ctx := context.Background()
	alert := pendingAlert(1)
	alert.Payload = datatypes.JSON(`{"channels":["email"]}`)

	email := &fakeChannel{name: channel.NameEmail}
	svc, _, attemptRepo := dispatcherFixture(alert, nil, email)

	assert.NoError(t, svc.Dispatch(ctx, 1))
	attempts := attemptRepo.forChannel(channel.NameEmail)
	assert.Len(t, attempts, 1)
	assert.Equal(t, "trader@example.com", attempts[0].Target)
}

func TestDispatcherUnknownAlert(t *testing.T) {
	tg := &fakeChannel{name: channel.NameTelegram}
	svc, _, _ := dispatcherFixture(pendingAlert(1), nil, tg)

	err := svc.Dispatch(context.Background(), 99)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
