package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/notifier/channel"
	"golang-options-monitor/internal/notifier/config"
	"golang-options-monitor/internal/notifier/repository"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/telegram"
)

// DispatcherService delivers one alert across its configured channels.
// Channels run concurrently; each channel retries independently; the alert is
// marked SENT as soon as any channel delivers.
type DispatcherService interface {
	Dispatch(ctx context.Context, alertID uint) error
}

// NewDispatcherService creates a dispatcher.
func NewDispatcherService(
	cfg *config.Config,
	alertRepo repository.AlertRepository,
	attemptRepo repository.NotificationAttemptRepository,
	accountRepo repository.AccountRepository,
	ruleRepo repository.RuleRepository,
	channels []channel.Channel,
	log *logger.Logger,
) DispatcherService {
	channelMap := make(map[string]channel.Channel, len(channels))
	for _, c := range channels {
		channelMap[c.Name()] = c
	}
	return &dispatcherService{
		cfg:         cfg,
		alertRepo:   alertRepo,
		attemptRepo: attemptRepo,
		accountRepo: accountRepo,
		ruleRepo:    ruleRepo,
		channels:    channelMap,
		logger:      log,
		semaphore:   make(chan struct{}, cfg.Notifier.MaxConcurrentDispatches),
	}
}

type dispatcherService struct {
	cfg         *config.Config
	alertRepo   repository.AlertRepository
	attemptRepo repository.NotificationAttemptRepository
	accountRepo repository.AccountRepository
	ruleRepo    repository.RuleRepository
	channels    map[string]channel.Channel
	logger      *logger.Logger

	// Bounds concurrent channel sends across all in-flight dispatches.
	semaphore chan struct{}
}

type alertPayload struct {
	Channels    []string             `json:"channels"`
	Phone       string               `json:"phone"`
	Email       string               `json:"email"`
	Suggestions []dto.RollSuggestion `json:"suggestions"`
}

// Dispatch delivers the alert. Already-sent and terminal alerts are no-ops,
// which makes redelivery of a stream message safe.
func (s *dispatcherService) Dispatch(ctx context.Context, alertID uint) error {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.Status != entity.AlertStatusPending {
		s.logger.DebugContext(ctx, "Alert not pending, skipping dispatch",
			logger.UintField("alert_id", alertID),
			logger.StringField("status", alert.Status))
		return nil
	}

	var payload alertPayload
	if len(alert.Payload) > 0 {
		if err := json.Unmarshal(alert.Payload, &payload); err != nil {
			s.logger.Warn("Failed to decode alert payload",
				logger.UintField("alert_id", alertID), logger.ErrorField(err))
		}
	}

	target, err := s.resolveTarget(ctx, alert, &payload)
	if err != nil {
		return err
	}

	names := s.resolveChannels(ctx, alert, &payload)
	message := telegram.FormatAlertMessage(alert.Reason, alert.Message, alert.TriggeredAt, payload.Suggestions)

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := false

	for _, name := range names {
		ch, ok := s.channels[name]
		if !ok {
			s.logger.Warn("Unknown notification channel",
				logger.UintField("alert_id", alertID),
				logger.StringField("channel", name))
			continue
		}

		wg.Add(1)
		go func(ch channel.Channel) {
			defer wg.Done()
			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			if s.deliverWithRetries(ctx, alert, ch, target, message) {
				mu.Lock()
				delivered = true
				mu.Unlock()
			}
		}(ch)
	}
	wg.Wait()

	if !delivered {
		return fmt.Errorf("alert %d: all channels failed", alertID)
	}

	if err := s.alertRepo.UpdateStatus(ctx, alert.ID, entity.AlertStatusSent); err != nil {
		return err
	}
	s.logger.Info("Alert dispatched", logger.UintField("alert_id", alert.ID))
	return nil
}

// deliverWithRetries attempts delivery on one channel with exponential
// backoff. Every attempt is recorded: RETRYING while attempts remain, FAILED
// on the last one, SUCCESS on delivery.
func (s *dispatcherService) deliverWithRetries(ctx context.Context, alert *entity.Alert, ch channel.Channel, target channel.Target, message string) bool {
	maxAttempts := s.cfg.Notifier.DeliveryAttempts
	backoff := s.cfg.Notifier.RetryBackoff

	targetLabel := target.Phone
	if ch.Name() == channel.NameEmail {
		targetLabel = target.Email
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		providerMsgID, err := ch.Send(ctx, target, message)

		record := &entity.NotificationAttempt{
			AlertID:       alert.ID,
			Channel:       ch.Name(),
			AttemptNumber: attempt,
			Target:        targetLabel,
			Timestamp:     time.Now().UTC(),
		}
		if err == nil {
			record.Status = entity.AttemptStatusSuccess
			record.ProviderMsgID = providerMsgID
		} else if attempt < maxAttempts {
			record.Status = entity.AttemptStatusRetrying
			record.Error = err.Error()
		} else {
			record.Status = entity.AttemptStatusFailed
			record.Error = err.Error()
		}
		if createErr := s.attemptRepo.Create(ctx, record); createErr != nil {
			s.logger.Error("Failed to record notification attempt",
				logger.UintField("alert_id", alert.ID), logger.ErrorField(createErr))
		}

		if err == nil {
			return true
		}

		s.logger.Warn("Channel delivery failed",
			logger.UintField("alert_id", alert.ID),
			logger.StringField("channel", ch.Name()),
			logger.IntField("attempt", attempt),
			logger.ErrorField(err))

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(backoff * time.Duration(1<<(attempt-1))):
			}
		}
	}
	return false
}

func (s *dispatcherService) resolveTarget(ctx context.Context, alert *entity.Alert, payload *alertPayload) (channel.Target, error) {
	account, err := s.accountRepo.FindByID(ctx, alert.AccountID)
	if err != nil {
		return channel.Target{}, err
	}
	target := channel.Target{Phone: account.Phone, Email: account.Email}
	if payload.Phone != "" {
		target.Phone = payload.Phone
	}
	if payload.Email != "" {
		target.Email = payload.Email
	}
	return target, nil
}

// resolveChannels prefers the originating rule's channel list, then the
// payload's, then the configured default.
func (s *dispatcherService) resolveChannels(ctx context.Context, alert *entity.Alert, payload *alertPayload) []string {
	if alert.RuleID != nil {
		if rule, err := s.ruleRepo.FindByID(ctx, *alert.RuleID); err == nil {
			if channels := rule.Channels(); len(channels) > 0 {
				return channels
			}
		} else {
			s.logger.Warn("Failed to load rule for channel resolution",
				logger.UintField("alert_id", alert.ID), logger.ErrorField(err))
		}
	}
	if len(payload.Channels) > 0 {
		return payload.Channels
	}
	return s.cfg.Notifier.DefaultChannels
}
