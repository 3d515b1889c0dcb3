package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	redisPkg "golang-options-monitor/pkg/redis"
	"golang-options-monitor/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// AlertEnqueuer hands created alerts to the notification pipeline.
type AlertEnqueuer interface {
	Enqueue(ctx context.Context, alertID uint) error
}

// AlertService manages the alert lifecycle: idempotent creation, state
// transitions and the close cascade.
type AlertService interface {
	// CreateIfAbsent creates the alert unless a PENDING/SENT alert already
	// exists for the same (rule, position, reason, calendar day). Re-matching
	// within the day is a no-op against the existing alert, reported as
	// created=false with a nil error.
	CreateIfAbsent(ctx context.Context, alert *entity.Alert) (bool, *entity.Alert, error)
	MarkSent(ctx context.Context, alertID uint) error
	Acknowledge(ctx context.Context, alertID uint) error
	// ExpireForPosition transitions every non-terminal alert of the position
	// to EXPIRED. Called on position close.
	ExpireForPosition(ctx context.Context, positionID uint) (int, error)
	// ExpireStale expires the rule's open alerts for a position once the rule
	// stops matching on a later evaluation, whatever their reason or trigger
	// day.
	ExpireStale(ctx context.Context, ruleID uint, positionID uint) error
	ListByStatus(ctx context.Context, status string, limit int) ([]entity.Alert, error)
	History(ctx context.Context, accountID *uint, limit int) ([]entity.Alert, error)
	Get(ctx context.Context, id uint) (*entity.Alert, error)
}

// NewAlertService creates an alert service.
func NewAlertService(alertRepo repository.AlertRepository, enqueuer AlertEnqueuer, log *logger.Logger) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		enqueuer:  enqueuer,
		logger:    log,
	}
}

type alertService struct {
	alertRepo repository.AlertRepository
	enqueuer  AlertEnqueuer
	logger    *logger.Logger
}

func (s *alertService) CreateIfAbsent(ctx context.Context, alert *entity.Alert) (bool, *entity.Alert, error) {
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now().UTC()
	}
	alert.TriggerDay = utils.TruncateToDate(alert.TriggeredAt.UTC())
	if alert.Status == "" {
		alert.Status = entity.AlertStatusPending
	}

	// Manual alerts carry no position and bypass the per-day dedup.
	if alert.PositionID != nil {
		existing, err := s.alertRepo.FindOpenForDay(ctx, alert.RuleID, *alert.PositionID, alert.Reason, alert.TriggerDay)
		if err == nil {
			// Same-day duplicate, treated as success.
			s.logger.DebugContext(ctx, "Alert already open for today, skipping",
				logger.UintField("position_id", *alert.PositionID),
				logger.StringField("reason", alert.Reason))
			return false, existing, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return false, nil, err
		}
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return false, nil, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.Enqueue(ctx, alert.ID); err != nil {
			// The alert stays PENDING; the notifier's retry sweep picks it up.
			s.logger.Error("Failed to enqueue alert for dispatch",
				logger.UintField("alert_id", alert.ID), logger.ErrorField(err))
		}
	}

	s.logger.Info("Alert created",
		logger.UintField("alert_id", alert.ID),
		logger.Field("position_id", alert.PositionID),
		logger.StringField("reason", alert.Reason))
	return true, alert, nil
}

func (s *alertService) MarkSent(ctx context.Context, alertID uint) error {
	return s.alertRepo.UpdateStatus(ctx, alertID, entity.AlertStatusSent)
}

func (s *alertService) Acknowledge(ctx context.Context, alertID uint) error {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.IsTerminal() {
		return nil
	}
	return s.alertRepo.UpdateStatus(ctx, alertID, entity.AlertStatusAcknowledged)
}

func (s *alertService) ExpireForPosition(ctx context.Context, positionID uint) (int, error) {
	alerts, err := s.alertRepo.FindNonTerminalForPosition(ctx, positionID)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, alert := range alerts {
		if err := s.alertRepo.UpdateStatus(ctx, alert.ID, entity.AlertStatusExpired); err != nil {
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("Expired alerts for closed position",
			logger.UintField("position_id", positionID),
			logger.IntField("count", expired))
	}
	return expired, nil
}

func (s *alertService) ExpireStale(ctx context.Context, ruleID uint, positionID uint) error {
	alerts, err := s.alertRepo.FindNonTerminalForRule(ctx, ruleID, positionID)
	if err != nil {
		return err
	}
	for _, alert := range alerts {
		if err := s.alertRepo.UpdateStatus(ctx, alert.ID, entity.AlertStatusExpired); err != nil {
			return err
		}
		s.logger.Info("Expired stale alert",
			logger.UintField("alert_id", alert.ID),
			logger.StringField("reason", alert.Reason))
	}
	return nil
}

func (s *alertService) ListByStatus(ctx context.Context, status string, limit int) ([]entity.Alert, error) {
	return s.alertRepo.FindByStatus(ctx, status, limit)
}

func (s *alertService) History(ctx context.Context, accountID *uint, limit int) ([]entity.Alert, error) {
	return s.alertRepo.FindHistory(ctx, accountID, limit)
}

func (s *alertService) Get(ctx context.Context, id uint) (*entity.Alert, error) {
	return s.alertRepo.FindByID(ctx, id)
}

// NewRedisAlertEnqueuer publishes alert ids to the dispatch stream consumed
// by the notifier service.
func NewRedisAlertEnqueuer(client *redisPkg.Client, streamMaxLen int64) AlertEnqueuer {
	return &redisAlertEnqueuer{client: client, streamMaxLen: streamMaxLen}
}

type redisAlertEnqueuer struct {
	client       *redisPkg.Client
	streamMaxLen int64
}

func (e *redisAlertEnqueuer) Enqueue(ctx context.Context, alertID uint) error {
	return e.client.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamAlertDispatch,
		Values: map[string]interface{}{"alert_id": strconv.FormatUint(uint64(alertID), 10)},
		MaxLen: e.streamMaxLen,
	}).Err()
}
