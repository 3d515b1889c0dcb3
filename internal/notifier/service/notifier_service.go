package service

import (
	"context"
	"strconv"
	"time"

	"golang-options-monitor/internal/notifier/config"
	"golang-options-monitor/internal/notifier/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// NotifierService consumes the alert dispatch stream and feeds the
// dispatcher. Unacknowledged messages are reclaimed and retried; alerts whose
// stream entry was lost entirely are caught by the pending sweep.
type NotifierService interface {
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	SweepPending(ctx context.Context)
}

// NewNotifierService creates a notifier service.
func NewNotifierService(
	cfg *config.Config,
	redisClient *redis.Client,
	alertRepo repository.AlertRepository,
	dispatcher DispatcherService,
	log *logger.Logger,
) NotifierService {
	return &notifierService{
		cfg:         cfg,
		redisClient: redisClient,
		alertRepo:   alertRepo,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

type notifierService struct {
	cfg         *config.Config
	redisClient *redis.Client
	alertRepo   repository.AlertRepository
	dispatcher  DispatcherService
	logger      *logger.Logger
}

// ProcessTask dequeues and dispatches a single alert.
func (s *notifierService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamAlertDispatch, ">"}, // ">" means only new messages
		Count:    1,
		Block:    2 * time.Second, // Block briefly to allow graceful shutdown
	}).Result()
	if err != nil {
		// Context cancellation and redis.Nil are expected during shutdown or
		// idle periods.
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.logger.Error("Failed to read from dispatch stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	alertID, ok := parseAlertID(message.Values)
	if !ok {
		s.logger.Error("field 'alert_id' not found or invalid in stream message",
			logger.Field("message_id", message.ID))
		// Ack to prevent reprocessing of a malformed message.
		s.ackNDel(ctx, message.ID)
		return
	}

	if err := s.dispatcher.Dispatch(ctx, alertID); err != nil {
		// Leave the message pending; the retry claimer picks it up.
		s.logger.Error("Failed to dispatch alert",
			logger.UintField("alert_id", alertID),
			logger.Field("message_id", message.ID),
			logger.ErrorField(err))
		return
	}

	s.ackNDel(ctx, message.ID)
}

// ProcessRetries reclaims messages idle past the configured duration and
// re-dispatches them. A message over the retry budget is dropped from the
// stream; the attempt audit trail keeps the failure visible.
func (s *notifierService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamAlertDispatch,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Notifier.MaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.logger.Error("Failed to claim dispatch message on retry", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		return
	}

	msg := msgs[0]
	alertID, ok := parseAlertID(msg.Values)
	if !ok {
		s.logger.Error("field 'alert_id' not found or invalid in claimed message",
			logger.Field("message_id", msg.ID))
		s.ackNDel(ctx, msg.ID)
		return
	}

	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamAlertDispatch,
		Group:  common.RedisStreamGroup,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.logger.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}

	if len(pendingInfo) > 0 && pendingInfo[0].RetryCount >= int64(s.cfg.Notifier.MaxStreamRetry) {
		s.logger.Error("Dispatch retry count exceeded, dropping message",
			logger.UintField("alert_id", alertID),
			logger.Field("message_id", msg.ID),
			logger.IntField("retry_count", int(pendingInfo[0].RetryCount)))
		s.ackNDel(ctx, msg.ID)
		return
	}

	if err := s.dispatcher.Dispatch(ctx, alertID); err != nil {
		s.logger.Error("Retry dispatch failed",
			logger.UintField("alert_id", alertID), logger.ErrorField(err))
		return
	}
	s.ackNDel(ctx, msg.ID)
}

// SweepPending re-dispatches PENDING alerts that never made it onto the
// stream, typically because the enqueue failed after the alert row was
// written.
func (s *notifierService) SweepPending(ctx context.Context) {
	alerts, err := s.alertRepo.FindPendingOlderThan(ctx, s.cfg.Notifier.PendingSweepAge, 50)
	if err != nil {
		s.logger.Error("Failed to sweep pending alerts", logger.ErrorField(err))
		return
	}
	for _, alert := range alerts {
		if err := s.dispatcher.Dispatch(ctx, alert.ID); err != nil {
			s.logger.Error("Sweep dispatch failed",
				logger.UintField("alert_id", alert.ID), logger.ErrorField(err))
		}
	}
}

func (s *notifierService) ackNDel(ctx context.Context, messageID string) {
	if err := s.redisClient.XAck(ctx, common.RedisStreamAlertDispatch, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.logger.Error("Failed to acknowledge dispatch message", logger.ErrorField(err), logger.Field("message_id", messageID))
		return
	}
	if err := s.redisClient.XDel(ctx, common.RedisStreamAlertDispatch, messageID).Err(); err != nil {
		s.logger.Error("Failed to delete dispatch message", logger.ErrorField(err), logger.Field("message_id", messageID))
	}
}

func parseAlertID(values map[string]interface{}) (uint, bool) {
	raw, ok := values["alert_id"].(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
