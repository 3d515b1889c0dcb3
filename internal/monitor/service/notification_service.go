package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"gorm.io/datatypes"
)

// NotificationService handles manual notification sends. The message bypasses
// the rule engine but still flows through the dispatch queue, so delivery and
// audit behave exactly like rule-raised alerts.
type NotificationService interface {
	Send(ctx context.Context, req *dto.SendNotificationRequest) (*entity.Alert, error)
	SendTest(ctx context.Context, req *dto.SendNotificationRequest) (*entity.Alert, error)
}

// NewNotificationService creates a notification service.
func NewNotificationService(accountRepo repository.AccountRepository, alertService AlertService, log *logger.Logger) NotificationService {
	return &notificationService{
		accountRepo:  accountRepo,
		alertService: alertService,
		logger:       log,
	}
}

type notificationService struct {
	accountRepo  repository.AccountRepository
	alertService AlertService
	logger       *logger.Logger
}

func (s *notificationService) Send(ctx context.Context, req *dto.SendNotificationRequest) (*entity.Alert, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message is required: %w", common.ErrValidation)
	}
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{}
	if len(req.Channels) > 0 {
		payload["channels"] = req.Channels
	}
	if req.Phone != "" {
		payload["phone"] = req.Phone
	}
	if req.Email != "" {
		payload["email"] = req.Email
	}

	alert := &entity.Alert{
		AccountID:   req.AccountID,
		Reason:      entity.AlertReasonManual,
		Message:     req.Message,
		TriggeredAt: time.Now().UTC(),
	}
	if len(payload) > 0 {
		if raw, err := json.Marshal(payload); err == nil {
			alert.Payload = datatypes.JSON(raw)
		}
	}

	if _, _, err := s.alertService.CreateIfAbsent(ctx, alert); err != nil {
		return nil, err
	}
	s.logger.Info("Manual notification queued",
		logger.UintField("alert_id", alert.ID),
		logger.UintField("account_id", req.AccountID))
	return alert, nil
}

// SendTest sends a canned message to verify channel configuration end to end.
func (s *notificationService) SendTest(ctx context.Context, req *dto.SendNotificationRequest) (*entity.Alert, error) {
	test := *req
	if strings.TrimSpace(test.Message) == "" {
		test.Message = "Test notification from options monitor"
	}
	return s.Send(ctx, &test)
}
