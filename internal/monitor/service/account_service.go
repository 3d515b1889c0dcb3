package service

import (
	"context"
	"fmt"
	"strings"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
)

// AccountService manages brokerage accounts.
type AccountService interface {
	Create(ctx context.Context, req *dto.CreateAccountRequest) (*entity.Account, error)
	Get(ctx context.Context, id uint) (*entity.Account, error)
	List(ctx context.Context) ([]entity.Account, error)
}

// NewAccountService creates an account service.
func NewAccountService(accountRepo repository.AccountRepository, log *logger.Logger) AccountService {
	return &accountService{accountRepo: accountRepo, logger: log}
}

type accountService struct {
	accountRepo repository.AccountRepository
	logger      *logger.Logger
}

func (s *accountService) Create(ctx context.Context, req *dto.CreateAccountRequest) (*entity.Account, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("account name is required: %w", common.ErrValidation)
	}

	account := &entity.Account{
		Name:          req.Name,
		Broker:        req.Broker,
		AccountNumber: req.AccountNumber,
		Phone:         req.Phone,
		Email:         req.Email,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("Account created", logger.UintField("account_id", account.ID))
	return account, nil
}

func (s *accountService) Get(ctx context.Context, id uint) (*entity.Account, error) {
	return s.accountRepo.FindByID(ctx, id)
}

func (s *accountService) List(ctx context.Context) ([]entity.Account, error) {
	return s.accountRepo.FindAll(ctx)
}
