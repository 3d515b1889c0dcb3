package service

import (
	"context"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/logger"
)

// BridgeService ingests quote batches and heartbeats pushed by terminal
// bridges. Ingestion is tolerant: malformed entries in a batch are dropped,
// the rest are accepted.
type BridgeService interface {
	Heartbeat(ctx context.Context, hb *dto.HeartbeatRequest)
	IngestQuotes(ctx context.Context, req *dto.BridgeQuotesRequest) int
	Status(ctx context.Context) map[string]dto.HeartbeatRequest
}

// NewBridgeService creates a bridge service.
func NewBridgeService(quoteStore repository.QuoteStore, heartbeats repository.HeartbeatStore, log *logger.Logger) BridgeService {
	return &bridgeService{
		quoteStore: quoteStore,
		heartbeats: heartbeats,
		logger:     log,
	}
}

type bridgeService struct {
	quoteStore repository.QuoteStore
	heartbeats repository.HeartbeatStore
	logger     *logger.Logger
}

func (s *bridgeService) Heartbeat(ctx context.Context, hb *dto.HeartbeatRequest) {
	s.heartbeats.Upsert(*hb)
	s.logger.DebugContext(ctx, "Bridge heartbeat",
		logger.StringField("terminal_id", hb.TerminalID),
		logger.StringField("account_number", hb.AccountNumber))
}

func (s *bridgeService) IngestQuotes(ctx context.Context, req *dto.BridgeQuotesRequest) int {
	source := req.TerminalID
	if source == "" {
		source = "bridge"
	}

	accepted := 0
	for _, q := range req.Quotes {
		timestamp := q.Timestamp
		if timestamp.IsZero() {
			timestamp = time.Now().UTC()
		}
		quote := entity.Quote{
			Symbol:    q.Symbol,
			Bid:       q.Bid,
			Ask:       q.Ask,
			Last:      q.Last,
			Volume:    q.Volume,
			OI:        q.OI,
			Delta:     q.Delta,
			Timestamp: timestamp,
			Source:    source,
		}
		if err := s.quoteStore.Update(ctx, quote); err != nil {
			s.logger.Warn("Dropping malformed bridge quote",
				logger.StringField("symbol", q.Symbol), logger.ErrorField(err))
			continue
		}
		accepted++
	}

	s.logger.DebugContext(ctx, "Bridge quote batch ingested",
		logger.StringField("terminal_id", req.TerminalID),
		logger.IntField("received", len(req.Quotes)),
		logger.IntField("accepted", accepted))
	return accepted
}

func (s *bridgeService) Status(_ context.Context) map[string]dto.HeartbeatRequest {
	return s.heartbeats.All()
}
