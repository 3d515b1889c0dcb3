package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	redisPkg "golang-options-monitor/pkg/redis"
)

// QuotePublisher announces accepted quote updates to subscribers.
type QuotePublisher interface {
	Publish(ctx context.Context, symbol string)
}

// QuoteStore holds the latest quote per (symbol, source) and exposes the
// freshest quote across sources. Writers never block each other beyond the
// map lock; last-writer-wins by quote timestamp.
type QuoteStore interface {
	Update(ctx context.Context, quote entity.Quote) error
	Latest(ctx context.Context, symbol string) (*entity.Quote, error)
	Symbols() []string
}

// NewQuoteStore creates an in-memory quote store. A zero horizon disables the
// staleness cutoff on reads. publisher may be nil.
func NewQuoteStore(publisher QuotePublisher, log *logger.Logger, horizon time.Duration) QuoteStore {
	return &quoteStore{
		quotes:    make(map[string]map[string]entity.Quote),
		publisher: publisher,
		logger:    log,
		horizon:   horizon,
	}
}

type quoteStore struct {
	mu        sync.RWMutex
	quotes    map[string]map[string]entity.Quote // symbol -> source -> quote
	publisher QuotePublisher
	logger    *logger.Logger
	horizon   time.Duration
}

// Update accepts a quote unless one with an equal or newer timestamp is
// already stored for the same (symbol, source). Stale quotes are logged and
// dropped, never surfaced to the caller as an error.
func (s *quoteStore) Update(ctx context.Context, quote entity.Quote) error {
	symbol := strings.ToUpper(strings.TrimSpace(quote.Symbol))
	if symbol == "" {
		return fmt.Errorf("empty symbol: %w", common.ErrValidation)
	}
	quote.Symbol = symbol

	s.mu.Lock()
	sources, ok := s.quotes[symbol]
	if !ok {
		sources = make(map[string]entity.Quote)
		s.quotes[symbol] = sources
	}
	if stored, ok := sources[quote.Source]; ok && !quote.Timestamp.After(stored.Timestamp) {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale quote",
			logger.StringField("symbol", symbol),
			logger.StringField("source", quote.Source),
			logger.Field("timestamp", quote.Timestamp))
		return nil
	}
	sources[quote.Source] = quote
	s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Publish(ctx, symbol)
	}
	return nil
}

// Latest returns the quote with the maximum timestamp across all sources for
// the symbol. Returns ErrNotFound when no quote exists or every stored quote
// is older than the staleness horizon.
func (s *quoteStore) Latest(_ context.Context, symbol string) (*entity.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.RLock()
	defer s.mu.RUnlock()

	sources, ok := s.quotes[symbol]
	if !ok || len(sources) == 0 {
		return nil, fmt.Errorf("quote %s: %w", symbol, common.ErrNotFound)
	}

	var best *entity.Quote
	for _, q := range sources {
		q := q
		if best == nil || q.Timestamp.After(best.Timestamp) {
			best = &q
		}
	}

	if s.horizon > 0 && time.Since(best.Timestamp) > s.horizon {
		return nil, fmt.Errorf("quote %s older than horizon: %w", symbol, common.ErrNotFound)
	}
	return best, nil
}

func (s *quoteStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	symbols := make([]string, 0, len(s.quotes))
	for symbol := range s.quotes {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// NewRedisQuotePublisher publishes accepted symbols on the shared quote
// update channel. Publish failures are logged, never propagated: a broken
// subscriber must not stall quote ingestion.
func NewRedisQuotePublisher(client *redisPkg.Client, log *logger.Logger) QuotePublisher {
	return &redisQuotePublisher{client: client, logger: log}
}

type redisQuotePublisher struct {
	client *redisPkg.Client
	logger *logger.Logger
}

func (p *redisQuotePublisher) Publish(ctx context.Context, symbol string) {
	if err := p.client.Publish(ctx, common.RedisChannelQuoteUpdates, symbol).Err(); err != nil {
		p.logger.Warn("Failed to publish quote update",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
	}
}
