package repository

import (
	"context"
	"testing"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	published []string
}

func (p *recordingPublisher) Publish(_ context.Context, symbol string) {
	p.published = append(p.published, symbol)
}

func TestQuoteStoreUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("accepts and normalizes symbol", func(t *testing.T) {
		publisher := &recordingPublisher{}
		store := NewQuoteStore(publisher, logger.NewNop(), 0)

		err := store.Update(ctx, entity.Quote{Symbol: " petr4 ", Last: 62.10, Source: "bridge", Timestamp: now})
		assert.NoError(t, err)

		quote, err := store.Latest(ctx, "PETR4")
		assert.NoError(t, err)
		assert.Equal(t, 62.10, quote.Last)
		assert.Equal(t, []string{"PETR4"}, publisher.published)
	})

	t.Run("rejects empty symbol", func(t *testing.T) {
		store := NewQuoteStore(nil, logger.NewNop(), 0)
		err := store.Update(ctx, entity.Quote{Symbol: "  ", Last: 1, Source: "bridge", Timestamp: now})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("drops stale quote from same source", func(t *testing.T) {
		publisher := &recordingPublisher{}
		store := NewQuoteStore(publisher, logger.NewNop(), 0)

		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.10, Source: "bridge", Timestamp: now}))
		// Equal timestamp is stale too.
		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 99.99, Source: "bridge", Timestamp: now}))
		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 88.88, Source: "bridge", Timestamp: now.Add(-time.Minute)}))

		quote, err := store.Latest(ctx, "PETR4")
		assert.NoError(t, err)
		assert.Equal(t, 62.10, quote.Last)
		// Dropped quotes are not announced.
		assert.Len(t, publisher.published, 1)
	})

	t.Run("newer quote replaces older", func(t *testing.T) {
		store := NewQuoteStore(nil, logger.NewNop(), 0)

		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.10, Source: "bridge", Timestamp: now}))
		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.45, Source: "bridge", Timestamp: now.Add(time.Second)}))

		quote, err := store.Latest(ctx, "PETR4")
		assert.NoError(t, err)
		assert.Equal(t, 62.45, quote.Last)
	})
}

func TestQuoteStoreLatest(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("picks freshest across sources", func(t *testing.T) {
		store := NewQuoteStore(nil, logger.NewNop(), 0)

		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.10, Source: "bridge", Timestamp: now.Add(-time.Minute)}))
		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.30, Source: "manual", Timestamp: now}))

		quote, err := store.Latest(ctx, "PETR4")
		assert.NoError(t, err)
		assert.Equal(t, "manual", quote.Source)
		assert.Equal(t, 62.30, quote.Last)
	})

	t.Run("unknown symbol", func(t *testing.T) {
		store := NewQuoteStore(nil, logger.NewNop(), 0)
		_, err := store.Latest(ctx, "VALE3")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("staleness horizon hides old quotes", func(t *testing.T) {
		store := NewQuoteStore(nil, logger.NewNop(), 5*time.Minute)

		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.10, Source: "bridge", Timestamp: now.Add(-time.Hour)}))
		_, err := store.Latest(ctx, "PETR4")
		assert.ErrorIs(t, err, common.ErrNotFound)

		assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.20, Source: "bridge", Timestamp: now}))
		quote, err := store.Latest(ctx, "PETR4")
		assert.NoError(t, err)
		assert.Equal(t, 62.20, quote.Last)
	})
}

func TestQuoteStoreSymbols(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	store := NewQuoteStore(nil, logger.NewNop(), 0)

	assert.Empty(t, store.Symbols())

	assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4", Last: 62.10, Source: "bridge", Timestamp: now}))
	assert.NoError(t, store.Update(ctx, entity.Quote{Symbol: "PETR4-C-64.50-20250919", Last: 0.85, Source: "bridge", Timestamp: now}))

	assert.ElementsMatch(t, []string{"PETR4", "PETR4-C-64.50-20250919"}, store.Symbols())
}
