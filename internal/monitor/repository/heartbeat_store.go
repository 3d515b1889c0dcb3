package repository

import (
	"time"

	"golang-options-monitor/internal/monitor/dto"

	"github.com/patrickmn/go-cache"
)

// HeartbeatStore tracks the last heartbeat per bridge terminal. Entries expire
// after the configured TTL, so a silent terminal drops off the status view.
type HeartbeatStore interface {
	Upsert(hb dto.HeartbeatRequest)
	Get(terminalID string) (*dto.HeartbeatRequest, bool)
	All() map[string]dto.HeartbeatRequest
}

// NewHeartbeatStore creates a TTL-backed heartbeat store.
func NewHeartbeatStore(ttl time.Duration) HeartbeatStore {
	return &heartbeatStore{
		cache: cache.New(ttl, 2*ttl),
	}
}

type heartbeatStore struct {
	cache *cache.Cache
}

func (s *heartbeatStore) Upsert(hb dto.HeartbeatRequest) {
	if hb.TerminalID == "" {
		hb.TerminalID = "UNKNOWN"
	}
	if hb.Timestamp == "" {
		hb.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	s.cache.SetDefault(hb.TerminalID, hb)
}

func (s *heartbeatStore) Get(terminalID string) (*dto.HeartbeatRequest, bool) {
	v, ok := s.cache.Get(terminalID)
	if !ok {
		return nil, false
	}
	hb := v.(dto.HeartbeatRequest)
	return &hb, true
}

func (s *heartbeatStore) All() map[string]dto.HeartbeatRequest {
	items := s.cache.Items()
	out := make(map[string]dto.HeartbeatRequest, len(items))
	for k, item := range items {
		out[k] = item.Object.(dto.HeartbeatRequest)
	}
	return out
}
