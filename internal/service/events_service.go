package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/readtrack/readtrack-backend/internal/config"
)

// Event types published on the sync channel.
const (
	EventCheckin = "checkin"
	EventSync    = "sync"
	EventRebuild = "rebuild"
	EventImport  = "import"
)

// Event is the JSON shape relayed to dashboard WebSocket clients.
type Event struct {
	Type    string      `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventsService publishes domain events over Redis Pub/Sub. Publishing is
// best-effort: a dead Redis degrades the live dashboard, never a write path.
type EventsService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewEventsService creates a new EventsService.
func NewEventsService(rdb *redis.Client, log zerolog.Logger) *EventsService {
	return &EventsService{
		rdb: rdb,
		log: log.With().Str("component", "events_service").Logger(),
	}
}

// Publish sends one event on the sync channel.
func (s *EventsService) Publish(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(Event{Type: eventType, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		s.log.Warn().Err(err).Str("type", eventType).Msg("Failed to marshal event")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.SyncEventChannel(), body).Err(); err != nil {
		s.log.Warn().Err(err).Str("type", eventType).Msg("Failed to publish event")
	}
}

// Subscribe attaches to the sync channel. The caller owns the PubSub and
// must Close it.
func (s *EventsService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.SyncEventChannel())
}
