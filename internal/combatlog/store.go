// Package combatlog keeps the play-by-play of encounters in Redis. Each
// encounter is a list of JSON events under combatlog:{id}; a sorted set
// indexes encounters by the time of their latest event.
package combatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/forge/internal/config"
	"github.com/cory-johannsen/forge/internal/game/combat"
)

const (
	keyPrefix  = "combatlog:"
	indexKey   = keyPrefix + "encounters"
	defaultTTL = 24 * time.Hour
)

// ErrNotFound is returned when no events are stored for an encounter.
var ErrNotFound = errors.New("combatlog: encounter not found")

// Config holds the dependencies of a Store.
type Config struct {
	Client redis.Cmdable
	// TTL is applied to an encounter's list on every write. Zero means 24h.
	TTL    time.Duration
	Logger *zap.Logger
}

// Validate ensures all required dependencies are provided.
func (c *Config) Validate() error {
	if c.Client == nil {
		return errors.New("combatlog: redis client is required")
	}
	if c.TTL < 0 {
		return errors.New("combatlog: ttl must not be negative")
	}
	return nil
}

// Store is a combat.EventSink backed by Redis.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ combat.EventSink = (*Store)(nil)

// NewStore validates cfg and returns a Store.
func NewStore(cfg *Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: cfg.Client, ttl: ttl, logger: logger}, nil
}

// NewClient builds a go-redis client from configuration.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func encounterKey(id string) string { return keyPrefix + id }

// Record appends e to its encounter's list and refreshes the list TTL.
func (s *Store) Record(ctx context.Context, e combat.Event) error {
	if e.EncounterID == "" {
		return errors.New("combatlog: event has no encounter id")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("combatlog: encoding event: %w", err)
	}
	key := encounterKey(e.EncounterID)
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, s.ttl)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(at.UnixMilli()), Member: e.EncounterID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("combatlog: recording event %d of %s: %w", e.Seq, e.EncounterID, err)
	}
	s.logger.Debug("combat event recorded",
		zap.String("encounter", e.EncounterID),
		zap.Int("seq", e.Seq),
		zap.String("kind", string(e.Kind)),
	)
	return nil
}

// List returns the events of an encounter in recording order.
func (s *Store) List(ctx context.Context, encounterID string) ([]combat.Event, error) {
	raw, err := s.client.LRange(ctx, encounterKey(encounterID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("combatlog: reading %s: %w", encounterID, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, encounterID)
	}
	events := make([]combat.Event, 0, len(raw))
	for i, r := range raw {
		var e combat.Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("combatlog: decoding event %d of %s: %w", i, encounterID, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Recent returns up to limit encounter IDs, most recently active first.
// Index entries whose event list has expired are pruned.
func (s *Store) Recent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("combatlog: reading index: %w", err)
	}
	live := ids[:0]
	for _, id := range ids {
		n, err := s.client.Exists(ctx, encounterKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("combatlog: checking %s: %w", id, err)
		}
		if n == 0 {
			s.client.ZRem(ctx, indexKey, id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// Delete removes an encounter's events and index entry.
func (s *Store) Delete(ctx context.Context, encounterID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, encounterKey(encounterID))
		pipe.ZRem(ctx, indexKey, encounterID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("combatlog: deleting %s: %w", encounterID, err)
	}
	return nil
}
