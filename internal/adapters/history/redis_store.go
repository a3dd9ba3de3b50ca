package history

import (
	"appliance-intake-service/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKeyPrefix = "sundoo_selection_history"
	maxAppendRetries = 16
)

// RedisStore keeps each session's history as one JSON array under
// "<prefix>:<session id>". Appends run in a WATCH transaction so two
// concurrent writers for the same session never drop an entry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *RedisStore) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	if s.client == nil {
		return nil, errors.New("history: redis client is nil")
	}
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return []domain.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: get: %w", err)
	}
	return decodeEntries(data), nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, e domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	if s.client == nil {
		return nil, errors.New("history: redis client is nil")
	}
	key := s.key(sessionID)

	var out []domain.HistoryEntry
	txf := func(tx *redis.Tx) error {
		var current []domain.HistoryEntry
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return fmt.Errorf("history: get: %w", err)
		default:
			current = decodeEntries(data)
		}

		out = domain.AppendHistory(current, e)
		payload, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("history: marshal: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("history: append: %w", err)
	}
	return nil, fmt.Errorf("history: append %s: too much contention", sessionID)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if s.client == nil {
		return errors.New("history: redis client is nil")
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("history: del: %w", err)
	}
	return nil
}

// Corrupt or non-array values read as an empty log.
func decodeEntries(data []byte) []domain.HistoryEntry {
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return []domain.HistoryEntry{}
	}
	return entries
}
