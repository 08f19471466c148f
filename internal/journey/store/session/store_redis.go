package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"saathi/internal/journey/models"
	"saathi/pkg/platform/sentinel"
	"saathi/pkg/requestcontext"
)

const (
	keyPrefix  = "journey:session:"
	DefaultTTL = 24 * time.Hour
)

// RedisStore persists sessions as JSON with a sliding TTL. Save uses
// WATCH/MULTI/EXEC so a concurrent writer surfaces as sentinel.ErrConflict.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(id string) string {
	return keyPrefix + id
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	session.Version = 1
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key(session.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return decode(raw)
}

// Save writes session if the stored version still equals session.Version.
func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	k := key(session.ID)
	next := session.Clone()
	next.Version = session.Version + 1
	next.UpdatedAt = requestcontext.Now(ctx)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("load session: %w", err)
		}
		stored, err := decode(raw)
		if err != nil {
			return err
		}
		if stored.Version != session.Version {
			return sentinel.ErrConflict
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, payload, s.ttl)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, k)
	switch {
	case err == nil:
		session.Version = next.Version
		session.UpdatedAt = next.UpdatedAt
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return sentinel.ErrConflict
	default:
		return err
	}
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decode(raw []byte) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.UserData == nil {
		session.UserData = make(map[string]any)
	}
	return &session, nil
}
