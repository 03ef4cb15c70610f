package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgredis "github.com/angelmondragon/nebulashop-backend/pkg/redis"
)

const casMaxAttempts = 5

// RedisStore shares sessions between processes. Sessions live under
// nb:payment_session:<id>; nb:payment_session_key:<key> indexes them by
// idempotency key and is claimed with SETNX.
type RedisStore struct {
	client    *pkgredis.Client
	retention time.Duration
}

// NewRedisStore keeps each session for retention (0 keeps it forever).
func NewRedisStore(client *pkgredis.Client, retention time.Duration) (*RedisStore, error) {
	if client == nil || client.Raw() == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStore{client: client, retention: retention}, nil
}

func (s *RedisStore) Insert(ctx context.Context, session Session) (Session, bool, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return Session{}, false, fmt.Errorf("encode session: %w", err)
	}
	sessionKey := s.client.PaymentSessionKey(session.ID)
	// The body is written before the index is claimed so a reader that finds
	// the index always finds the session.
	if err := s.client.Set(ctx, sessionKey, payload, s.retention); err != nil {
		return Session{}, false, fmt.Errorf("write session: %w", err)
	}
	claimed, err := s.client.SetNX(ctx, s.client.PaymentSessionIndexKey(session.IdempotencyKey), session.ID, s.retention)
	if err != nil {
		_ = s.client.Del(ctx, sessionKey)
		return Session{}, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return session.clone(), true, nil
	}
	if err := s.client.Del(ctx, sessionKey); err != nil {
		return Session{}, false, fmt.Errorf("discard losing session: %w", err)
	}
	winner, err := s.GetByKey(ctx, session.IdempotencyKey)
	if err != nil {
		return Session{}, false, err
	}
	return winner, false, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.Get(ctx, s.client.PaymentSessionKey(id))
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return decodeSession([]byte(raw))
}

func (s *RedisStore) GetByKey(ctx context.Context, idempotencyKey string) (Session, error) {
	id, err := s.client.Get(ctx, s.client.PaymentSessionIndexKey(idempotencyKey))
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session index: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) CompareAndSwapStatus(ctx context.Context, id string, from, to enums.SessionStatus) (Session, bool, error) {
	key := s.client.PaymentSessionKey(id)
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		var (
			current Session
			swapped bool
		)
		err := s.client.Raw().Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrSessionNotFound
			}
			if err != nil {
				return err
			}
			current, err = decodeSession(raw)
			if err != nil {
				return err
			}
			if current.Status != from {
				return nil
			}
			next := current.clone()
			next.Status = to
			payload, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, redis.KeepTTL)
				return nil
			})
			if err != nil {
				return err
			}
			current = next
			swapped = true
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, false, err
		}
		if err != nil {
			return Session{}, false, fmt.Errorf("swap session status: %w", err)
		}
		return current, swapped, nil
	}
	return Session{}, false, fmt.Errorf("swap session status: too much contention on %s", id)
}

func decodeSession(raw []byte) (Session, error) {
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if _, err := enums.ParseSessionStatus(string(session.Status)); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", session.ID, err)
	}
	if _, err := enums.ParsePaymentMethod(string(session.Method)); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", session.ID, err)
	}
	return session, nil
}
