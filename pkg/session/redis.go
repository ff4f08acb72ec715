package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "oauthlink:session:"
	maxTakeAttempts    = 5
)

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the prefix of every key the store writes.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// RedisStore keeps sessions in Redis as JSON. Each session lives under its
// ID with a token index pointing at it and a per-user set for
// DeleteByUserID. Keys expire with the session.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store on client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type redisRecord struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

func (s *RedisStore) idKey(id string) string       { return s.prefix + "id:" + id }
func (s *RedisStore) tokenKey(token string) string { return s.prefix + "token:" + token }
func (s *RedisStore) userKey(userID string) string { return s.prefix + "user:" + userID }

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess, "")
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	id, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get token: %w", err)
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Token != token {
		return nil, ErrNotFound
	}
	if rec.Session.expired(time.Now()) {
		return nil, ErrExpired
	}
	rec.Session.Token = rec.Token
	return rec.Session, nil
}

func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	rec, err := s.load(ctx, sess.ID)
	if err != nil {
		return err
	}
	return s.write(ctx, sess, rec.Token)
}

// Take rewrites the stored session under WATCH so a concurrent writer makes
// the transaction fail and the read is retried.
func (s *RedisStore) Take(ctx context.Context, id string, keys ...string) (map[string]string, error) {
	key := s.idKey(id)
	for range maxTakeAttempts {
		var taken map[string]string
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			var rec redisRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return errors.Join(ErrNotFound, fmt.Errorf("decode session %s: %w", id, err))
			}
			if rec.Session == nil {
				return ErrNotFound
			}

			taken = rec.Session.take(keys)
			if len(taken) == 0 {
				return nil
			}
			out, err := json.Marshal(rec)
			if err != nil {
				return errors.Join(ErrEncode, err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, redis.KeepTTL)
				return nil
			})
			return err
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrEncode):
			return nil, err
		case err != nil:
			return nil, fmt.Errorf("session: redis take: %w", err)
		}
		return taken, nil
	}
	return nil, fmt.Errorf("session: redis take %s: %w", id, redis.TxFailedErr)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	rec, err := s.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.idKey(id), s.tokenKey(rec.Token))
		if uid := rec.Session.AuthenticatedUserID(); uid != "" {
			pipe.SRem(ctx, s.userKey(uid), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: redis list user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("session: redis delete user index: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (*redisRecord, error) {
	data, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Session == nil {
		return nil, errors.Join(ErrNotFound, fmt.Errorf("decode session %s: %w", id, err))
	}
	return &rec, nil
}

// write stores sess and its indexes; oldToken, when different, is unlinked.
func (s *RedisStore) write(ctx context.Context, sess *Session, oldToken string) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(redisRecord{Session: sess, Token: sess.Token})
	if err != nil {
		return errors.Join(ErrEncode, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.idKey(sess.ID), data, ttl)
		pipe.Set(ctx, s.tokenKey(sess.Token), sess.ID, ttl)
		if oldToken != "" && oldToken != sess.Token {
			pipe.Del(ctx, s.tokenKey(oldToken))
		}
		if uid := sess.AuthenticatedUserID(); uid != "" {
			pipe.SAdd(ctx, s.userKey(uid), sess.ID)
			pipe.Expire(ctx, s.userKey(uid), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis write: %w", err)
	}
	return nil
}
