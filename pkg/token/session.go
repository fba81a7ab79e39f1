package token

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// SessionStore keeps server-side sessions so tokens can be revoked before
// they expire.
type SessionStore interface {
	Open(ctx context.Context, sid, userID uuid.UUID, ttl time.Duration) error
	Active(ctx context.Context, sid uuid.UUID) (bool, error)
	Close(ctx context.Context, sid uuid.UUID) error
}

// RedisSessions stores sessions as "session:<sid>" keys holding the user id.
type RedisSessions struct {
	rdb goredis.Cmdable
}

func NewRedisSessions(rdb goredis.Cmdable) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func sessionKey(sid uuid.UUID) string { return "session:" + sid.String() }

func (s *RedisSessions) Open(ctx context.Context, sid, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sid), userID.String(), ttl).Err()
}

func (s *RedisSessions) Active(ctx context.Context, sid uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(sid)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisSessions) Close(ctx context.Context, sid uuid.UUID) error {
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}
