package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps sessions as Redis hashes under session:<sid>.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *goredis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Create stores the public fields of u under a fresh session id.
func (s *SessionStore) Create(ctx context.Context, u *entity.User) (*entity.Session, error) {
	sess := &entity.Session{
		ID:        uuid.NewString(),
		UserID:    u.UniqueID,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: time.Now().UTC(),
	}
	key := sessionKey(sess.ID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":         sess.UserID,
		"full_name":  sess.FullName,
		"email":      sess.Email,
		"phone":      sess.Phone,
		"role":       string(sess.Role),
		"created_at": sess.CreatedAt.Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, sid string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data["id"] == "" {
		return nil, ErrSessionNotFound
	}
	created, _ := time.Parse(time.RFC3339Nano, data["created_at"])
	return &entity.Session{
		ID:        sid,
		UserID:    data["id"],
		FullName:  data["full_name"],
		Email:     data["email"],
		Phone:     data["phone"],
		Role:      entity.Role(data["role"]),
		CreatedAt: created,
	}, nil
}

// Destroy is idempotent; only a store failure is an error.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }
