package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/emrsvc/domain"
)

// Key prefixes of the two session namespaces
const (
	SessionPrefix          = "session:"
	FederatedSessionPrefix = "fsession:"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// Each session key expires with the session; a per-user set indexes the
// live session IDs so all of a user's sessions can be revoked together.
type SessionRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository creates a new session repository under the given key prefix
func NewSessionRepository(client *redis.Client, prefix string) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client: client,
		prefix: prefix,
	}
}

func (r *SessionRepositoryImpl) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *SessionRepositoryImpl) userKey(userID string) string {
	return r.prefix + "user:" + userID
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(session.ID), data, ttl)
	pipe.SAdd(ctx, r.userKey(session.UserID), session.ID)
	pipe.Expire(ctx, r.userKey(session.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	data, err := r.client.Get(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.ExpiresAt.Before(time.Now()) {
		r.client.Del(ctx, r.key(sessionID))
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// Delete implements domain.SessionRepository. Deleting an unknown session is not an error.
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	data, err := r.client.GetDel(ctx, r.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var session domain.Session
	if json.Unmarshal([]byte(data), &session) == nil && session.UserID != "" {
		r.client.SRem(ctx, r.userKey(session.UserID), sessionID)
	}
	return nil
}

// DeleteByUser implements domain.SessionRepository
func (r *SessionRepositoryImpl) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.key(id))
	}
	keys = append(keys, r.userKey(userID))
	return r.client.Del(ctx, keys...).Err()
}
