package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/connorrli/cs1531-Project-Backend-sub000/internal/domain"
)

// SnapshotStore persists session records in Redis as JSON so a restarted
// process can recover sessions that were in flight between steps.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save writes the full session record. The previous snapshot is replaced;
// there is no history.
func (s *SnapshotStore) Save(ctx context.Context, sess domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// Load reads a previously saved session record.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (domain.Session, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (s *SnapshotStore) key(sessionID string) string {
	return "session:" + sessionID + ":snapshot"
}
