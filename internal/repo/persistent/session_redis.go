package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/pkg/redisclient"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "session:"
	sessionEventsChannel = "session-events"
)

type SessionRepo struct {
	*redisclient.Redis
}

func NewSessionRepo(r *redisclient.Redis) *SessionRepo {
	return &SessionRepo{r}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// Save stores the session until its ExpiresAt.
func (r *SessionRepo) Save(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("SessionRepo - Save: session %s already expired", session.ID)
	}

	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("SessionRepo - Save - json.Marshal: %w", err)
	}

	if err = r.Client.Set(ctx, sessionKey(session.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("SessionRepo - Save - r.Client.Set: %w", err)
	}

	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	b, err := r.Client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errs.ErrRecordNotFound
		}

		return nil, fmt.Errorf("SessionRepo - Get - r.Client.Get: %w", err)
	}

	var s entity.Session
	if err = json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("SessionRepo - Get - json.Unmarshal: %w", err)
	}

	return &s, nil
}

// Delete reports whether the session existed.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.Client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("SessionRepo - Delete - r.Client.Del: %w", err)
	}

	return n > 0, nil
}

func (r *SessionRepo) Publish(ctx context.Context, event entity.SessionEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("SessionRepo - Publish - json.Marshal: %w", err)
	}

	if err = r.Client.Publish(ctx, sessionEventsChannel, b).Err(); err != nil {
		return fmt.Errorf("SessionRepo - Publish - r.Client.Publish: %w", err)
	}

	return nil
}

// Subscribe delivers session events until ctx is done or the returned
// close func is called. The channel is closed afterwards.
func (r *SessionRepo) Subscribe(ctx context.Context) (<-chan entity.SessionEvent, func() error, error) {
	pubsub := r.Client.Subscribe(ctx, sessionEventsChannel)

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()

		return nil, nil, fmt.Errorf("SessionRepo - Subscribe - pubsub.Receive: %w", err)
	}

	out := make(chan entity.SessionEvent)
	in := pubsub.Channel()

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()

				return
			case msg, ok := <-in:
				if !ok {
					return
				}

				var event entity.SessionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}

				select {
				case out <- event:
				case <-ctx.Done():
					_ = pubsub.Close()

					return
				}
			}
		}
	}()

	return out, pubsub.Close, nil
}
