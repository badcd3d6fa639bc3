package repotest

import (
	"context"
	"sync"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
)

var _ repo.SessionRepo = (*Sessions)(nil)

// Sessions keeps sessions in a map and fans events out to subscribers.
type Sessions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]entity.Session
	subs []chan entity.SessionEvent

	Published []entity.SessionEvent
}

func NewSessions() *Sessions {
	return &Sessions{rows: make(map[uuid.UUID]entity.Session)}
}

func (s *Sessions) Save(_ context.Context, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[session.ID] = *session

	return nil
}

func (s *Sessions) Get(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return &row, nil
}

func (s *Sessions) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.rows[id]
	delete(s.rows, id)

	return ok, nil
}

func (s *Sessions) Publish(_ context.Context, event entity.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Published = append(s.Published, event)
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

func (s *Sessions) Subscribe(context.Context) (<-chan entity.SessionEvent, func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan entity.SessionEvent, 16)
	s.subs = append(s.subs, ch)

	var once sync.Once
	closeFn := func() error {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			for i, sub := range s.subs {
				if sub == ch {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)

					break
				}
			}
			close(ch)
		})

		return nil
	}

	return ch, closeFn, nil
}
