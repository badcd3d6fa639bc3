package auth

import (
	"context"

	"github.com/andreyxaxa/listing-admin/internal/entity"
)

type sessionKey struct{}

// WithSession attaches the resolved session to a request context.
func WithSession(ctx context.Context, s *entity.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*entity.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*entity.Session)

	return s, ok && s != nil
}
