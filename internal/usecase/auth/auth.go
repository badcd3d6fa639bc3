package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure"
	"github.com/andreyxaxa/listing-admin/internal/repo"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/google/uuid"
)

// AuthUseCase signs the single configured admin in and out. Sessions live
// in the session store, the token only carries the session ID, so signing
// out revokes the token.
type AuthUseCase struct {
	sessions repo.SessionRepo
	tokens   infrastructure.TokenIssuer
	logger   logger.Interface

	email    string
	password passwordHash
	ttl      time.Duration

	now func() time.Time
}

func New(
	sessions repo.SessionRepo,
	tokens infrastructure.TokenIssuer,
	email, password string,
	ttl time.Duration,
	l logger.Interface,
) (*AuthUseCase, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("AuthUseCase - New - hashPassword: %w", err)
	}

	return &AuthUseCase{
		sessions: sessions,
		tokens:   tokens,
		logger:   l,
		email:    normalizeEmail(email),
		password: hash,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (string, *entity.Session, error) {
	// пароль проверяем всегда, чтобы время ответа не зависело от email
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(uc.email)) == 1
	passwordOK := uc.password.matches(password)

	if !emailOK || !passwordOK {
		return "", nil, errs.ErrInvalidCredentials
	}

	now := uc.now()
	session := &entity.Session{
		ID:        uuid.New(),
		Email:     uc.email,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	token, err := uc.tokens.Issue(session.ID, session.ExpiresAt)
	if err != nil {
		return "", nil, fmt.Errorf("AuthUseCase - SignIn - uc.tokens.Issue: %w", err)
	}

	if err = uc.sessions.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("AuthUseCase - SignIn - uc.sessions.Save: %w", err)
	}

	uc.publish(ctx, entity.SignedIn, session)

	return token, session, nil
}

// SignOut revokes the session behind token. Signing out twice is not an error.
func (uc *AuthUseCase) SignOut(ctx context.Context, token string) error {
	id, err := uc.tokens.Parse(token)
	if err != nil {
		return errs.ErrUnauthenticated
	}

	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil
		}

		return fmt.Errorf("AuthUseCase - SignOut - uc.sessions.Get: %w", err)
	}

	deleted, err := uc.sessions.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("AuthUseCase - SignOut - uc.sessions.Delete: %w", err)
	}

	if deleted {
		uc.publish(ctx, entity.SignedOut, session)
	}

	return nil
}

// Current resolves token to a live session.
func (uc *AuthUseCase) Current(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, errs.ErrUnauthenticated
	}

	id, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, errs.ErrUnauthenticated
	}

	session, err := uc.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, errs.ErrUnauthenticated
		}

		return nil, fmt.Errorf("AuthUseCase - Current - uc.sessions.Get: %w", err)
	}

	if !uc.now().Before(session.ExpiresAt) {
		return nil, errs.ErrUnauthenticated
	}

	return session, nil
}

// Subscribe streams sign-in and sign-out events until ctx is done.
func (uc *AuthUseCase) Subscribe(ctx context.Context) (<-chan entity.SessionEvent, func() error, error) {
	events, closeFn, err := uc.sessions.Subscribe(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("AuthUseCase - Subscribe - uc.sessions.Subscribe: %w", err)
	}

	return events, closeFn, nil
}

func (uc *AuthUseCase) publish(ctx context.Context, t entity.SessionEventType, s *entity.Session) {
	err := uc.sessions.Publish(ctx, entity.SessionEvent{
		Type:      t,
		SessionID: s.ID,
		Email:     s.Email,
		At:        uc.now(),
	})
	if err != nil {
		uc.logger.Warn("failed to publish session event type=%s, error=%v", t, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
