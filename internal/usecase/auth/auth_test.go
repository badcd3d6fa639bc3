package auth

import (
	"context"
	"testing"
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/andreyxaxa/listing-admin/internal/infrastructure/token"
	"github.com/andreyxaxa/listing-admin/internal/repo/repotest"
	"github.com/andreyxaxa/listing-admin/pkg/logger"
	"github.com/andreyxaxa/listing-admin/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*AuthUseCase, *repotest.Sessions) {
	t.Helper()

	sessions := repotest.NewSessions()
	uc, err := New(sessions, token.NewJWT("secret", "test"), "Admin@Example.com", "s3cret", time.Hour, logger.Nop{})
	require.NoError(t, err)

	return uc, sessions
}

func TestSignIn(t *testing.T) {
	uc, sessions := newAuth(t)
	ctx := context.Background()

	tok, session, err := uc.SignIn(ctx, " admin@example.com ", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, "admin@example.com", session.Email)

	got, err := uc.Current(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	require.Len(t, sessions.Published, 1)
	assert.Equal(t, entity.SignedIn, sessions.Published[0].Type)
}

func TestSignIn_WrongCredentials(t *testing.T) {
	uc, sessions := newAuth(t)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@example.com", "guess"},
		{"wrong email", "other@example.com", "s3cret"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := uc.SignIn(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		})
	}

	assert.Empty(t, sessions.Published)
}

func TestSignOut_RevokesToken(t *testing.T) {
	uc, sessions := newAuth(t)
	ctx := context.Background()

	tok, _, err := uc.SignIn(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, uc.SignOut(ctx, tok))

	_, err = uc.Current(ctx, tok)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	// second sign-out is a no-op
	require.NoError(t, uc.SignOut(ctx, tok))

	require.Len(t, sessions.Published, 2)
	assert.Equal(t, entity.SignedOut, sessions.Published[1].Type)
}

func TestCurrent_Unauthenticated(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	for _, tok := range []string{"", "garbage"} {
		_, err := uc.Current(ctx, tok)
		assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	}

	assert.ErrorIs(t, uc.SignOut(ctx, "garbage"), errs.ErrUnauthenticated)
}

func TestCurrent_Expired(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	tok, _, err := uc.SignIn(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = uc.Current(ctx, tok)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
}

func TestSubscribe(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	events, closeFn, err := uc.Subscribe(ctx)
	require.NoError(t, err)
	defer closeFn()

	_, _, err = uc.SignIn(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)

	select {
	case e := <-events:
		assert.Equal(t, entity.SignedIn, e.Type)
		assert.Equal(t, "admin@example.com", e.Email)
	case <-time.After(time.Second):
		t.Fatal("no session event")
	}
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := &entity.Session{Email: "admin@example.com"}
	got, ok := FromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestPasswordHash(t *testing.T) {
	h, err := hashPassword("pw")
	require.NoError(t, err)

	assert.True(t, h.matches("pw"))
	assert.False(t, h.matches("pw "))

	other, err := hashPassword("pw")
	require.NoError(t, err)
	assert.NotEqual(t, h.salt, other.salt)
}
