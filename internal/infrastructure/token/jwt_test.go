package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueParse(t *testing.T) {
	j := NewJWT("secret", "listing-admin")
	id := uuid.New()

	tok, err := j.Issue(id, time.Now().Add(time.Hour))
	require.NoError(t, err)

	got, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWT_Parse(t *testing.T) {
	j := NewJWT("secret", "listing-admin")

	expired, err := j.Issue(uuid.New(), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	foreign, err := NewJWT("other", "listing-admin").Issue(uuid.New(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
