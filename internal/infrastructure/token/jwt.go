package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWT issues HS256 tokens that carry a session ID.
type JWT struct {
	secret []byte
	issuer string
}

func NewJWT(secret, issuer string) *JWT {
	return &JWT{
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (j *JWT) Issue(sessionID uuid.UUID, expiresAt time.Time) (string, error) {
	now := time.Now()

	c := &claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("JWT - Issue - SignedString: %w", err)
	}

	return signed, nil
}

// Parse verifies the token and returns its session ID.
func (j *JWT) Parse(tokenStr string) (uuid.UUID, error) {
	c := &claims{}

	_, err := jwt.ParseWithClaims(tokenStr, c, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("JWT - Parse - jwt.ParseWithClaims: %w: %w", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(c.SessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("JWT - Parse - uuid.Parse: %w", ErrInvalidToken)
	}

	return id, nil
}
