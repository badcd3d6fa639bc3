package response

import (
	"time"

	"github.com/andreyxaxa/listing-admin/internal/entity"
)

type Error struct {
	Error string `json:"error" example:"message"`
}

type Listings struct {
	Listings []entity.Listing `json:"listings"`
	Total    int              `json:"total"`
}

type Categories struct {
	Categories []string `json:"categories"`
}

type Login struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Session struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
