package domain

import (
	"time"

	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the identity carried by both access and refresh tokens.
type Claims struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CompanyID uuid.UUID `json:"companyId"`
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// RefreshToken is the stored half of a refresh token. Token is the signed
// string itself and serves as the primary key.
type RefreshToken struct {
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
