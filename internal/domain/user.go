package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CompanyID uuid.UUID `json:"companyId"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User    *User     `json:"user"`
	Company *Company  `json:"company"`
	Tokens  TokenPair `json:"tokens"`
}
