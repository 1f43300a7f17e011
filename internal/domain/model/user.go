package model

import (
	"time"

	"subscription-billing/internal/domain"
)

// User mirrors the identity record owned by the auth service. This service
// never creates or mutates users; it only resolves the authenticated caller.
type User struct {
	ID        string // UUID
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
}

func NewUser(id, email string) (*User, error) {
	if id == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{ID: id, Email: email, CreatedAt: time.Now()}, nil
}
