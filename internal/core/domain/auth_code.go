package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthCode is a single use code exchanged for a user token.
type AuthCode struct {
	Code      string    `db:"code"`
	UserID    int64     `db:"user_id"`
	Scopes    []string  `db:"scopes"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func NewAuthCode(userID int64, scopes []string, ttl time.Duration) *AuthCode {
	now := time.Now()
	return &AuthCode{
		Code:      uuid.New().String(),
		UserID:    userID,
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func (a *AuthCode) IsExpired() bool {
	return time.Now().After(a.ExpiresAt)
}
