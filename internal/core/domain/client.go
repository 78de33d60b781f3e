package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ScopeServersRead grants read access to the server listing.
const ScopeServersRead = "servers:read"

// SupportedScopes lists every scope a token can carry.
var SupportedScopes = []string{ScopeServersRead}

func IsSupportedScope(scope string) bool {
	return slices.Contains(SupportedScopes, scope)
}

// Client is a machine credential. Tokens issued to a client carry no user
// identity, so membership based filters never match for them.
type Client struct {
	ID        string    `db:"id"`     // UUID
	Secret    string    `db:"secret"` // bcrypt hashed
	Label     string    `db:"label"`
	Scopes    []string  `db:"scopes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewClient(label string, hashedSecret string, scopes []string) *Client {
	now := time.Now()
	return &Client{
		ID:        uuid.New().String(),
		Secret:    hashedSecret,
		Label:     label,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Client) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
