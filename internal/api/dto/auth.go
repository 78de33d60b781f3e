package dto

import (
	"strings"
	"time"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/service"
)

// AuthorizeRequest is a user login asking for a code. Scope is a space
// separated scope list and defaults to servers:read.
type AuthorizeRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Scope    string `json:"scope"`
}

type AuthorizeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"`
	Scope     string `json:"scope"`
}

func NewAuthorizeResponse(code *domain.AuthCode) AuthorizeResponse {
	return AuthorizeResponse{
		Code:      code.Code,
		ExpiresIn: int(time.Until(code.ExpiresAt).Round(time.Second).Seconds()),
		Scope:     strings.Join(code.Scopes, " "),
	}
}

// TokenRequest exchanges a code (authorization_code) or client credentials
// (client_credentials) for a listing token.
type TokenRequest struct {
	GrantType    string `json:"grant_type" binding:"required"`
	Code         string `json:"code"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Scope        string `json:"scope"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

func NewTokenResponse(token *service.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: token.Token,
		TokenType:   token.Type,
		ExpiresIn:   int(token.ExpiresIn.Seconds()),
		Scope:       strings.Join(token.Scopes, " "),
	}
}
