package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/service"
)

const (
	grantAuthorizationCode = "authorization_code"
	grantClientCredentials = "client_credentials"
)

// AuthHandler issues the bearer tokens accepted by the server listing.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Authorize handles POST /auth/authorize
func (h *AuthHandler) Authorize(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, service.NewInvalidParameter(err.Error()))
		return
	}

	authCode, err := h.authService.AuthorizeUser(c.Request.Context(), req.Username, req.Password, requestedScopes(req.Scope))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuthorizeResponse(authCode))
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, service.NewInvalidParameter(err.Error()))
		return
	}

	var token *service.AccessToken
	var err error

	switch req.GrantType {
	case grantAuthorizationCode:
		if req.Code == "" {
			writeError(c, service.NewInvalidParameter("code is required for the authorization_code grant"))
			return
		}
		// The code already fixes the scopes
		token, err = h.authService.ExchangeAuthCode(c.Request.Context(), req.Code)

	case grantClientCredentials:
		if req.ClientID == "" || req.ClientSecret == "" {
			writeError(c, service.NewInvalidParameter("client_id and client_secret are required for the client_credentials grant"))
			return
		}
		token, err = h.authService.AuthenticateClient(c.Request.Context(), req.ClientID, req.ClientSecret, requestedScopes(req.Scope))

	default:
		writeError(c, service.NewInvalidParameter("grant_type must be 'authorization_code' or 'client_credentials'"))
		return
	}

	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTokenResponse(token))
}

// requestedScopes splits a space separated scope list. Listing read access is
// what a caller gets when it asks for nothing in particular.
func requestedScopes(raw string) []string {
	scopes := strings.Fields(raw)
	if len(scopes) == 0 {
		return []string{domain.ScopeServersRead}
	}
	return scopes
}
