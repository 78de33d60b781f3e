package service

import (
	"context"
	"testing"
	"time"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
	"github.com/martijn/serverlist/internal/infrastructure/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type authFixture struct {
	svc          *AuthService
	userRepo     repository.UserRepository
	clientRepo   repository.ClientRepository
	authCodeRepo repository.AuthCodeRepository
}

func setupAuth(t *testing.T) *authFixture {
	t.Helper()

	db, err := sqlstore.New(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &authFixture{
		userRepo:     sqlstore.NewUserRepository(db),
		clientRepo:   sqlstore.NewClientRepository(db),
		authCodeRepo: sqlstore.NewAuthCodeRepository(db),
	}
	f.svc = NewAuthService(f.userRepo, f.clientRepo, f.authCodeRepo, testSecret, "HS256")
	return f
}

func (f *authFixture) createUser(t *testing.T, username, password string) *domain.User {
	t.Helper()

	hash, err := f.svc.HashPassword(password)
	require.NoError(t, err)
	user := domain.NewUser(username, hash)
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *authFixture) createClient(t *testing.T, secret string, scopes []string) *domain.Client {
	t.Helper()

	hash, err := f.svc.HashPassword(secret)
	require.NoError(t, err)
	client := domain.NewClient("ci", hash, scopes)
	require.NoError(t, f.clientRepo.Create(context.Background(), client))
	return client
}

func TestAuthService_Password(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, testSecret, "HS256")

	hash, err := svc.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)
	assert.True(t, svc.VerifyPassword("correct-horse", hash))
	assert.False(t, svc.VerifyPassword("wrong", hash))
}

func TestAuthService_AuthorizationCodeFlow(t *testing.T) {
	ctx := context.Background()
	f := setupAuth(t)
	user := f.createUser(t, "alice", "correct-horse")

	scopes := []string{domain.ScopeServersRead}

	_, err := f.svc.AuthorizeUser(ctx, "alice", "wrong", scopes)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.AuthorizeUser(ctx, "nobody", "correct-horse", scopes)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	code, err := f.svc.AuthorizeUser(ctx, "alice", "correct-horse", scopes)
	require.NoError(t, err)
	assert.Equal(t, user.ID, code.UserID)
	assert.Equal(t, scopes, code.Scopes)

	token, err := f.svc.ExchangeAuthCode(ctx, code.Code)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, token.Type)
	assert.Equal(t, scopes, token.Scopes)
	assert.Equal(t, TokenTTL, token.ExpiresIn)

	claims, err := f.svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, SubjectTypeUser, claims.SubjectType)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{domain.ScopeServersRead}, claims.Scopes)

	auth := claims.AuthContext()
	assert.True(t, auth.Authenticated)
	require.NotNil(t, auth.UserID)
	assert.Equal(t, user.ID, *auth.UserID)

	// Codes are single use
	_, err = f.svc.ExchangeAuthCode(ctx, code.Code)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Scopes(t *testing.T) {
	ctx := context.Background()
	f := setupAuth(t)
	f.createUser(t, "alice", "correct-horse")
	client := f.createClient(t, "s3cret", []string{domain.ScopeServersRead})

	tests := []struct {
		name    string
		scopes  []string
		message string
	}{
		{"none", nil, "At least one scope is required"},
		{"unknown", []string{"servers:write"}, "Unsupported scope: servers:write"},
		{"one unknown among known", []string{domain.ScopeServersRead, "admin"}, "Unsupported scope: admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AuthorizeUser(ctx, "alice", "correct-horse", tt.scopes)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.EqualError(t, err, tt.message)

			_, err = f.svc.AuthenticateClient(ctx, client.ID, "s3cret", tt.scopes)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestAuthService_ExpiredCode(t *testing.T) {
	ctx := context.Background()
	f := setupAuth(t)
	user := f.createUser(t, "alice", "correct-horse")

	code := domain.NewAuthCode(user.ID, []string{domain.ScopeServersRead}, -time.Minute)
	require.NoError(t, f.authCodeRepo.Create(ctx, code))

	_, err := f.svc.ExchangeAuthCode(ctx, code.Code)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.EqualError(t, err, "Invalid or expired authorization code")
}

func TestAuthService_ClientCredentials(t *testing.T) {
	ctx := context.Background()
	f := setupAuth(t)
	client := f.createClient(t, "s3cret", []string{domain.ScopeServersRead})
	unscoped := f.createClient(t, "s3cret", []string{"other"})

	scopes := []string{domain.ScopeServersRead}

	_, err := f.svc.AuthenticateClient(ctx, client.ID, "wrong", scopes)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.AuthenticateClient(ctx, "no-such-client", "s3cret", scopes)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.AuthenticateClient(ctx, unscoped.ID, "s3cret", scopes)
	assert.ErrorIs(t, err, ErrScopeNotGranted)
	assert.EqualError(t, err, "Scope servers:read is not granted to this client")

	token, err := f.svc.AuthenticateClient(ctx, client.ID, "s3cret", scopes)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeBearer, token.Type)
	assert.Equal(t, scopes, token.Scopes)

	claims, err := f.svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, SubjectTypeClient, claims.SubjectType)
	assert.Nil(t, claims.UserID)

	auth := claims.AuthContext()
	assert.True(t, auth.Authenticated)
	assert.Nil(t, auth.UserID)
}

func TestAuthService_ValidateToken(t *testing.T) {
	user := &domain.User{ID: 7, Username: "alice"}
	svc := NewAuthService(nil, nil, nil, testSecret, "HS256")

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(nil, nil, nil, "other-secret", "HS256")
		token, err := other.IssueUserToken(user, nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		other := NewAuthService(nil, nil, nil, testSecret, "HS512")
		token, err := other.IssueUserToken(user, nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		token, err := svc.IssueUserToken(user, nil)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		require.NotNil(t, claims.UserID)
		assert.Equal(t, int64(7), *claims.UserID)
	})
}

func TestTokenClaims_AuthContext(t *testing.T) {
	var nilClaims *TokenClaims
	assert.Equal(t, Anonymous, nilClaims.AuthContext())

	id := int64(3)
	// A uid on a client token is ignored
	clientClaims := &TokenClaims{SubjectType: SubjectTypeClient, UserID: &id}
	assert.Nil(t, clientClaims.AuthContext().UserID)
}
