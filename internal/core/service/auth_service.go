package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	AuthCodeTTL = 10 * time.Minute
	TokenTTL    = time.Hour
	BcryptCost  = 10

	SubjectTypeUser   = "user"
	SubjectTypeClient = "client"

	TokenTypeBearer = "Bearer"

	tokenIssuer = "serverlist"
)

type AuthService struct {
	userRepo     repository.UserRepository
	clientRepo   repository.ClientRepository
	authCodeRepo repository.AuthCodeRepository
	jwtSecret    string
	jwtAlgorithm string
}

func NewAuthService(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	authCodeRepo repository.AuthCodeRepository,
	jwtSecret string,
	jwtAlgorithm string,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		clientRepo:   clientRepo,
		authCodeRepo: authCodeRepo,
		jwtSecret:    jwtSecret,
		jwtAlgorithm: jwtAlgorithm,
	}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AccessToken is a signed bearer token together with what it grants.
type AccessToken struct {
	Token     string
	Type      string
	Scopes    []string
	ExpiresIn time.Duration
}

// AuthorizeUser authenticates a user and returns a single use auth code
// carrying the requested scopes.
func (s *AuthService) AuthorizeUser(ctx context.Context, username, password string, scopes []string) (*domain.AuthCode, error) {
	if err := checkScopes(scopes); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, NewInvalidCredentials("Invalid credentials")
	}

	if !s.VerifyPassword(password, user.Password) {
		return nil, NewInvalidCredentials("Invalid credentials")
	}

	authCode := domain.NewAuthCode(user.ID, scopes, AuthCodeTTL)
	if err := s.authCodeRepo.Create(ctx, authCode); err != nil {
		return nil, fmt.Errorf("failed to create auth code: %w", err)
	}

	_ = s.authCodeRepo.DeleteExpired(ctx)

	return authCode, nil
}

// ExchangeAuthCode exchanges an auth code for a user token with the code's scopes
func (s *AuthService) ExchangeAuthCode(ctx context.Context, code string) (*AccessToken, error) {
	authCode, err := s.authCodeRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, NewInvalidCredentials("Invalid or expired authorization code")
	}

	// Single use, whatever the outcome
	_ = s.authCodeRepo.Delete(ctx, code)

	if authCode.IsExpired() {
		return nil, NewInvalidCredentials("Invalid or expired authorization code")
	}

	user, err := s.userRepo.FindByID(ctx, authCode.UserID)
	if err != nil {
		return nil, NewInvalidCredentials("Invalid or expired authorization code")
	}

	token, err := s.IssueUserToken(user, authCode.Scopes)
	if err != nil {
		return nil, err
	}
	return s.accessToken(token, authCode.Scopes), nil
}

// IssueUserToken signs a token carrying the user's identity
func (s *AuthService) IssueUserToken(user *domain.User, scopes []string) (string, error) {
	userID := user.ID
	return s.generateJWT(user.Username, SubjectTypeUser, &userID, scopes)
}

// AuthenticateClient authenticates a client and returns a token without a
// user identity. Every requested scope must be granted to the client.
func (s *AuthService) AuthenticateClient(ctx context.Context, clientID, clientSecret string, scopes []string) (*AccessToken, error) {
	if err := checkScopes(scopes); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, NewInvalidCredentials("Invalid client credentials")
	}

	if !s.VerifyPassword(clientSecret, client.Secret) {
		return nil, NewInvalidCredentials("Invalid client credentials")
	}

	for _, scope := range scopes {
		if !client.HasScope(scope) {
			return nil, NewScopeNotGranted(scope)
		}
	}

	token, err := s.generateJWT(clientID, SubjectTypeClient, nil, scopes)
	if err != nil {
		return nil, err
	}
	return s.accessToken(token, scopes), nil
}

func (s *AuthService) accessToken(token string, scopes []string) *AccessToken {
	return &AccessToken{
		Token:     token,
		Type:      TokenTypeBearer,
		Scopes:    scopes,
		ExpiresIn: TokenTTL,
	}
}

func checkScopes(scopes []string) error {
	if len(scopes) == 0 {
		return NewInvalidParameter("At least one scope is required")
	}
	for _, scope := range scopes {
		if !domain.IsSupportedScope(scope) {
			return NewInvalidParameter(fmt.Sprintf("Unsupported scope: %s", scope))
		}
	}
	return nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.signingMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

func (s *AuthService) signingMethod() jwt.SigningMethod {
	switch s.jwtAlgorithm {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

func (s *AuthService) generateJWT(subject, subjectType string, userID *int64, scopes []string) (string, error) {
	now := time.Now()

	claims := TokenClaims{
		SubjectType: subjectType,
		UserID:      userID,
		Scopes:      scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(s.signingMethod(), claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	SubjectType string   `json:"sub_type"` // "user" or "client"
	UserID      *int64   `json:"uid,omitempty"`
	Scopes      []string `json:"scopes"`
	jwt.RegisteredClaims
}

// AuthContext converts verified claims into the listing's view of the caller.
func (c *TokenClaims) AuthContext() AuthContext {
	if c == nil {
		return Anonymous
	}
	auth := AuthContext{Authenticated: true}
	if c.SubjectType == SubjectTypeUser && c.UserID != nil {
		userID := *c.UserID
		auth.UserID = &userID
	}
	return auth
}
