package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/martijn/serverlist/internal/api/middleware"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/service"
	"github.com/martijn/serverlist/internal/infrastructure/sqlstore"
	"github.com/rs/zerolog"
)

const testJWTSecret = "handler-test-secret"

// testEnv holds all test dependencies
type testEnv struct {
	db            *sqlstore.DB
	router        *gin.Engine
	authService   *service.AuthService
	serverHandler *ServerHandler
}

// setupTestEnv creates a test environment with in-memory SQLite database
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWithPolicy(t, service.DefaultPaginationPolicy())
}

func setupTestEnvWithPolicy(t *testing.T, policy service.PaginationPolicy) *testEnv {
	t.Helper()

	db, err := sqlstore.New(sqlstore.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Create repositories
	userRepo := sqlstore.NewUserRepository(db)
	clientRepo := sqlstore.NewClientRepository(db)
	authCodeRepo := sqlstore.NewAuthCodeRepository(db)
	serverRepo := sqlstore.NewServerRepository(db)

	// Create services
	authService := service.NewAuthService(userRepo, clientRepo, authCodeRepo, testJWTSecret, "HS256")
	serverService := service.NewServerService(serverRepo, policy, zerolog.Nop())

	serverHandler := NewServerHandler(serverService)
	authHandler := NewAuthHandler(authService)

	// Setup gin router in test mode
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/auth/authorize", authHandler.Authorize)
	router.POST("/auth/token", authHandler.Token)

	servers := router.Group("/api/servers")
	servers.Use(middleware.OptionalAuthMiddleware(authService))
	servers.GET("/select", serverHandler.ListServers)
	servers.GET("/select/", serverHandler.ListServers)

	return &testEnv{
		db:            db,
		router:        router,
		authService:   authService,
		serverHandler: serverHandler,
	}
}

// cleanup closes the test database
func (env *testEnv) cleanup() {
	if env.db != nil {
		env.db.Close()
	}
}

// seedTestData populates the database:
//
//	users:      1 alice, 2 bob, 3 carol
//	categories: 1 Gaming, 2 Reading
//	servers:    1..12, odd ids Gaming, even ids Reading, owned by alice
//	members:    server 1: alice bob carol; 2, 3: alice; 4: bob
func (env *testEnv) seedTestData(t *testing.T) {
	t.Helper()

	baseTime := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	for _, username := range []string{"alice", "bob", "carol"} {
		_, err := env.db.Exec(`
			INSERT INTO user (username, password, created_at, updated_at)
			VALUES (?, 'x', ?, ?)
		`, username, baseTime, baseTime)
		if err != nil {
			t.Fatalf("failed to seed user %s: %v", username, err)
		}
	}

	for _, name := range []string{"Gaming", "Reading"} {
		_, err := env.db.Exec(`INSERT INTO category (name, created_at) VALUES (?, ?)`, name, baseTime)
		if err != nil {
			t.Fatalf("failed to seed category %s: %v", name, err)
		}
	}

	for i := 1; i <= 12; i++ {
		categoryID := 2
		if i%2 == 1 {
			categoryID = 1
		}
		_, err := env.db.Exec(`
			INSERT INTO server (name, description, icon, owner_id, category_id, created_at)
			VALUES (?, ?, NULL, 1, ?, ?)
		`, serverName(i), "server number "+serverName(i), categoryID, baseTime.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("failed to seed server %d: %v", i, err)
		}
	}

	members := [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {3, 1}, {4, 2}}
	for _, m := range members {
		_, err := env.db.Exec(`INSERT INTO server_member (server_id, user_id) VALUES (?, ?)`, m[0], m[1])
		if err != nil {
			t.Fatalf("failed to seed member %v: %v", m, err)
		}
	}
}

func serverName(i int) string {
	return "server-" + string(rune('a'+i-1))
}

// userToken signs a token for a seeded user
func (env *testEnv) userToken(t *testing.T, id int64, username string) string {
	t.Helper()

	token, err := env.authService.IssueUserToken(&domain.User{ID: id, Username: username}, []string{domain.ScopeServersRead})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// clientToken registers a client and returns a client credentials token
func (env *testEnv) clientToken(t *testing.T) string {
	t.Helper()

	hash, err := env.authService.HashPassword("client-secret")
	if err != nil {
		t.Fatalf("failed to hash secret: %v", err)
	}
	client := domain.NewClient("test", hash, []string{domain.ScopeServersRead})
	if err := sqlstore.NewClientRepository(env.db).Create(t.Context(), client); err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	token, err := env.authService.AuthenticateClient(t.Context(), client.ID, "client-secret", []string{domain.ScopeServersRead})
	if err != nil {
		t.Fatalf("failed to authenticate client: %v", err)
	}
	return token.Token
}

// tokenFor returns a bearer token for a seeded user, "client" for client
// credentials, or nothing for an anonymous caller
func (env *testEnv) tokenFor(t *testing.T, who string) string {
	t.Helper()

	switch who {
	case "":
		return ""
	case "client":
		return env.clientToken(t)
	case "alice":
		return env.userToken(t, 1, who)
	case "bob":
		return env.userToken(t, 2, who)
	case "carol":
		return env.userToken(t, 3, who)
	}
	t.Fatalf("unknown caller %q", who)
	return ""
}

// makeRequest performs a GET request, with a bearer token when one is given
func (env *testEnv) makeRequest(t *testing.T, path string, token string) *httptest.ResponseRecorder {
	t.Helper()

	header := ""
	if token != "" {
		header = "Bearer " + token
	}
	return env.makeRawRequest(t, path, header)
}

// makeRawRequest performs a GET request with the Authorization header as given
func (env *testEnv) makeRawRequest(t *testing.T, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// postJSON performs a POST request with a JSON body
func (env *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// parseServerListResponse parses the response body into ServerListResponse
func parseServerListResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ServerListResponse {
	t.Helper()

	var resp dto.ServerListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// parseErrorResponse parses the response body into ErrorResponse
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, w.Body.String())
	}
	return resp
}

// ptr is a helper to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
