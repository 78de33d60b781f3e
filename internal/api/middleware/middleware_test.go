package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	return router
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := newTestRouter(RequestID(), Logger(logger))
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/missing?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/missing", entry["path"])
	assert.Equal(t, "x=1", entry["query"])
	assert.Equal(t, float64(404), entry["status"])
}

func TestErrorHandlerMiddleware_Panic(t *testing.T) {
	router := newTestRouter(ErrorHandlerMiddleware(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("configured origin", func(t *testing.T) {
		router := newTestRouter(CORSMiddleware([]string{"https://app.example.com"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin is refused", func(t *testing.T) {
		router := newTestRouter(CORSMiddleware([]string{"https://app.example.com"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no origins configured allows all", func(t *testing.T) {
		router := newTestRouter(CORSMiddleware(nil))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	authService := service.NewAuthService(nil, nil, nil, "middleware-secret", "HS256")
	token, err := authService.IssueUserToken(&domain.User{ID: 9, Username: "alice"}, nil)
	require.NoError(t, err)

	router := newTestRouter(OptionalAuthMiddleware(authService))
	router.GET("/", func(c *gin.Context) {
		auth := GetAuthContext(c)
		if auth.UserID != nil {
			c.JSON(http.StatusOK, gin.H{"authenticated": auth.Authenticated, "user_id": *auth.UserID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authenticated": auth.Authenticated})
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedBody   string
	}{
		{"anonymous", "", http.StatusOK, `{"authenticated":false}`},
		{"valid token", "Bearer " + token, http.StatusOK, `{"authenticated":true,"user_id":9}`},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestLogger_AttachedError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := newTestRouter(Logger(logger))
	router.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("query servers: database is closed"))
		c.Status(http.StatusInternalServerError)
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry["error"], "database is closed")
}

func TestErrorHandlerMiddleware_AttachedErrorIsGeneric(t *testing.T) {
	router := newTestRouter(ErrorHandlerMiddleware(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}
