package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teamsteps/teamsteps/internal/config"
	"github.com/teamsteps/teamsteps/internal/identity"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/internal/users/repository"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := users.New(context.Background(), repository.NewMemoryRepo())
	require.NoError(t, err)
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}
	return newRouter(cfg, store, identity.NewResolver("secret", store), nil)
}

func TestHealthAndReady(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status string                 `json:"status"`
		Deps   map[string]interface{} `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "ready", body.Status)
	require.Equal(t, "memory", body.Deps["backend"])
}

func TestCORSPreflight(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/mySteps", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterServesAPIAndSwagger(t *testing.T) {
	r := testRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterKeysAuthenticatedCallersByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store, err := users.New(ctx, repository.NewMemoryRepo())
	require.NoError(t, err)
	alToken, err := store.AddUser(ctx, "Al", "Red")
	require.NoError(t, err)
	boToken, err := store.AddUser(ctx, "Bo", "Blue")
	require.NoError(t, err)

	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}}
	r := newRouter(cfg, store, identity.NewResolver("secret", store), nil)

	me := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("token", token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, me(alToken))
	require.Equal(t, http.StatusTooManyRequests, me(alToken))
	require.Equal(t, http.StatusOK, me(boToken))

	// ops endpoints are not limited
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestNewRateLimiterDisabled(t *testing.T) {
	require.Nil(t, newRateLimiter(&config.Config{}, nil))
}
