package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHandler_Check(t *testing.T) {
	t.Run("returns ok when every dependency is healthy", func(t *testing.T) {
		handler := health.NewHandler(
			health.Dependency{Name: "redis", Checker: &mockChecker{}},
			health.Dependency{Name: "postgres", Checker: &mockChecker{}},
		)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, map[string]string{"redis": "healthy", "postgres": "healthy"}, resp.Body.Dependencies)
	})

	t.Run("returns degraded when one dependency fails", func(t *testing.T) {
		handler := health.NewHandler(
			health.Dependency{Name: "redis", Checker: &mockChecker{}},
			health.Dependency{Name: "postgres", Checker: &mockChecker{err: errors.New("connection refused")}},
		)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Dependencies["postgres"])
		assert.Equal(t, "healthy", resp.Body.Dependencies["redis"])
	})

	t.Run("skips nil checkers", func(t *testing.T) {
		handler := health.NewHandler(health.Dependency{Name: "redis"})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Empty(t, resp.Body.Dependencies)
	})
}

func TestRedisChecker(t *testing.T) {
	t.Run("pings a live server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, health.NewRedisChecker(client).Ping(context.Background()))
	})

	t.Run("fails when the server is gone", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)

		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})

		t.Cleanup(func() { _ = client.Close() })

		mr.Close()

		assert.Error(t, health.NewRedisChecker(client).Ping(context.Background()))
	})
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler(
		health.Dependency{Name: "redis", Checker: &mockChecker{err: errors.New("down")}},
	))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Dependencies["redis"])
}
