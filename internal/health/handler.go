package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const checkTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts a redis client to Checker.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewPostgresChecker returns the pool itself; pgxpool.Pool already pings.
func NewPostgresChecker(pool *pgxpool.Pool) Checker {
	return pool
}

// Dependency is a named Checker.
type Dependency struct {
	Name    string
	Checker Checker
}

// Handler handles health check operations.
type Handler struct {
	deps []Dependency
}

// NewHandler creates a health handler over the given dependencies. Nil
// checkers are skipped, so unused backends stay out of the report.
func NewHandler(deps ...Dependency) *Handler {
	h := &Handler{}

	for _, d := range deps {
		if d.Checker != nil {
			h.deps = append(h.deps, d)
		}
	}

	return h
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status       string            `example:"ok"                          json:"status"`
		Dependencies map[string]string `doc:"Dependency name to its status" json:"dependencies"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Dependencies = make(map[string]string, len(h.deps))

	for _, d := range h.deps {
		pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := d.Checker.Ping(pingCtx)

		cancel()

		if err != nil {
			resp.Body.Dependencies[d.Name] = "unhealthy"
			resp.Body.Status = "degraded"

			continue
		}

		resp.Body.Dependencies[d.Name] = "healthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Tags:        []string{"Health"},
	}, h.Check)
}
