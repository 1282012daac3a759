package ratelimit

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// LimitConfig allows Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// EndpointConfig is attached to huma operations through their Metadata.
type EndpointConfig struct {
	Limits []LimitConfig
	// Disabled skips rate limiting for the endpoint.
	Disabled bool
}

// PerMinute is shorthand for a single per-minute limit.
func PerMinute(max int64) EndpointConfig {
	return EndpointConfig{Limits: []LimitConfig{{Window: time.Minute, Max: max}}}
}

// GetEndpointConfig returns the config of the operation being served, or nil.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
