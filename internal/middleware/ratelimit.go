package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware applying the fixed-window limits
// declared in each operation's metadata under ratelimit.MetadataKey.
// Operations without limits pass through untouched.
//
// Counters are keyed by the operation's route template (e.g. "/{alias}"), so
// all requests matching one route share a counter per client.
func RateLimiter(api huma.API, limiter *ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg == nil || cfg.Disabled || len(cfg.Limits) == 0 {
			next(ctx)

			return
		}

		route := ctx.Method() + " " + ctx.Operation().Path
		ip := clientIP(ctx)

		decision, err := limiter.Allow(ctx.Context(), ip, route, cfg.Limits)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("route", route), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "rate limit unavailable", err)

			return
		}

		ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
		ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(int64(math.Ceil(decision.Reset.Seconds())), 10))

		if !decision.Allowed {
			logger.Warn("rate limit exceeded",
				zap.String("route", route),
				zap.String("client_ip", ip),
				zap.Int64("max", decision.Limit),
				zap.Duration("window", decision.Window),
			)

			msg := fmt.Sprintf("rate limit exceeded: %d requests in %s", decision.Limit, decision.Window)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return
		}

		next(ctx)
	}
}
