package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		publishers := do.MustInvoke[*Publishers](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Identity(opts.OwnerHeader))
		api.UseMiddleware(middleware.RateLimiter(api, do.MustInvoke[*ratelimit.Limiter](i), logger))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			opts.BaseURL,
			opts.NotFoundURL,
			publishers.AliasCreated,
			publishers.AliasVisited,
			logger,
		)

		health.RegisterRoutes(api, health.NewHandler(healthDependencies(i, opts)...))
		handlers.RegisterRoutes(api, urlHandler, handlers.DefaultLimits())

		return api, nil
	})
}

func healthDependencies(i *do.Injector, opts *Options) []health.Dependency {
	var deps []health.Dependency

	if opts.CacheBackend == "redis" || opts.EventsEnabled {
		deps = append(deps, health.Dependency{
			Name:    "redis",
			Checker: health.NewRedisChecker(do.MustInvoke[*Redis](i).UniversalClient),
		})
	}

	if opts.Storage == "postgres" {
		deps = append(deps, health.Dependency{
			Name:    "postgres",
			Checker: health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool),
		})
	}

	return deps
}
