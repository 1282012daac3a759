package container

import (
	"time"

	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/cache"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/serroba/shortlink/internal/visits"
	"go.uber.org/zap"
)

const memoryCacheEntries = 100_000

// Repositories groups the alias persistence ports backed by one store.
type Repositories struct {
	Canonical shortener.CanonicalRepository
	Aliases   shortener.AliasRepository
}

// RepositoryPackage provides the alias store selected by Options.Storage.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Repositories, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Storage == "postgres" {
			pg := do.MustInvoke[*Postgres](i)
			s := store.NewPostgresStore(pg.Pool)

			return &Repositories{Canonical: s, Aliases: s}, nil
		}

		s := store.NewMemoryStore()

		return &Repositories{Canonical: s, Aliases: s}, nil
	})
}

// CachePackage provides the alias cache selected by Options.CacheBackend.
func CachePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (cache.Cache, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.CacheBackend == "redis" {
			return cache.NewRedisCache(do.MustInvoke[*Redis](i).UniversalClient), nil
		}

		c, err := cache.NewMemoryCache(memoryCacheEntries)
		if err != nil {
			return nil, err
		}

		return c, nil
	})
}

// VisitsPackage provides the background visit dispatcher.
func VisitsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*visits.Dispatcher, error) {
		opts := do.MustInvoke[*Options](i)
		repos := do.MustInvoke[*Repositories](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return visits.NewDispatcher(repos.Aliases, visits.Config{
			Workers:   opts.VisitWorkers,
			QueueSize: opts.VisitQueueSize,
		}, logger), nil
	})
}

// ServicePackage provides the alias service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repos := do.MustInvoke[*Repositories](i)

		return shortener.NewService(
			repos.Canonical,
			repos.Aliases,
			do.MustInvoke[cache.Cache](i),
			do.MustInvoke[*visits.Dispatcher](i),
			shortener.Config{
				SlugLength:           opts.SlugLength,
				MaxRandomAttempts:    opts.MaxRandomAttempts,
				CacheTTL:             time.Duration(opts.CacheTTLSeconds) * time.Second,
				AnonymousOwner:       opts.AnonymousOwner,
				AnonymousCustomSlugs: opts.AnonymousCustomSlugs,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the limiter. Counters share the cache backend.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.CacheBackend == "redis" {
			return ratelimit.NewLimiter(store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).UniversalClient)), nil
		}

		return ratelimit.NewLimiter(store.NewRateLimitMemoryStore()), nil
	})
}
