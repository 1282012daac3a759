package shortener

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/cache"
	"github.com/serroba/shortlink/internal/urlnorm"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// AnonymousOwner is the owner of aliases created without an identity.
	AnonymousOwner = "00000000-0000-0000-0000-000000000000"

	// DefaultCacheTTL bounds how long a resolved alias stays cached.
	DefaultCacheTTL = 24 * time.Hour

	topAliases     = 5
	insertAttempts = 3
	cachePrefix    = "url:"
	lookupTimeout  = 5 * time.Second
)

// VisitDispatcher records a visit without blocking the caller.
type VisitDispatcher interface {
	Dispatch(slug string)
}

// Config tunes the service.
type Config struct {
	SlugLength        int
	MaxRandomAttempts int
	CacheTTL          time.Duration
	// AnonymousOwner overrides the package default sentinel.
	AnonymousOwner string
	// AnonymousCustomSlugs lets callers without an identity pick their slug.
	AnonymousCustomSlugs bool
}

// ShortenRequest is the input of Shorten.
type ShortenRequest struct {
	URL        string `validate:"required,max=2048"`
	CustomSlug string `validate:"omitempty,max=64,slug"`
	OwnerID    string `validate:"max=128"`
}

// Service creates, resolves and manages aliases.
type Service struct {
	canonical CanonicalRepository
	aliases   AliasRepository
	cache     cache.Cache
	visits    VisitDispatcher
	generator *Generator
	validate  *validator.Validate
	group     singleflight.Group
	cfg       Config
	logger    *zap.Logger
}

// NewService wires a Service. Zero config values fall back to defaults.
func NewService(
	canonical CanonicalRepository,
	aliases AliasRepository,
	c cache.Cache,
	visits VisitDispatcher,
	cfg Config,
	logger *zap.Logger,
	opts ...GeneratorOption,
) *Service {
	if cfg.SlugLength == 0 {
		cfg.SlugLength = 6
	}

	if cfg.MaxRandomAttempts == 0 {
		cfg.MaxRandomAttempts = 64
	}

	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	if cfg.AnonymousOwner == "" {
		cfg.AnonymousOwner = AnonymousOwner
	}

	return &Service{
		canonical: canonical,
		aliases:   aliases,
		cache:     c,
		visits:    visits,
		generator: NewGenerator(aliases, cfg.SlugLength, cfg.MaxRandomAttempts, opts...),
		validate:  NewValidator(),
		cfg:       cfg,
		logger:    logger,
	}
}

// NewValidator returns a validator that knows the "slug" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})

	return v
}

// Shorten creates an alias for req.URL. Without a custom slug the owner keeps
// at most one generated alias per URL, and shortening again returns it,
// renaming it if its deterministic slug has become available.
func (s *Service) Shorten(ctx context.Context, req ShortenRequest) (*Alias, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	owner := req.OwnerID
	if owner == "" {
		owner = s.cfg.AnonymousOwner
	}

	normalized := urlnorm.Normalize(req.URL)
	if err := s.validate.Var(normalized, "http_url"); err != nil {
		return nil, fmt.Errorf("%w: malformed url %q", ErrValidation, req.URL)
	}

	if req.CustomSlug != "" {
		if owner == s.cfg.AnonymousOwner && !s.cfg.AnonymousCustomSlugs {
			return nil, fmt.Errorf("%w: custom slugs require an identity", ErrUnauthorized)
		}

		if IsReserved(req.CustomSlug) {
			return nil, fmt.Errorf("%w: slug %q is reserved", ErrConflict, req.CustomSlug)
		}
	}

	alias, err := s.create(ctx, normalized, owner, req.CustomSlug)
	if err != nil {
		return nil, err
	}

	s.warm(ctx, alias.Slug, alias.TargetURL)

	return alias, nil
}

// create resolves the canonical record and attaches an alias to it. Deleting
// the last alias of a URL removes its canonical record, so a row that
// vanishes under the write sends the whole attempt back to FindOrCreate.
func (s *Service) create(ctx context.Context, normalized, owner, customSlug string) (*Alias, error) {
	var err error

	for range insertAttempts {
		var canonical *CanonicalURL

		canonical, err = s.canonical.FindOrCreate(ctx, normalized)
		if err != nil {
			return nil, storeErr("find or create canonical url", err)
		}

		var alias *Alias
		if customSlug != "" {
			alias, err = s.createCustom(ctx, canonical, owner, customSlug)
		} else {
			alias, err = s.createDefault(ctx, canonical, owner)
		}

		if err == nil {
			return alias, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		s.logger.Debug("canonical url removed during create, retrying",
			zap.String("url", normalized),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("%w: canonical url kept disappearing: %w", ErrUnavailable, err)
}

func (s *Service) createCustom(ctx context.Context, canonical *CanonicalURL, owner, slug string) (*Alias, error) {
	existing, err := s.aliases.FindBySlug(ctx, slug)

	switch {
	case err == nil:
		if existing.OwnerID == owner && existing.CanonicalURLID == canonical.ID {
			return existing, nil
		}

		return nil, fmt.Errorf("%w: %q", ErrConflict, slug)
	case !errors.Is(err, ErrNotFound):
		return nil, storeErr("find alias", err)
	}

	alias := newAlias(canonical, owner, slug, true)
	if err := s.aliases.Insert(ctx, alias); err != nil {
		return nil, storeErr("insert alias", err)
	}

	return alias, nil
}

// createDefault retries when a concurrent writer takes the generated slug
// between the existence check and the write; the next round sees that row.
func (s *Service) createDefault(ctx context.Context, canonical *CanonicalURL, owner string) (*Alias, error) {
	for range insertAttempts {
		current, err := s.aliases.FindDefault(ctx, owner, canonical.ID)
		if errors.Is(err, ErrNotFound) {
			current = nil
		} else if err != nil {
			return nil, storeErr("find default alias", err)
		}

		slug, err := s.generator.Generate(ctx, canonical.URL, owner, current)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return nil, err
			}

			return nil, storeErr("generate alias", err)
		}

		var alias *Alias

		switch {
		case current != nil && current.Slug == slug:
			return current, nil
		case current != nil:
			alias, err = s.renameDefault(ctx, current, slug)
		default:
			alias = newAlias(canonical, owner, slug, false)
			err = s.aliases.Insert(ctx, alias)
		}

		if err == nil {
			return alias, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, storeErr("save alias", err)
		}

		if existing, ok := s.ownedBy(ctx, slug, owner, canonical.ID); ok {
			return existing, nil
		}

		s.logger.Info("generated alias taken concurrently, retrying",
			zap.String("alias", slug),
			zap.String("owner", owner),
		)
	}

	return nil, fmt.Errorf("%w: no free alias after %d attempts", ErrConflict, insertAttempts)
}

func (s *Service) renameDefault(ctx context.Context, current *Alias, slug string) (*Alias, error) {
	if err := s.invalidate(ctx, current.Slug); err != nil {
		return nil, err
	}

	updated, err := s.aliases.UpdateSlug(ctx, current.ID, slug, false)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, current.Slug)

	return updated, nil
}

func (s *Service) ownedBy(ctx context.Context, slug, owner, canonicalID string) (*Alias, bool) {
	existing, err := s.aliases.FindBySlug(ctx, slug)
	if err != nil {
		return nil, false
	}

	return existing, existing.OwnerID == owner && existing.CanonicalURLID == canonicalID
}

// Resolve returns the target URL of slug and records a visit.
//
// A cache hit returns at once and hands the visit to the dispatcher. A miss
// reads the store, warms the cache and records the visit before returning.
// Cache failures count as misses; visit failures are only logged.
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, slug)
	}

	target, err := s.cache.Get(ctx, cacheKey(slug))
	if err == nil {
		s.visits.Dispatch(slug)

		return target, nil
	}

	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("cache lookup failed, reading store",
			zap.String("alias", slug),
			zap.Error(err),
		)
	}

	v, err, _ := s.group.Do(slug, func() (any, error) {
		// Shared by every collapsed caller, so no single caller may cancel it.
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		alias, err := s.aliases.FindBySlug(lookupCtx, slug)
		if err != nil {
			return "", err
		}

		s.warm(lookupCtx, slug, alias.TargetURL)
		s.confirmWarm(lookupCtx, slug, alias.TargetURL)

		return alias.TargetURL, nil
	})
	if err != nil {
		return "", storeErr("find alias", err)
	}

	if err := s.aliases.IncrementVisits(ctx, slug); err != nil {
		s.logger.Warn("failed to increment visits",
			zap.String("alias", slug),
			zap.Error(err),
		)
	}

	return v.(string), nil
}

// Rename changes the slug of one of owner's aliases.
func (s *Service) Rename(ctx context.Context, id, owner, slug string) (*Alias, error) {
	if err := s.validate.Var(slug, "required,max=64,slug"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if IsReserved(slug) {
		return nil, fmt.Errorf("%w: slug %q is reserved", ErrConflict, slug)
	}

	alias, err := s.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if alias.Slug == slug {
		return alias, nil
	}

	if _, err := s.aliases.FindBySlug(ctx, slug); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrConflict, slug)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, storeErr("find alias", err)
	}

	if err := s.invalidate(ctx, alias.Slug); err != nil {
		return nil, err
	}

	updated, err := s.aliases.UpdateSlug(ctx, alias.ID, slug, true)
	if err != nil {
		return nil, storeErr("rename alias", err)
	}

	s.evict(ctx, alias.Slug)
	s.warm(ctx, updated.Slug, updated.TargetURL)

	return updated, nil
}

// Delete removes one of owner's aliases.
func (s *Service) Delete(ctx context.Context, id, owner string) error {
	alias, err := s.Get(ctx, id, owner)
	if err != nil {
		return err
	}

	if err := s.invalidate(ctx, alias.Slug); err != nil {
		return err
	}

	if err := s.aliases.Delete(ctx, alias.ID); err != nil {
		return storeErr("delete alias", err)
	}

	s.evict(ctx, alias.Slug)

	return nil
}

// Get returns one of owner's aliases. Aliases of other owners are reported
// as not found.
func (s *Service) Get(ctx context.Context, id, owner string) (*Alias, error) {
	if err := s.requireIdentity(owner); err != nil {
		return nil, err
	}

	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	alias, err := s.aliases.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find alias", err)
	}

	if alias.OwnerID != owner {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	return alias, nil
}

// List returns owner's aliases, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]*Alias, error) {
	if err := s.requireIdentity(owner); err != nil {
		return nil, err
	}

	aliases, err := s.aliases.ListByOwner(ctx, owner)
	if err != nil {
		return nil, storeErr("list aliases", err)
	}

	return aliases, nil
}

// Stats counts owner's aliases and visits and picks the most visited ones.
func (s *Service) Stats(ctx context.Context, owner string) (*Stats, error) {
	aliases, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalAliases: len(aliases)}
	for _, a := range aliases {
		stats.TotalVisits += a.Visits
	}

	top := slices.Clone(aliases)
	slices.SortStableFunc(top, func(a, b *Alias) int {
		return cmp.Compare(b.Visits, a.Visits)
	})

	stats.Top = top[:min(topAliases, len(top))]

	return stats, nil
}

func (s *Service) requireIdentity(owner string) error {
	if owner == "" || owner == s.cfg.AnonymousOwner {
		return fmt.Errorf("%w: identity required", ErrUnauthorized)
	}

	return nil
}

// invalidate drops the cached target before a write. The write must not
// proceed if the entry could survive it.
func (s *Service) invalidate(ctx context.Context, slug string) error {
	if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
		return fmt.Errorf("%w: invalidate cache for %q: %w", ErrUnavailable, slug, err)
	}

	return nil
}

// evict drops the cached target after a write, catching reads that
// re-populated it in between.
func (s *Service) evict(ctx context.Context, slug string) {
	if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
		s.logger.Error("failed to evict alias from cache",
			zap.String("alias", slug),
			zap.Error(err),
		)
	}
}

func (s *Service) warm(ctx context.Context, slug, target string) {
	if err := s.cache.Set(ctx, cacheKey(slug), target, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache alias",
			zap.String("alias", slug),
			zap.Error(err),
		)
	}
}

// confirmWarm re-reads the alias after warming the cache. A delete or rename
// committed between the first read and the warm has already run its
// evictions, so the entry just written would outlive the row.
func (s *Service) confirmWarm(ctx context.Context, slug, target string) {
	alias, err := s.aliases.FindBySlug(ctx, slug)
	if err == nil && alias.TargetURL == target {
		return
	}

	s.logger.Debug("alias changed while warming cache",
		zap.String("alias", slug),
		zap.Error(err),
	)
	s.evict(ctx, slug)
}

func newAlias(canonical *CanonicalURL, owner, slug string, custom bool) *Alias {
	now := time.Now().UTC()

	return &Alias{
		ID:             uuid.NewString(),
		Slug:           slug,
		OwnerID:        owner,
		CanonicalURLID: canonical.ID,
		TargetURL:      canonical.URL,
		Custom:         custom,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func cacheKey(slug string) string {
	return cachePrefix + slug
}

func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
