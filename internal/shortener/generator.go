package shortener

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/serroba/shortlink/internal/base62"
)

const (
	// MinSlugLength leaves room for the two-character collision suffix.
	MinSlugLength = 2

	suffixLength       = 2
	suffixSpace        = 62 * 62
	deterministicTries = 6
	hashWindow         = 10
)

// SlugLookup finds an alias by slug, returning ErrNotFound when it is free.
type SlugLookup interface {
	FindBySlug(ctx context.Context, slug string) (*Alias, error)
}

// RandomSource returns n random Base62 characters.
type RandomSource func(n int) string

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithRandomSource replaces the source of fallback suffixes.
func WithRandomSource(src RandomSource) GeneratorOption {
	return func(g *Generator) {
		g.random = src
	}
}

// Generator derives default aliases from a (normalized URL, owner) pair.
//
// The first candidate is the Base62 form of the namespaced hash fitted to the
// configured length. On collision the last two characters are replaced by up
// to six suffixes read from windows sliding one digit further into the hash,
// and only then by random suffixes.
type Generator struct {
	lookup            SlugLookup
	length            int
	maxRandomAttempts int
	random            RandomSource
}

// NewGenerator creates a generator producing slugs of length characters.
// Lengths below MinSlugLength are raised to it.
func NewGenerator(lookup SlugLookup, length, maxRandomAttempts int, opts ...GeneratorOption) *Generator {
	g := &Generator{
		lookup:            lookup,
		length:            max(length, MinSlugLength),
		maxRandomAttempts: max(maxRandomAttempts, 1),
		random:            base62.RandomString,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Candidates returns the deterministic slugs for the pair in the order they
// are tried: the base candidate followed by the suffixed ones.
func (g *Generator) Candidates(normalizedURL, ownerID string) []string {
	digits := NamespacedHash(normalizedURL, ownerID)
	base := g.fit(base62.Encode(parseWindow(digits)))

	out := make([]string, 0, deterministicTries+1)
	out = append(out, base)

	for attempt := 1; attempt <= deterministicTries; attempt++ {
		window := digits[min(attempt, len(digits)):]
		suffix := base62.Encode(parseWindow(window) % suffixSpace)
		out = append(out, base[:g.length-suffixLength]+leftPad(suffix))
	}

	return out
}

// Generate returns a slug that is free or already belongs to the same owner
// and URL. current is the owner's existing default alias for the URL, if any;
// it is kept when every deterministic candidate is taken by someone else.
func (g *Generator) Generate(ctx context.Context, normalizedURL, ownerID string, current *Alias) (string, error) {
	candidates := g.Candidates(normalizedURL, ownerID)

	for _, slug := range candidates {
		ok, err := g.available(ctx, slug, normalizedURL, ownerID)
		if err != nil {
			return "", err
		}

		if ok {
			return slug, nil
		}
	}

	if current != nil {
		return current.Slug, nil
	}

	prefix := candidates[0][:g.length-suffixLength]

	for range g.maxRandomAttempts {
		slug := prefix + g.random(suffixLength)

		ok, err := g.available(ctx, slug, normalizedURL, ownerID)
		if err != nil {
			return "", err
		}

		if ok {
			return slug, nil
		}
	}

	return "", ErrConflict
}

func (g *Generator) available(ctx context.Context, slug, normalizedURL, ownerID string) (bool, error) {
	if IsReserved(slug) {
		return false, nil
	}

	existing, err := g.lookup.FindBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	return existing.OwnerID == ownerID && existing.TargetURL == normalizedURL, nil
}

func (g *Generator) fit(encoded string) string {
	if len(encoded) >= g.length {
		return encoded[:g.length]
	}

	return encoded + strings.Repeat(base62.Alphabet[:1], g.length-len(encoded))
}

// parseWindow reads at most the first ten digits, which always fit in uint64.
// An exhausted window reads as zero.
func parseWindow(digits string) uint64 {
	if len(digits) > hashWindow {
		digits = digits[:hashWindow]
	}

	n, _ := strconv.ParseUint(digits, 10, 64)

	return n
}

func leftPad(s string) string {
	if len(s) >= suffixLength {
		return s
	}

	return strings.Repeat(base62.Alphabet[:1], suffixLength-len(s)) + s
}
