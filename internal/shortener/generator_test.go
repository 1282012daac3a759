package shortener_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup struct {
	aliases map[string]*shortener.Alias
	err     error
}

func (m *mapLookup) FindBySlug(_ context.Context, slug string) (*shortener.Alias, error) {
	if m.err != nil {
		return nil, m.err
	}

	if a, ok := m.aliases[slug]; ok {
		return a, nil
	}

	return nil, shortener.ErrNotFound
}

func (m *mapLookup) take(owner, url string, slugs ...string) {
	for _, s := range slugs {
		m.aliases[s] = &shortener.Alias{Slug: s, OwnerID: owner, TargetURL: url}
	}
}

func newLookup() *mapLookup {
	return &mapLookup{aliases: make(map[string]*shortener.Alias)}
}

const exampleURL = "https://example.com/"

var u1Candidates = []string{"HYO4r0", "HYO4F5", "HYO4PN", "HYO4wv", "HYO4ph", "HYO4cf", "HYO49J"}

func TestGenerator_Candidates(t *testing.T) {
	g := shortener.NewGenerator(newLookup(), 6, 8)

	t.Run("base then six sliding-window suffixes", func(t *testing.T) {
		assert.Equal(t, u1Candidates, g.Candidates(exampleURL, "u1"))
	})

	t.Run("other owners get other slugs", func(t *testing.T) {
		assert.Equal(t,
			[]string{"HYO4q0", "HYO4F4", "HYO4PM", "HYO4wu", "HYO4pg", "HYO4ce", "HYO49I"},
			g.Candidates(exampleURL, "u2"))
		assert.Equal(t,
			[]string{"1wZNn0", "1wZNSJ", "1wZNAF", "1wZNvf", "1wZN65", "1wZN65", "1wZN1f"},
			g.Candidates(exampleURL, shortener.AnonymousOwner))
	})

	t.Run("suffix windows past the end of the hash read as zero", func(t *testing.T) {
		// hash("", "") is "58", so only the first window has digits left.
		assert.Equal(t,
			[]string{"W00000", "W00008", "W00000", "W00000", "W00000", "W00000", "W00000"},
			g.Candidates("", ""))
	})

	t.Run("short encodings are right-padded", func(t *testing.T) {
		assert.Equal(t, "W00000", g.Candidates("", "")[0])
		assert.Equal(t, "uz0000", g.Candidates("", "a")[0])
	})

	t.Run("length is configurable", func(t *testing.T) {
		assert.Equal(t, "HYO4r000", shortener.NewGenerator(newLookup(), 8, 1).Candidates(exampleURL, "u1")[0])
		assert.Equal(t, "HYO", shortener.NewGenerator(newLookup(), 3, 1).Candidates(exampleURL, "u1")[0])
	})

	t.Run("length below two is raised", func(t *testing.T) {
		g := shortener.NewGenerator(newLookup(), 1, 1)

		assert.Len(t, g.Candidates(exampleURL, "u1")[0], 2)
	})
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("free candidate", func(t *testing.T) {
		g := shortener.NewGenerator(newLookup(), 6, 8)

		slug, err := g.Generate(ctx, exampleURL, "u1", nil)

		require.NoError(t, err)
		assert.Equal(t, "HYO4r0", slug)
	})

	t.Run("is stable across calls", func(t *testing.T) {
		g := shortener.NewGenerator(newLookup(), 6, 8)

		first, _ := g.Generate(ctx, exampleURL, "u1", nil)
		second, _ := g.Generate(ctx, exampleURL, "u1", nil)

		assert.Equal(t, first, second)
	})

	t.Run("reuses a slug owned by the same owner and url", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u1", exampleURL, "HYO4r0")

		slug, err := shortener.NewGenerator(lookup, 6, 8).Generate(ctx, exampleURL, "u1", nil)

		require.NoError(t, err)
		assert.Equal(t, "HYO4r0", slug)
	})

	t.Run("same owner with another url is a collision", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u1", "https://other.example/", "HYO4r0")

		slug, err := shortener.NewGenerator(lookup, 6, 8).Generate(ctx, exampleURL, "u1", nil)

		require.NoError(t, err)
		assert.Equal(t, "HYO4F5", slug)
	})

	t.Run("walks the suffixes in order", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u9", "https://other.example/", u1Candidates[:4]...)

		slug, err := shortener.NewGenerator(lookup, 6, 8).Generate(ctx, exampleURL, "u1", nil)

		require.NoError(t, err)
		assert.Equal(t, "HYO4ph", slug)
	})

	t.Run("falls back to random suffixes", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u9", "https://other.example/", u1Candidates...)

		g := shortener.NewGenerator(lookup, 6, 8, shortener.WithRandomSource(func(int) string { return "zz" }))

		slug, err := g.Generate(ctx, exampleURL, "u1", nil)

		require.NoError(t, err)
		assert.Equal(t, "HYO4zz", slug)
	})

	t.Run("keeps the current alias instead of going random", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u9", "https://other.example/", u1Candidates...)

		calls := 0
		g := shortener.NewGenerator(lookup, 6, 8, shortener.WithRandomSource(func(int) string {
			calls++

			return "zz"
		}))

		slug, err := g.Generate(ctx, exampleURL, "u1", &shortener.Alias{Slug: "HYO4q7"})

		require.NoError(t, err)
		assert.Equal(t, "HYO4q7", slug)
		assert.Zero(t, calls)
	})

	t.Run("random attempts are capped", func(t *testing.T) {
		lookup := newLookup()
		lookup.take("u9", "https://other.example/", u1Candidates...)
		lookup.take("u9", "https://other.example/", "HYO4zz")

		calls := 0
		g := shortener.NewGenerator(lookup, 6, 3, shortener.WithRandomSource(func(int) string {
			calls++

			return "zz"
		}))

		_, err := g.Generate(ctx, exampleURL, "u1", nil)

		require.ErrorIs(t, err, shortener.ErrConflict)
		assert.Equal(t, 3, calls)
	})

	t.Run("lookup errors propagate", func(t *testing.T) {
		lookup := newLookup()
		lookup.err = errors.New("connection refused")

		_, err := shortener.NewGenerator(lookup, 6, 8).Generate(ctx, exampleURL, "u1", nil)

		assert.ErrorIs(t, err, lookup.err)
	})
}

func TestReservedAndValidSlugs(t *testing.T) {
	assert.True(t, shortener.IsReserved("api"))
	assert.True(t, shortener.IsReserved("Health"))
	assert.False(t, shortener.IsReserved("my-link"))

	assert.True(t, shortener.ValidSlug("my_Link-2"))
	assert.False(t, shortener.ValidSlug(""))
	assert.False(t, shortener.ValidSlug("has space"))
	assert.False(t, shortener.ValidSlug("slash/es"))
	assert.False(t, shortener.ValidSlug("ümlaut"))
}
