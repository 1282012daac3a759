package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore keeps canonical URLs and aliases in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	canonicals map[string]*shortener.CanonicalURL // id -> record
	byURL      map[string]string                  // url -> canonical id
	aliases    map[string]*shortener.Alias        // id -> record
	bySlug     map[string]string                  // slug -> alias id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		canonicals: make(map[string]*shortener.CanonicalURL),
		byURL:      make(map[string]string),
		aliases:    make(map[string]*shortener.Alias),
		bySlug:     make(map[string]string),
	}
}

func (m *MemoryStore) FindOrCreate(_ context.Context, url string) (*shortener.CanonicalURL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byURL[url]; ok {
		c := *m.canonicals[id]

		return &c, nil
	}

	c := &shortener.CanonicalURL{
		ID:        uuid.NewString(),
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	m.canonicals[c.ID] = c
	m.byURL[url] = c.ID

	out := *c

	return &out, nil
}

func (m *MemoryStore) FindByURL(_ context.Context, url string) (*shortener.CanonicalURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byURL[url]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	c := *m.canonicals[id]

	return &c, nil
}

func (m *MemoryStore) Insert(_ context.Context, alias *shortener.Alias) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.bySlug[alias.Slug]; taken {
		return shortener.ErrConflict
	}

	if _, ok := m.canonicals[alias.CanonicalURLID]; !ok {
		return shortener.ErrNotFound
	}

	stored := *alias
	stored.TargetURL = ""
	m.aliases[alias.ID] = &stored
	m.bySlug[alias.Slug] = alias.ID

	return nil
}

func (m *MemoryStore) FindBySlug(_ context.Context, slug string) (*shortener.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.joined(m.aliases[id]), nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (*shortener.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.aliases[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.joined(a), nil
}

func (m *MemoryStore) FindDefault(_ context.Context, ownerID, canonicalURLID string) (*shortener.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *shortener.Alias

	for _, a := range m.aliases {
		if a.Custom || a.OwnerID != ownerID || a.CanonicalURLID != canonicalURLID {
			continue
		}

		if found == nil || a.CreatedAt.Before(found.CreatedAt) {
			found = a
		}
	}

	if found == nil {
		return nil, shortener.ErrNotFound
	}

	return m.joined(found), nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*shortener.Alias, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*shortener.Alias

	for _, a := range m.aliases {
		if a.OwnerID == ownerID {
			out = append(out, m.joined(a))
		}
	}

	slices.SortFunc(out, func(a, b *shortener.Alias) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.Slug, b.Slug)
	})

	return out, nil
}

func (m *MemoryStore) UpdateSlug(_ context.Context, id, slug string, custom bool) (*shortener.Alias, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.aliases[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	if owner, taken := m.bySlug[slug]; taken && owner != id {
		return nil, shortener.ErrConflict
	}

	delete(m.bySlug, a.Slug)
	a.Slug = slug
	a.Custom = custom
	a.UpdatedAt = time.Now().UTC()
	m.bySlug[slug] = id

	return m.joined(a), nil
}

func (m *MemoryStore) IncrementVisits(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return shortener.ErrNotFound
	}

	m.aliases[id].Visits++

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.aliases[id]
	if !ok {
		return shortener.ErrNotFound
	}

	delete(m.aliases, id)
	delete(m.bySlug, a.Slug)

	for _, other := range m.aliases {
		if other.CanonicalURLID == a.CanonicalURLID {
			return nil
		}
	}

	if c, ok := m.canonicals[a.CanonicalURLID]; ok {
		delete(m.byURL, c.URL)
		delete(m.canonicals, c.ID)
	}

	return nil
}

// joined copies a and fills in its target URL. Callers hold the lock.
func (m *MemoryStore) joined(a *shortener.Alias) *shortener.Alias {
	out := *a
	if c, ok := m.canonicals[a.CanonicalURLID]; ok {
		out.TargetURL = c.URL
	}

	return &out
}

var (
	_ shortener.CanonicalRepository = (*MemoryStore)(nil)
	_ shortener.AliasRepository     = (*MemoryStore)(nil)
)
