package shortener

import "context"

// CanonicalRepository deduplicates normalized URLs.
type CanonicalRepository interface {
	// FindOrCreate returns the record for url, inserting it on first sight.
	FindOrCreate(ctx context.Context, url string) (*CanonicalURL, error)
	// FindByURL returns ErrNotFound if url was never stored.
	FindByURL(ctx context.Context, url string) (*CanonicalURL, error)
}

// AliasRepository persists aliases. Slugs are unique across all owners;
// implementations return ErrConflict when an insert or rename would break that.
type AliasRepository interface {
	Insert(ctx context.Context, alias *Alias) error
	FindBySlug(ctx context.Context, slug string) (*Alias, error)
	FindByID(ctx context.Context, id string) (*Alias, error)
	// FindDefault returns the owner's generated (non-custom) alias for a canonical URL.
	FindDefault(ctx context.Context, ownerID, canonicalURLID string) (*Alias, error)
	// ListByOwner returns the owner's aliases, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Alias, error)
	UpdateSlug(ctx context.Context, id, slug string, custom bool) (*Alias, error)
	IncrementVisits(ctx context.Context, slug string) error
	// Delete removes the alias and its canonical URL once nothing references it.
	Delete(ctx context.Context, id string) error
}
