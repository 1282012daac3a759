package shortener

import "time"

// CanonicalURL is the deduplicated, normalized form of a target URL.
// Many aliases may reference one canonical URL.
type CanonicalURL struct {
	ID        string
	URL       string
	CreatedAt time.Time
}

// Alias maps a public slug to a canonical URL on behalf of an owner.
type Alias struct {
	ID             string
	Slug           string
	OwnerID        string
	CanonicalURLID string
	TargetURL      string // joined from the canonical URL, never stored on the alias row
	Visits         int64
	Custom         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stats summarizes one owner's aliases.
type Stats struct {
	TotalAliases int
	TotalVisits  int64
	Top          []*Alias
}
