package shortener

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedSlugs collide with routes served next to the redirect.
var reservedSlugs = map[string]struct{}{
	"api":      {},
	"health":   {},
	"docs":     {},
	"openapi":  {},
	"schemas":  {},
	"404":      {},
	"login":    {},
	"logout":   {},
	"register": {},
	"admin":    {},
	"static":   {},
	"assets":   {},
	"favicon":  {},
}

// IsReserved reports whether slug is reserved, ignoring case.
func IsReserved(slug string) bool {
	_, ok := reservedSlugs[strings.ToLower(slug)]

	return ok
}

// ValidSlug reports whether slug uses only letters, digits, '_' and '-'.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}
