package shortener

import "errors"

var (
	// ErrValidation reports a malformed URL or slug.
	ErrValidation = errors.New("validation failed")
	// ErrConflict reports a slug already taken by another owner or URL.
	ErrConflict = errors.New("alias already exists")
	// ErrNotFound reports an alias or canonical URL that does not exist.
	ErrNotFound = errors.New("alias not found")
	// ErrUnauthorized reports an operation the owner is not allowed to perform.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable reports a failing store.
	ErrUnavailable = errors.New("store unavailable")
)
