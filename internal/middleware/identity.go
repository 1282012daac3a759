package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/identity"
)

// Identity reads the owner id from header and stores it in the request context.
// A missing header leaves the request anonymous.
func Identity(header string) func(ctx huma.Context, next func(huma.Context)) {
	if header == "" {
		header = identity.DefaultHeader
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		owner := identity.FromHeader(ctx.Header(header))

		next(huma.WithContext(ctx, identity.ContextWithOwner(ctx.Context(), owner)))
	}
}
