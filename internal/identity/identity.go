// Package identity carries the caller's owner id through a request.
package identity

import (
	"context"
	"strings"
)

// DefaultHeader is the request header holding the owner id.
const DefaultHeader = "X-User-ID"

type ownerKey struct{}

// Owner identifies who a request acts for. An empty ID is anonymous.
type Owner struct {
	ID string
}

// FromHeader builds an owner from a raw header value.
func FromHeader(value string) Owner {
	return Owner{ID: strings.TrimSpace(value)}
}

// ContextWithOwner adds the owner to ctx.
func ContextWithOwner(ctx context.Context, owner Owner) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFromContext returns the owner stored in ctx, or an anonymous one.
func OwnerFromContext(ctx context.Context) Owner {
	if v, ok := ctx.Value(ownerKey{}).(Owner); ok {
		return v
	}

	return Owner{}
}
