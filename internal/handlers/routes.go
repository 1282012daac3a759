package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
)

// Limits holds the per-route rate limits.
type Limits struct {
	Create   ratelimit.EndpointConfig
	Update   ratelimit.EndpointConfig
	Delete   ratelimit.EndpointConfig
	Redirect ratelimit.EndpointConfig
}

// DefaultLimits returns the per-minute limits of the public API.
func DefaultLimits() Limits {
	return Limits{
		Create:   ratelimit.PerMinute(10),
		Update:   ratelimit.PerMinute(15),
		Delete:   ratelimit.PerMinute(10),
		Redirect: ratelimit.PerMinute(1000),
	}
}

// RegisterRoutes registers all alias routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, h *URLHandler, limits Limits) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-alias",
		Method:        http.MethodPost,
		Path:          "/api/urls",
		Summary:       "Create alias",
		Description:   "Shortens a URL. Without a custom slug the caller gets the same alias for the same URL.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata:      map[string]any{ratelimit.MetadataKey: limits.Create},
	}, h.CreateAlias)

	huma.Register(api, huma.Operation{
		OperationID: "list-aliases",
		Method:      http.MethodGet,
		Path:        "/api/urls",
		Summary:     "List aliases",
		Description: "Lists the caller's aliases, newest first.",
		Tags:        []string{"URLs"},
	}, h.ListAliases)

	huma.Register(api, huma.Operation{
		OperationID: "alias-stats",
		Method:      http.MethodGet,
		Path:        "/api/urls/stats",
		Summary:     "Alias statistics",
		Tags:        []string{"URLs"},
	}, h.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "get-alias",
		Method:      http.MethodGet,
		Path:        "/api/urls/{id}",
		Summary:     "Get alias",
		Tags:        []string{"URLs"},
	}, h.GetAlias)

	huma.Register(api, huma.Operation{
		OperationID: "update-alias",
		Method:      http.MethodPut,
		Path:        "/api/urls/{id}",
		Summary:     "Rename alias",
		Tags:        []string{"URLs"},
		Metadata:    map[string]any{ratelimit.MetadataKey: limits.Update},
	}, h.UpdateAlias)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-alias",
		Method:        http.MethodDelete,
		Path:          "/api/urls/{id}",
		Summary:       "Delete alias",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
		Metadata:      map[string]any{ratelimit.MetadataKey: limits.Delete},
	}, h.DeleteAlias)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{alias}",
		Summary:     "Redirect to target URL",
		Description: "Redirects to the URL behind the alias.",
		Tags:        []string{"URLs"},
		Metadata:    map[string]any{ratelimit.MetadataKey: limits.Redirect},
	}, h.Redirect)
}
