package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/identity"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles alias operations.
type URLHandler struct {
	service        *shortener.Service
	baseURL        string
	notFoundURL    string
	publishCreated messaging.Publish[analytics.AliasCreatedEvent]
	publishVisited messaging.Publish[analytics.AliasVisitedEvent]
	logger         *zap.Logger
}

// NewURLHandler creates a new URL handler. An empty notFoundURL makes
// unknown aliases answer 404 instead of redirecting.
func NewURLHandler(
	service *shortener.Service,
	baseURL string,
	notFoundURL string,
	publishCreated messaging.Publish[analytics.AliasCreatedEvent],
	publishVisited messaging.Publish[analytics.AliasVisitedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:        service,
		baseURL:        strings.TrimRight(baseURL, "/"),
		notFoundURL:    strings.TrimRight(notFoundURL, "/"),
		publishCreated: publishCreated,
		publishVisited: publishVisited,
		logger:         logger,
	}
}

func (h *URLHandler) CreateAlias(ctx context.Context, req *CreateAliasRequest) (*AliasResponse, error) {
	owner := identity.OwnerFromContext(ctx)

	alias, err := h.service.Shorten(ctx, shortener.ShortenRequest{
		URL:        req.Body.URL,
		CustomSlug: req.Body.CustomSlug,
		OwnerID:    owner.ID,
	})
	if err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	meta := analytics.RequestMetaFromContext(ctx)
	event := &analytics.AliasCreatedEvent{
		EventID:   uuid.NewString(),
		AliasID:   alias.ID,
		Alias:     alias.Slug,
		OwnerID:   alias.OwnerID,
		TargetURL: alias.TargetURL,
		Custom:    alias.Custom,
		CreatedAt: alias.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("alias", event.Alias),
			zap.Error(err),
		)
	}

	resp := &AliasResponse{Body: h.toBody(alias)}
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *URLHandler) ListAliases(ctx context.Context, _ *struct{}) (*ListAliasesResponse, error) {
	aliases, err := h.service.List(ctx, identity.OwnerFromContext(ctx).ID)
	if err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	resp := &ListAliasesResponse{}
	resp.Body.Aliases = h.toBodies(aliases)

	return resp, nil
}

func (h *URLHandler) Stats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	stats, err := h.service.Stats(ctx, identity.OwnerFromContext(ctx).ID)
	if err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	resp := &StatsResponse{}
	resp.Body.TotalURLs = stats.TotalAliases
	resp.Body.TotalVisits = stats.TotalVisits
	resp.Body.TopURLs = h.toBodies(stats.Top)

	return resp, nil
}

func (h *URLHandler) GetAlias(ctx context.Context, req *AliasIDRequest) (*AliasResponse, error) {
	alias, err := h.service.Get(ctx, req.ID, identity.OwnerFromContext(ctx).ID)
	if err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	resp := &AliasResponse{Body: h.toBody(alias)}
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *URLHandler) UpdateAlias(ctx context.Context, req *UpdateAliasRequest) (*AliasResponse, error) {
	alias, err := h.service.Rename(ctx, req.ID, identity.OwnerFromContext(ctx).ID, req.Body.Alias)
	if err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	resp := &AliasResponse{Body: h.toBody(alias)}
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *URLHandler) DeleteAlias(ctx context.Context, req *AliasIDRequest) (*struct{}, error) {
	if err := h.service.Delete(ctx, req.ID, identity.OwnerFromContext(ctx).ID); err != nil {
		return nil, toHTTPError(err, h.logger)
	}

	return nil, nil
}

func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, req.Alias)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) && h.notFoundURL != "" {
			return &RedirectResponse{Status: http.StatusFound, Location: h.notFoundURL + "/404"}, nil
		}

		return nil, toHTTPError(err, h.logger)
	}

	event := analytics.NewVisitedEvent(
		uuid.NewString(), req.Alias, target, analytics.RequestMetaFromContext(ctx), time.Now().UTC(),
	)

	if err := h.publishVisited(ctx, event); err != nil {
		h.logger.Error("failed to publish visit event",
			zap.String("alias", event.Alias),
			zap.Error(err),
		)
	}

	return &RedirectResponse{Status: http.StatusFound, Location: target}, nil
}

func (h *URLHandler) toBody(a *shortener.Alias) AliasBody {
	return AliasBody{
		ID:        a.ID,
		Alias:     a.Slug,
		ShortURL:  h.baseURL + "/" + a.Slug,
		TargetURL: a.TargetURL,
		Visits:    a.Visits,
		Custom:    a.Custom,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (h *URLHandler) toBodies(aliases []*shortener.Alias) []AliasBody {
	out := make([]AliasBody, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, h.toBody(a))
	}

	return out
}
