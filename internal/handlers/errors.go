package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// toHTTPError maps service errors to API errors.
func toHTTPError(err error, logger *zap.Logger) error {
	switch {
	case errors.Is(err, shortener.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, shortener.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, shortener.ErrUnauthorized):
		return huma.Error401Unauthorized(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("alias not found")
	case errors.Is(err, shortener.ErrUnavailable):
		logger.Error("backing store unavailable", zap.Error(err))

		return huma.Error503ServiceUnavailable("service unavailable")
	default:
		logger.Error("unexpected error", zap.Error(err))

		return huma.Error500InternalServerError("internal server error")
	}
}
