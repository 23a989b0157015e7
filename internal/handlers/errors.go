package handlers

import (
	"errors"

	"bookstore/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusOf maps an error kind onto its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func kindOfStatus(status int) apperror.Kind {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperror.KindValidation
	case fiber.StatusUnauthorized:
		return apperror.KindUnauthenticated
	case fiber.StatusForbidden:
		return apperror.KindForbidden
	case fiber.StatusNotFound:
		return apperror.KindNotFound
	default:
		return apperror.KindInternal
	}
}

// ErrorHandler renders errors returned by handlers and middleware. Internal
// failures are logged with their cause and answered with a generic message.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    string(kindOfStatus(fiberErr.Code)),
				Message: fiberErr.Message,
			})
		}

		kind := apperror.KindOf(err)
		if kind == apperror.KindInternal {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return c.Status(StatusOf(kind)).JSON(ErrorResponse{
			Code:    string(kind),
			Message: apperror.MessageOf(err),
		})
	}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return nil
}
