package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// ErrorHandler is the centralized Fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toFiberError maps domain errors onto HTTP status codes; the message is the
// user-facing status line.
func toFiberError(err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	msg := weather.StatusMessage(err)

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrInputEmpty),
		errors.Is(err, weather.ErrInvalidHorizon),
		errors.Is(err, weather.ErrInvalidTab),
		errors.Is(err, weather.ErrUnknownProvider),
		errors.Is(err, weather.ErrNoCurrentLocation):
		return fiber.NewError(fiber.StatusBadRequest, msg)
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msg)
	case errors.Is(err, weather.ErrDuplicateSave),
		errors.Is(err, weather.ErrStaleRequest):
		return fiber.NewError(fiber.StatusConflict, msg)
	case errors.Is(err, weather.ErrMalformedResponse),
		errors.Is(err, weather.ErrServiceUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "Weather lookup timed out. Please try again.")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}
