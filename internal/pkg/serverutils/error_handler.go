package serverutils

import (
	"errors"

	"product-chat-be/internal/pkg/logger"
	"product-chat-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error to the HTTP status returned to the client.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUpstream, apperror.KindMalformedOutput:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware renders errors returned by later handlers as a
// BaseResponse. Server errors are logged; their details are not sent to the
// client.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusFor(err)
		res := ErrorResponse(status, err.Error())

		var ve *ValidationError
		if errors.As(err, &ve) {
			res.Message = "validation failed"
			res.Errors = ve.Fields
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": status,
				"error":  err,
			})
			if status == fiber.StatusInternalServerError {
				res.Message = "internal server error"
			}
		}

		return ctx.Status(status).JSON(res)
	}
}
