package serverutils

import (
	"crypto/subtle"
	"strings"

	"product-chat-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

const ApiKeyHeader = "ApiKey"

// ApiKeyMiddleware rejects requests whose ApiKey header does not match the
// configured key. A missing configured key is a server error.
func ApiKeyMiddleware(apiKey string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if strings.TrimSpace(apiKey) == "" {
			return apperror.Configuration("API key is not configured")
		}

		provided := ctx.Get(ApiKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid API key"))
		}

		return ctx.Next()
	}
}
