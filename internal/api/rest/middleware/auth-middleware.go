package middleware

import (
	"strings"

	"github.com/glowdesk/business_service/internal/helper"
	"github.com/gofiber/fiber/v2"
)

func AuthMiddleware(auth helper.Auth) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		claims, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  false,
				"message": "unauthorized",
				"data":    nil,
			})
		}

		ctx.Locals("businessID", claims.BusinessID)
		ctx.Locals("business", claims)
		return ctx.Next()
	}
}
