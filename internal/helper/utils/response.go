package utils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// Every endpoint answers with the same envelope. Business-rule and validation
// failures carry their specific message; unexpected failures never leak the
// underlying error text to the client.

func ResponseOK(ctx *fiber.Ctx, message string, data interface{}) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  true,
		"message": message,
		"data":    data,
	})
}

func ResponseFail(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"status":  false,
		"message": message,
		"data":    nil,
	})
}

func ResponseServerError(ctx *fiber.Ctx, err error) error {
	log.Printf("%s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  false,
		"message": "Something went wrong",
		"data":    nil,
	})
}
