package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashCheckoutRateLimit sets a flash error and redirects to the catalog
func HandleFlashCheckoutRateLimit(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "error",
		"message": "Too many checkout attempts. Please wait a moment and try again.",
	}
	flash.WithError(c, fm)
	return c.Redirect("/courses", fiber.StatusSeeOther)
}

// HandleFlashGenericError shows a generic error from the query string
// Query: ?msg=...
func HandleFlashGenericError(c *fiber.Ctx) error {
	msg := c.Query("msg", "Something went wrong. Please try again.")
	if len(msg) > 300 {
		msg = msg[:300]
	}
	fm := fiber.Map{
		"type":    "error",
		"message": msg,
	}
	flash.WithError(c, fm)
	return c.Redirect("/", fiber.StatusSeeOther)
}
