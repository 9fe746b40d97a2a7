package router

import (
	"github.com/CourseHubApp/CourseHub/app/controllers"
	"github.com/CourseHubApp/CourseHub/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Storefront
	app.Get("/courses", loggedInMiddleware, controllers.HandleCourseList)
	app.Get("/courses/:slug", loggedInMiddleware, controllers.HandleCourseDetail)
	app.Get("/courses/:slug/lessons/:lesson", loggedInMiddleware, controllers.HandleCourseLesson)

	// Blog + static pages
	app.Get("/blog", loggedInMiddleware, controllers.HandleBlogList)
	app.Get("/blog/:slug", loggedInMiddleware, controllers.HandleBlogPost)
	app.Get("/about", loggedInMiddleware, controllers.HandleAbout)

	// Flash helpers
	app.Get("/flash/checkout-rate-limit", loggedInMiddleware, controllers.HandleFlashCheckoutRateLimit)
	app.Get("/flash/error", loggedInMiddleware, controllers.HandleFlashGenericError)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Payment provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
