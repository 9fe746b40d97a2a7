package router

import (
	"strings"
	"time"

	"github.com/CourseHubApp/CourseHub/app/controllers"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
	"github.com/CourseHubApp/CourseHub/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			// Webhooks carry provider signatures instead of CSRF tokens.
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleHome)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleAuthActivate)
	group.Get("/forgot-password", loggedInMiddleware, controllers.HandleAuthForgotPassword)
	group.Post("/forgot-password", loggedInMiddleware, controllers.HandleAuthForgotPassword)
	group.Get("/reset-password", loggedInMiddleware, controllers.HandleAuthResetPassword)
	group.Post("/reset-password", loggedInMiddleware, controllers.HandleAuthResetPassword)
	group.Get("/contact", loggedInMiddleware, controllers.HandleContact)
	group.Post("/contact", loggedInMiddleware, controllers.HandleContact)

	// Checkout. The start route is rate limited per client to keep a stuck
	// buyer from opening a pile of processor sessions.
	checkoutLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Redirect("/flash/checkout-rate-limit", fiber.StatusSeeOther)
		},
	})
	group.Post("/courses/:slug/checkout", middleware.RequireAuth, checkoutLimiter, controllers.HandleCheckoutStart)
	group.Get("/payment/success", middleware.RequireAuth, controllers.HandlePaymentSuccess)
	group.Get("/payment/cancel", middleware.RequireAuth, controllers.HandlePaymentCancel)
	group.Post("/checkout/paypal/confirm", middleware.RequireAuth, controllers.HandlePayPalConfirm)

	// Learner area
	group.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
	group.Get("/dashboard/payments", middleware.RequireAuth, controllers.HandleDashboardPayments)
	group.Post("/dashboard/courses/complete", middleware.RequireAuth, controllers.HandleCourseMarkCompleted)
	group.Get("/user/profile", middleware.RequireAuth, controllers.HandleUserProfile)
	group.Post("/user/profile", middleware.RequireAuth, controllers.HandleUserProfileUpdate)
}
