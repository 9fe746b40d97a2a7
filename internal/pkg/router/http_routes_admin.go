package router

import (
	"github.com/CourseHubApp/CourseHub/app/controllers"
	"github.com/CourseHubApp/CourseHub/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/users", controllers.HandleAdminUsers)

	// Catalog management
	adminGroup.Get("/courses", controllers.HandleAdminCourses)
	adminGroup.Post("/courses/publish/:id", controllers.HandleAdminCoursePublish)
	adminGroup.Post("/courses/feature/:id", controllers.HandleAdminCourseFeature)

	// Blog management
	adminGroup.Get("/posts", controllers.HandleAdminPosts)
	adminGroup.Post("/posts/publish/:id", controllers.HandleAdminPostPublish)

	// Contact inbox
	adminGroup.Get("/contacts", controllers.HandleAdminContacts)
	adminGroup.Post("/contacts/status/:id", controllers.HandleAdminContactStatus)
}
