package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
	"github.com/CourseHubApp/CourseHub/internal/pkg/entitlements"
	"github.com/CourseHubApp/CourseHub/internal/pkg/middleware"
	"github.com/CourseHubApp/CourseHub/internal/pkg/usercontext"
)

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the public JSON API.
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 endpoints to the given router group.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/ping", s.GetPing)
	r.Get("/courses", s.GetCourses)
	r.Get("/courses/:slug", s.GetCourse)

	user := r.Group("/user", middleware.RequireAPISessionAuth)
	user.Get("/profile", s.GetUserProfile)
	user.Get("/courses", s.GetUserCourses)
	user.Get("/payments", s.GetUserPayments)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetCourses lists published courses.
func (s *APIServer) GetCourses(c *fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	const perPage = 25

	courses, err := repository.GetGlobalRepositories().Course.GetPublished((page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"courses": courses, "page": page})
}

// GetCourse returns one published course with its curriculum.
func (s *APIServer) GetCourse(c *fiber.Ctx) error {
	course, err := repository.GetGlobalRepositories().Course.GetWithCurriculum(c.Params("slug"))
	if err != nil || !course.Published {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	return c.Status(fiber.StatusOK).JSON(course)
}

// GetUserProfile returns account information for the authenticated user.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	user, err := repository.GetGlobalRepositories().User.GetByID(uc.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// GetUserCourses returns the authenticated user's enrolled courses.
func (s *APIServer) GetUserCourses(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	courses, err := entitlements.EnrolledCourses(uc.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"courses": courses})
}

// GetUserPayments returns the authenticated user's payment history.
func (s *APIServer) GetUserPayments(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	const perPage = 25

	payments, err := repository.GetGlobalRepositories().Payment.GetByUserID(uc.UserID, (page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	type paymentItem struct {
		PaymentID string `json:"payment_id"`
		CourseID  uint   `json:"course_id"`
		Amount    string `json:"amount"`
		Currency  string `json:"currency"`
		Method    string `json:"method"`
		Status    string `json:"status"`
		CreatedAt string `json:"created_at"`
	}
	items := make([]paymentItem, len(payments))
	for i, p := range payments {
		items[i] = paymentItem{
			PaymentID: p.PaymentID,
			CourseID:  p.CourseID,
			Amount:    checkout.FormatAmountMinor(p.Amount),
			Currency:  p.Currency,
			Method:    p.Method,
			Status:    p.Status,
			CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"payments": items, "page": page})
}
