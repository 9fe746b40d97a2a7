package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
	"github.com/CourseHubApp/CourseHub/internal/pkg/session"
)

const paymentsPerPage = 20

// HandleDashboard shows the signed-in user's enrollments and learning stats.
func HandleDashboard(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)
	username := sess.Get(USER_NAME).(string)
	isAdmin := sess.Get(USER_IS_ADMIN).(bool)

	repos := repository.GetGlobalRepositories()

	enrollments, err := repos.Enrollment.GetByUserID(userID)
	if err != nil {
		log.Errorf("loading enrollments for user %d failed: %v", userID, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load your courses."})
		return c.Redirect("/")
	}

	stats, err := repos.User.GetStatsByUserID(userID)
	if err != nil {
		log.Errorf("loading stats for user %d failed: %v", userID, err)
		stats = &repository.UserStats{}
	}

	csrfToken, _ := c.Locals("csrf").(string)

	return c.Render("dashboard/index", fiber.Map{
		"Title":       "My courses",
		"CSRFToken":   csrfToken,
		"IsLoggedIn":  true,
		"Username":    username,
		"IsAdmin":     isAdmin,
		"Enrollments": enrollments,
		"Stats":       stats,
		"TotalSpent":  checkout.FormatAmountMinor(stats.TotalSpentMinor),
		"Flash":       flash.Get(c),
	}, "layouts/main")
}

// HandleDashboardPayments lists the user's payment history.
func HandleDashboardPayments(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)
	username := sess.Get(USER_NAME).(string)
	isAdmin := sess.Get(USER_IS_ADMIN).(bool)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * paymentsPerPage

	repos := repository.GetGlobalRepositories()
	payments, err := repos.Payment.GetByUserID(userID, offset, paymentsPerPage)
	if err != nil {
		log.Errorf("loading payments for user %d failed: %v", userID, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load your payment history."})
		return c.Redirect("/dashboard")
	}

	total, _ := repos.Payment.CountByUserID(userID)
	hasMore := int64(offset+len(payments)) < total

	// Pre-format amounts so templates never do money math.
	displays := make([]string, len(payments))
	for i := range payments {
		displays[i] = checkout.FormatAmountMinor(payments[i].Amount) + " " + payments[i].Currency
	}

	return c.Render("dashboard/payments", fiber.Map{
		"Title":          "Payment history",
		"IsLoggedIn":     true,
		"Username":       username,
		"IsAdmin":        isAdmin,
		"Payments":       payments,
		"AmountDisplays": displays,
		"Page":           page,
		"NextPage":       page + 1,
		"HasMore":        hasMore,
		"Flash":          flash.Get(c),
	}, "layouts/main")
}

// HandleCourseMarkCompleted records that the user finished a course.
func HandleCourseMarkCompleted(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)

	courseID, err := strconv.ParseUint(c.FormValue("course_id"), 10, 32)
	if err != nil || courseID == 0 {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid course."})
		return c.Redirect("/dashboard")
	}

	repos := repository.GetGlobalRepositories()
	enrollment, err := repos.Enrollment.GetByUserAndCourse(userID, uint(courseID))
	if err != nil || enrollment == nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "You are not enrolled in this course."})
		return c.Redirect("/dashboard")
	}

	if err := repos.Enrollment.MarkCompleted(userID, uint(courseID)); err != nil {
		log.Errorf("marking course %d completed for user %d failed: %v", courseID, userID, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the course."})
		return c.Redirect("/dashboard")
	}

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Congratulations on finishing the course!"})
	return c.Redirect("/dashboard")
}
