package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
	"github.com/CourseHubApp/CourseHub/internal/pkg/entitlements"
	"github.com/CourseHubApp/CourseHub/internal/pkg/metrics/counter"
	"github.com/CourseHubApp/CourseHub/internal/pkg/usercontext"
)

const coursesPerPage = 12

// HandleCourseList renders the catalog, optionally filtered by category or a
// search query.
func HandleCourseList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * coursesPerPage

	categorySlug := c.Query("category")
	query := c.Query("q")

	var (
		courses  []models.Course
		category *models.Category
	)
	switch {
	case query != "":
		courses, err = repos.Course.Search(query, offset, coursesPerPage)
	case categorySlug != "":
		category, err = repos.Course.GetCategoryBySlug(categorySlug)
		if err != nil {
			flash.WithError(c, fiber.Map{"type": "error", "message": "Category not found"})
			return c.Redirect("/courses")
		}
		courses, err = repos.Course.GetByCategory(categorySlug, offset, coursesPerPage)
	default:
		courses, err = repos.Course.GetPublished(offset, coursesPerPage)
	}
	if err != nil {
		log.Errorf("loading course list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title":   "Error",
			"Message": "Could not load the course catalog.",
		}, "layouts/main")
	}

	categories, err := repos.Course.GetCategories()
	if err != nil {
		log.Errorf("loading categories failed: %v", err)
	}

	total, _ := repos.Course.CountPublished()
	hasMore := int64(offset+len(courses)) < total

	return c.Render("courses/index", fiber.Map{
		"Title":      "Courses",
		"IsLoggedIn": isLoggedIn(c),
		"Username":   ExtractUsername(c),
		"Courses":    courses,
		"Categories": categories,
		"Category":   category,
		"Query":      query,
		"Page":       page,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"HasMore":    hasMore,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleCourseDetail renders one course with its curriculum. Enrolled users
// see every lesson unlocked; everyone else sees free lessons only.
func HandleCourseDetail(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Redirect("/courses")
	}

	repos := repository.GetGlobalRepositories()
	course, err := repos.Course.GetWithCurriculum(slug)
	if err != nil || !course.Published {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/courses")
	}

	// View counting is write-behind via Redis; a miss never blocks the page.
	if err := counter.AddCourseView(course.ID); err != nil {
		log.Warnf("view counter for course %d failed: %v", course.ID, err)
	}

	uc := usercontext.GetUserContext(c)
	enrolled := false
	if uc.IsLoggedIn {
		enrolled, err = entitlements.HasAccess(uc.UserID, course.ID)
		if err != nil {
			log.Errorf("access check for user %d course %d failed: %v", uc.UserID, course.ID, err)
		}
	}

	enrollmentCount, _ := repos.Enrollment.CountByCourseID(course.ID)
	csrfToken, _ := c.Locals("csrf").(string)

	return c.Render("courses/detail", fiber.Map{
		"Title":           course.Title,
		"IsLoggedIn":      uc.IsLoggedIn,
		"Username":        uc.Username,
		"Course":          course,
		"PriceDisplay":    checkout.FormatAmountMinor(course.Price),
		"Enrolled":        enrolled,
		"EnrollmentCount": enrollmentCount,
		"CSRFToken":       csrfToken,
		"Flash":           flash.Get(c),
	}, "layouts/main")
}

// HandleCourseLesson serves a single lesson page. Free lessons are public;
// everything else requires an enrollment.
func HandleCourseLesson(c *fiber.Ctx) error {
	slug := c.Params("slug")
	lessonID, err := strconv.ParseUint(c.Params("lesson"), 10, 32)
	if err != nil {
		return c.Redirect("/courses/" + slug)
	}

	repos := repository.GetGlobalRepositories()
	course, err := repos.Course.GetWithCurriculum(slug)
	if err != nil || !course.Published {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/courses")
	}

	var lesson *models.CourseLesson
	for si := range course.Sections {
		for li := range course.Sections[si].Lessons {
			if course.Sections[si].Lessons[li].ID == uint(lessonID) {
				lesson = &course.Sections[si].Lessons[li]
			}
		}
	}
	if lesson == nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Lesson not found"})
		return c.Redirect("/courses/" + slug)
	}

	uc := usercontext.GetUserContext(c)
	if !lesson.IsFree {
		if !uc.IsLoggedIn {
			flash.WithError(c, fiber.Map{"type": "error", "message": "Please sign in to watch this lesson."})
			return c.Redirect("/login")
		}
		ok, err := entitlements.HasAccess(uc.UserID, course.ID)
		if err != nil {
			log.Errorf("access check for user %d course %d failed: %v", uc.UserID, course.ID, err)
		}
		if !ok {
			flash.WithError(c, fiber.Map{"type": "error", "message": "You need to enroll in this course first."})
			return c.Redirect("/courses/" + slug)
		}
	}

	return c.Render("courses/lesson", fiber.Map{
		"Title":      lesson.Title,
		"IsLoggedIn": uc.IsLoggedIn,
		"Username":   uc.Username,
		"Course":     course,
		"Lesson":     lesson,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}
