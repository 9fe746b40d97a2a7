package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
)

const adminPerPage = 50

// HandleAdminDashboard shows platform-wide counts.
func HandleAdminDashboard(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	userCount, _ := repos.User.Count()
	courseCount, _ := repos.Course.Count()
	publishedCount, _ := repos.Course.CountPublished()
	postCount, _ := repos.Blog.Count()
	unreadContacts, _ := repos.Contact.CountByStatus(models.ContactStatusUnread)

	return c.Render("admin/dashboard", fiber.Map{
		"Title":          "Admin",
		"IsLoggedIn":     true,
		"IsAdmin":        true,
		"Username":       ExtractUsername(c),
		"UserCount":      userCount,
		"CourseCount":    courseCount,
		"PublishedCount": publishedCount,
		"PostCount":      postCount,
		"UnreadContacts": unreadContacts,
		"Flash":          flash.Get(c),
	}, "layouts/main")
}

// HandleAdminUsers lists registered users, optionally filtered by a search
// query.
func HandleAdminUsers(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	query := c.Query("q")
	var users []models.User
	if query != "" {
		users, err = repos.User.Search(query)
	} else {
		users, err = repos.User.List((page-1)*adminPerPage, adminPerPage)
	}
	if err != nil {
		log.Errorf("admin user list failed: %v", err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load users."})
		return c.Redirect("/admin")
	}

	total, _ := repos.User.Count()

	return c.Render("admin/users", fiber.Map{
		"Title":      "Users",
		"IsLoggedIn": true,
		"IsAdmin":    true,
		"Username":   ExtractUsername(c),
		"Users":      users,
		"Query":      query,
		"Page":       page,
		"Total":      total,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleAdminContacts lists contact form submissions.
func HandleAdminContacts(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	messages, err := repos.Contact.List((page-1)*adminPerPage, adminPerPage)
	if err != nil {
		log.Errorf("admin contact list failed: %v", err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load messages."})
		return c.Redirect("/admin")
	}

	return c.Render("admin/contacts", fiber.Map{
		"Title":      "Contact messages",
		"IsLoggedIn": true,
		"IsAdmin":    true,
		"Username":   ExtractUsername(c),
		"Messages":   messages,
		"Page":       page,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleAdminContactStatus updates one contact message's status.
func HandleAdminContactStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/contacts")
	}

	status := c.FormValue("status")
	switch status {
	case models.ContactStatusRead, models.ContactStatusArchived, models.ContactStatusUnread:
	default:
		flash.WithError(c, fiber.Map{"type": "error", "message": "Unknown status."})
		return c.Redirect("/admin/contacts")
	}

	if err := repository.GetGlobalRepositories().Contact.UpdateStatus(uint(id), status); err != nil {
		log.Errorf("updating contact %d failed: %v", id, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the message."})
		return c.Redirect("/admin/contacts")
	}

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Message updated."})
	return c.Redirect("/admin/contacts")
}

// HandleAdminCourses lists all courses including drafts.
func HandleAdminCourses(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	// Drafts included: admins see the whole catalog.
	courses, err := repos.Course.GetAll((page-1)*adminPerPage, adminPerPage)
	if err != nil {
		log.Errorf("admin course list failed: %v", err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load courses."})
		return c.Redirect("/admin")
	}

	return c.Render("admin/courses", fiber.Map{
		"Title":      "Courses",
		"IsLoggedIn": true,
		"IsAdmin":    true,
		"Username":   ExtractUsername(c),
		"Courses":    courses,
		"Page":       page,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleAdminCoursePublish toggles a course's published flag.
func HandleAdminCoursePublish(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/courses")
	}

	repos := repository.GetGlobalRepositories()
	course, err := repos.Course.GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/admin/courses")
	}

	course.Published = !course.Published
	if err := repos.Course.Update(course); err != nil {
		log.Errorf("toggling publish on course %d failed: %v", id, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the course."})
		return c.Redirect("/admin/courses")
	}

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Course updated."})
	return c.Redirect("/admin/courses")
}

// HandleAdminCourseFeature toggles a course's featured flag.
func HandleAdminCourseFeature(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/courses")
	}

	repos := repository.GetGlobalRepositories()
	course, err := repos.Course.GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/admin/courses")
	}

	course.Featured = !course.Featured
	if err := repos.Course.Update(course); err != nil {
		log.Errorf("toggling feature on course %d failed: %v", id, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the course."})
		return c.Redirect("/admin/courses")
	}

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Course updated."})
	return c.Redirect("/admin/courses")
}

// HandleAdminPosts lists all blog posts including drafts.
func HandleAdminPosts(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, err := repos.Blog.GetAll((page-1)*adminPerPage, adminPerPage)
	if err != nil {
		log.Errorf("admin post list failed: %v", err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not load posts."})
		return c.Redirect("/admin")
	}

	return c.Render("admin/posts", fiber.Map{
		"Title":      "Blog posts",
		"IsLoggedIn": true,
		"IsAdmin":    true,
		"Username":   ExtractUsername(c),
		"Posts":      posts,
		"Page":       page,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleAdminPostPublish toggles a blog post's published flag.
func HandleAdminPostPublish(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/posts")
	}

	repos := repository.GetGlobalRepositories()
	post, err := repos.Blog.GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Post not found"})
		return c.Redirect("/admin/posts")
	}

	post.Published = !post.Published
	if err := repos.Blog.Update(post); err != nil {
		log.Errorf("toggling publish on post %d failed: %v", id, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the post."})
		return c.Redirect("/admin/posts")
	}

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Post updated."})
	return c.Redirect("/admin/posts")
}
