package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
)

func HandleHome(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	featured, err := repos.Course.GetFeatured(6)
	if err != nil {
		log.Errorf("loading featured courses failed: %v", err)
	}

	posts, err := repos.Blog.GetFeatured(3)
	if err != nil {
		log.Errorf("loading featured posts failed: %v", err)
	}

	courseCount, _ := repos.Course.CountPublished()

	return c.Render("home", fiber.Map{
		"Title":           "Learn something new today",
		"IsLoggedIn":      isLoggedIn(c),
		"Username":        ExtractUsername(c),
		"FeaturedCourses": featured,
		"FeaturedPosts":   posts,
		"CourseCount":     courseCount,
		"Flash":           flash.Get(c),
	}, "layouts/main")
}

func HandleAbout(c *fiber.Ctx) error {
	return c.Render("about", fiber.Map{
		"Title":      "About us",
		"IsLoggedIn": isLoggedIn(c),
		"Username":   ExtractUsername(c),
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

func HandleContact(c *fiber.Ctx) error {
	csrfToken, _ := c.Locals("csrf").(string)

	if c.Method() == fiber.MethodPost {
		msg := &models.ContactMessage{
			Name:    c.FormValue("name"),
			Email:   c.FormValue("email"),
			Subject: c.FormValue("subject"),
			Message: c.FormValue("message"),
			Status:  models.ContactStatusUnread,
		}

		if err := msg.Validate(); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": "Please fill in all fields correctly.",
			}
			return flash.WithError(c, fm).Redirect("/contact")
		}

		if err := repository.GetGlobalFactory().GetContactRepository().Create(msg); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}
			return flash.WithError(c, fm).Redirect("/contact")
		}

		fm := fiber.Map{
			"type":    "success",
			"message": "Thanks for your message! We will get back to you soon.",
		}
		return flash.WithSuccess(c, fm).Redirect("/contact")
	}

	return c.Render("contact", fiber.Map{
		"Title":      "Contact",
		"IsLoggedIn": isLoggedIn(c),
		"Username":   ExtractUsername(c),
		"CSRFToken":  csrfToken,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}
