package controllers

import (
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/utils"
)

const postsPerPage = 10

// HandleBlogList renders the blog index with optional category filter.
func HandleBlogList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * postsPerPage

	category := c.Query("category")

	var posts []models.BlogPost
	if category != "" {
		posts, err = repos.Blog.GetByCategory(category, offset, postsPerPage)
	} else {
		posts, err = repos.Blog.GetPublished(offset, postsPerPage)
	}
	if err != nil {
		log.Errorf("loading blog posts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
			"Title":   "Error",
			"Message": "Could not load the blog.",
		}, "layouts/main")
	}

	total, _ := repos.Blog.CountPublished()
	hasMore := int64(offset+len(posts)) < total

	return c.Render("blog/index", fiber.Map{
		"Title":      "Blog",
		"IsLoggedIn": isLoggedIn(c),
		"Username":   ExtractUsername(c),
		"Posts":      posts,
		"Category":   category,
		"Page":       page,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"HasMore":    hasMore,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleBlogPost renders a single published article.
func HandleBlogPost(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return c.Redirect("/blog")
	}

	repos := repository.GetGlobalRepositories()
	post, err := repos.Blog.GetBySlug(slug)
	if err != nil || !post.Published {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Article not found"})
		return c.Redirect("/blog")
	}

	recent, err := repos.Blog.GetPublished(0, 3)
	if err != nil {
		log.Errorf("loading recent posts failed: %v", err)
	}

	return c.Render("blog/post", fiber.Map{
		"Title":       post.Title,
		"IsLoggedIn":  isLoggedIn(c),
		"Username":    ExtractUsername(c),
		"Post":        post,
		"ContentHTML": template.HTML(utils.ProcessHTMLContent(post.Content)),
		"RecentPosts": recent,
		"Flash":       flash.Get(c),
	}, "layouts/main")
}
