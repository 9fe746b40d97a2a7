package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/session"
	"github.com/CourseHubApp/CourseHub/internal/pkg/utils"
)

func HandleUserProfile(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)
	username := sess.Get(USER_NAME).(string)
	isAdmin := sess.Get(USER_IS_ADMIN).(bool)

	repos := repository.GetGlobalRepositories()

	user, err := repos.User.GetByID(userID)
	if err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect("/")
	}

	stats, err := repos.User.GetStatsByUserID(userID)
	if err != nil {
		log.Errorf("loading stats for user %d failed: %v", userID, err)
		stats = &repository.UserStats{}
	}

	avatarURL := user.AvatarURL
	if avatarURL == "" {
		avatarURL = utils.GetGravatarURL(user.Email, 200)
	}

	csrfToken, _ := c.Locals("csrf").(string)

	return c.Render("user/profile", fiber.Map{
		"AvatarURL":  avatarURL,
		"Title":      "Profile",
		"IsLoggedIn": isLoggedIn(c),
		"Username":   username,
		"IsAdmin":    isAdmin,
		"User":       user,
		"Stats":      stats,
		"CSRFToken":  csrfToken,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleUserProfileUpdate saves name, bio and optional new password.
func HandleUserProfileUpdate(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByID(userID)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "User not found"})
		return c.Redirect("/")
	}

	if name := c.FormValue("name"); name != "" {
		user.Name = name
	}
	user.Bio = c.FormValue("bio")

	if password := c.FormValue("password"); password != "" {
		current := c.FormValue("current_password")
		if !models.CheckPasswordHash(current, user.Password) {
			flash.WithError(c, fiber.Map{"type": "error", "message": "Your current password is not correct."})
			return c.Redirect("/user/profile")
		}
		if err := user.SetPassword(password); err != nil {
			flash.WithError(c, fiber.Map{"type": "error", "message": "Could not update the password."})
			return c.Redirect("/user/profile")
		}
	}

	if err := user.Validate(); err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Please check your input."})
		return c.Redirect("/user/profile")
	}

	if err := userRepo.Update(user); err != nil {
		log.Errorf("updating profile for user %d failed: %v", userID, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not save your profile."})
		return c.Redirect("/user/profile")
	}

	// Keep the displayed name in the session current.
	sess.Set(USER_NAME, user.Name)
	_ = sess.Save()

	flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Profile saved."})
	return c.Redirect("/user/profile")
}
