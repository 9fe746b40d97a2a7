package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
	"github.com/CourseHubApp/CourseHub/internal/pkg/hcaptcha"
	"github.com/CourseHubApp/CourseHub/internal/pkg/mail"
	"github.com/CourseHubApp/CourseHub/internal/pkg/session"
)

const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "username"
	USER_IS_ADMIN  string = "isAdmin"
	FROM_PROTECTED string = "from_protected"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	csrfToken, _ := c.Locals("csrf").(string)

	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		user, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(c.FormValue("email"))
		if err != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !models.CheckPasswordHash(c.FormValue("password"), user.Password) {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.IsActive() {
			fm["message"] = "Please activate your account first. Check your inbox for the activation link."

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(AUTH_KEY, true)
		sess.Set(USER_ID, user.ID)
		sess.Set(USER_NAME, user.Name)
		sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)

		err = sess.Save()
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		now := time.Now()
		user.LastLoginAt = &now
		_ = repository.GetGlobalFactory().GetUserRepository().Update(user)

		fm = fiber.Map{
			"type":    "success",
			"message": fmt.Sprintf("Welcome back, %s!", user.Name),
		}

		return flash.WithSuccess(c, fm).Redirect("/dashboard")
	}

	return c.Render("auth/login", fiber.Map{
		"Title":      "Sign in",
		"IsLoggedIn": isLoggedIn(c),
		"CSRFToken":  csrfToken,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	err = sess.Destroy()
	if err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "You are signed out. See you soon!",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	csrfToken, _ := c.Locals("csrf").(string)

	hcaptchaSitekey := env.GetEnv("HCAPTCHA_SITEKEY", "")

	if c.Method() == fiber.MethodPost {
		hcaptchaToken := c.FormValue("h-captcha-response")
		valid, err := hcaptcha.Verify(hcaptchaToken)
		if err != nil || !valid {
			errorMsg := "Captcha validation failed. Please try again."
			if err != nil && env.IsDev() {
				errorMsg = fmt.Sprintf("Captcha validation failed: %v", err)
			}

			fm := fiber.Map{
				"type":    "error",
				"message": errorMsg,
			}
			return flash.WithError(c, fm).Redirect("/register")
		}

		user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		user.IPv4, user.IPv6 = GetClientIP(c)

		if err := user.GenerateActivationToken(); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		err = repository.GetGlobalFactory().GetUserRepository().Create(user)
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		go sendActivationMail(user)

		fm := fiber.Map{
			"type":    "success",
			"message": "Account created! Check your inbox for the activation link.",
		}

		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return c.Render("auth/register", fiber.Map{
		"Title":           "Create account",
		"IsLoggedIn":      isLoggedIn(c),
		"CSRFToken":       csrfToken,
		"HCaptchaSitekey": hcaptchaSitekey,
		"Flash":           flash.Get(c),
	}, "layouts/main")
}

// HandleAuthActivate completes registration via the emailed token link.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Activation link is invalid.",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Activation link is invalid or already used.",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Your account is active. You can sign in now.",
	}
	return flash.WithSuccess(c, fm).Redirect("/login")
}

// HandleAuthForgotPassword renders the request form and mails a reset link.
// The response does not reveal whether the email is registered.
func HandleAuthForgotPassword(c *fiber.Ctx) error {
	csrfToken, _ := c.Locals("csrf").(string)

	if c.Method() == fiber.MethodPost {
		email := c.FormValue("email")
		userRepo := repository.GetGlobalFactory().GetUserRepository()

		user, err := userRepo.GetByEmail(email)
		if err == nil {
			if err := user.GeneratePasswordResetToken(); err == nil {
				if err := userRepo.Update(user); err == nil {
					go sendPasswordResetMail(user)
				}
			}
		}

		fm := fiber.Map{
			"type":    "success",
			"message": "If that address is registered, a reset link is on its way.",
		}
		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return c.Render("auth/forgot_password", fiber.Map{
		"Title":      "Forgot password",
		"IsLoggedIn": isLoggedIn(c),
		"CSRFToken":  csrfToken,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

// HandleAuthResetPassword completes the reset via the emailed token link.
func HandleAuthResetPassword(c *fiber.Ctx) error {
	csrfToken, _ := c.Locals("csrf").(string)

	token := c.Query("token")
	if c.Method() == fiber.MethodPost {
		token = c.FormValue("token")
	}
	if token == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Reset link is invalid.",
		}
		return flash.WithError(c, fm).Redirect("/forgot-password")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByPasswordResetToken(token)
	if err != nil || !user.PasswordResetTokenValid() {
		fm := fiber.Map{
			"type":    "error",
			"message": "Reset link is invalid or expired. Please request a new one.",
		}
		return flash.WithError(c, fm).Redirect("/forgot-password")
	}

	if c.Method() == fiber.MethodPost {
		password := c.FormValue("password")
		confirm := c.FormValue("password_confirm")

		if len(password) < 6 {
			fm := fiber.Map{
				"type":    "error",
				"message": "Password must be at least 6 characters.",
			}
			return flash.WithError(c, fm).Redirect("/reset-password?token=" + token)
		}
		if password != confirm {
			fm := fiber.Map{
				"type":    "error",
				"message": "Passwords do not match.",
			}
			return flash.WithError(c, fm).Redirect("/reset-password?token=" + token)
		}

		if err := user.SetPassword(password); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}
			return flash.WithError(c, fm).Redirect("/forgot-password")
		}

		user.ClearPasswordResetToken()
		if err := userRepo.Update(user); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}
			return flash.WithError(c, fm).Redirect("/forgot-password")
		}

		fm := fiber.Map{
			"type":    "success",
			"message": "Your password has been changed. You can sign in now.",
		}
		return flash.WithSuccess(c, fm).Redirect("/login")
	}

	return c.Render("auth/reset_password", fiber.Map{
		"Title":      "Choose a new password",
		"IsLoggedIn": isLoggedIn(c),
		"CSRFToken":  csrfToken,
		"Token":      token,
		"Flash":      flash.Get(c),
	}, "layouts/main")
}

func sendPasswordResetMail(user *models.User) {
	domain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	link := fmt.Sprintf("%s/reset-password?token=%s", domain, user.PasswordResetToken)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>someone requested a password reset for your account. The link is valid for one hour:</p><p><a href=\"%s\">Reset my password</a></p><p>If that wasn't you, you can ignore this mail.</p>",
		user.Name, link,
	)
	if err := mail.SendMail(user.Email, "Reset your password", body); err != nil {
		fmt.Printf("password reset mail to %s failed: %v\n", user.Email, err)
	}
}

func sendActivationMail(user *models.User) {
	domain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	link := fmt.Sprintf("%s/activate?token=%s", domain, user.ActivationToken)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>welcome aboard! Please confirm your email address:</p><p><a href=\"%s\">Activate my account</a></p>",
		user.Name, link,
	)
	if err := mail.SendMail(user.Email, "Activate your account", body); err != nil {
		fmt.Printf("activation mail to %s failed: %v\n", user.Email, err)
	}
}
