package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// GetClientIP resolves the client address behind proxies. Returns IPv4 and
// IPv6 separately; either may be empty.
func GetClientIP(c *fiber.Ctx) (string, string) {
	candidates := []string{strings.TrimSpace(c.Get("CF-Connecting-IP"))}
	for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
		candidates = append(candidates, strings.TrimSpace(ip))
	}
	candidates = append(candidates, strings.TrimSpace(c.Get("X-Real-IP")), c.IP())

	ipv4 := ""
	ipv6 := ""
	for _, ip := range candidates {
		if ip == "" {
			continue
		}
		// ::ffff:1.2.3.4 is an IPv4 client on a dual-stack listener
		if v4 := strings.TrimPrefix(ip, "::ffff:"); !strings.Contains(v4, ":") {
			if ipv4 == "" {
				ipv4 = v4
			}
		} else if ipv6 == "" {
			ipv6 = ip
		}
		if ipv4 != "" && ipv6 != "" {
			break
		}
	}

	return ipv4, ipv6
}
