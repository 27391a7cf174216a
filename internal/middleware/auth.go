// Package middleware provides authentication, rate limiting and request
// instrumentation middleware for the application.
package middleware

import (
	"crypto/subtle"
	"strconv"
	"strings"

	"brc/internal/config"
	"brc/internal/models"
	"brc/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ListAuth authenticates an external list by its shared secret. The list
// identifies itself with the X-List-ID header and proves it with the
// Authorization header. Untrusted lists are refused even with a valid
// secret.
func ListAuth(lists repository.ListRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listID := c.Get("X-List-ID")
		secret := c.Get("Authorization")
		if listID == "" || secret == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "X-List-ID and Authorization headers required",
			})
		}

		list, err := lists.GetByID(c.UserContext(), listID)
		if err != nil {
			// Unknown list and bad secret are indistinguishable on purpose.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid list credentials",
			})
		}

		if subtle.ConstantTimeCompare([]byte(list.SecretKey), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid list credentials",
			})
		}

		if !list.State.Trusted() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "List is not eligible for API access",
			})
		}

		c.Locals("listID", list.ID)
		c.Locals("list", list)
		return c.Next()
	}
}

// AuthedList returns the list stored by ListAuth, nil when the route was
// not list-authenticated.
func AuthedList(c *fiber.Ctx) *models.List {
	list, _ := c.Locals("list").(*models.List)
	return list
}

// ReviewerAuth is a middleware that enforces reviewer authentication for
// review routes.
func ReviewerAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token claims",
		})
	}

	// The subject claim carries the reviewer's snowflake as a decimal
	// string.
	subClaim, ok := claims["sub"]
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token structure - missing subject",
		})
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token subject type",
		})
	}
	reviewerID, err := strconv.ParseInt(subStr, 10, 64)
	if err != nil || reviewerID <= 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid reviewer ID in token",
		})
	}

	c.Locals("reviewerID", models.Snowflake(reviewerID))
	return c.Next()
}

// Reviewer returns the reviewer snowflake stored by ReviewerAuth.
func Reviewer(c *fiber.Ctx) models.Snowflake {
	id, _ := c.Locals("reviewerID").(models.Snowflake)
	return id
}
