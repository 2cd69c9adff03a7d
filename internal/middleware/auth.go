// Package middleware provides authentication, rate limiting, logging and
// metrics middleware for the application.
package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDLocal is the Fiber locals key under which AuthRequired stores the
// authenticated user's ObjectID.
const UserIDLocal = "userID"

// AuthRequired returns a middleware that enforces bearer-token
// authentication. The token is the sole source of truth; there is no
// server-side session state.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Authorization header required",
			})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Invalid authorization header format",
			})
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token is not valid",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Invalid token claims",
			})
		}

		// jwt.Parse validates exp when present; tokens without one are rejected.
		if exp, expErr := claims.GetExpirationTime(); expErr != nil || exp == nil || time.Now().After(exp.Time) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token expired",
			})
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Invalid token structure - missing subject",
			})
		}

		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Invalid user ID in token",
			})
		}

		c.Locals(UserIDLocal, userID)
		return c.Next()
	}
}
