package middleware

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/notesapi/internal/cache"
	"github.com/yourorg/notesapi/internal/models"
)

// Identity is the resolved caller stored in request locals by TokenAuth.
type Identity struct {
	UserID   int64
	Username string
}

// tokenCache keeps recent token -> identity resolutions so a hot client
// costs one map read instead of one query per request. Entries expire after
// 5 minutes; a deleted token stays valid at most that long.
var tokenCache = cache.New(5*time.Minute, 10*time.Minute)

// ParseTokenHeader extracts the bearer key from an Authorization header.
// Accepts "Token <key>" and "Bearer <key>".
func ParseTokenHeader(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	scheme := strings.ToLower(parts[0])
	if scheme != "token" && scheme != "bearer" {
		return "", false
	}
	return parts[1], true
}

// TokenAuth resolves the Authorization header to a user and stores the
// identity in c.Locals("userID") / c.Locals("username"). Requests without a
// valid token are rejected with 401.
func TokenAuth(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if strings.TrimSpace(header) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Authentication credentials were not provided."})
		}

		key, ok := ParseTokenHeader(header)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Invalid token."})
		}

		if v, found := tokenCache.Get("token:" + key); found {
			ident := v.(Identity)
			c.Locals("userID", ident.UserID)
			c.Locals("username", ident.Username)
			return c.Next()
		}

		var ident Identity
		err := db.QueryRow(`
			SELECT u.id, u.username
			FROM auth_tokens t
			JOIN users u ON u.id = t.user_id
			WHERE t.token_key = ?
		`, key).Scan(&ident.UserID, &ident.Username)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return c.Status(fiber.StatusUnauthorized).JSON(models.Detail{Detail: "Invalid token."})
			}
			log.Printf("❌ Error resolving token: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
		}

		tokenCache.Set("token:"+key, ident)

		c.Locals("userID", ident.UserID)
		c.Locals("username", ident.Username)
		return c.Next()
	}
}

// CallerID returns the authenticated user id set by TokenAuth.
func CallerID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals("userID").(int64)
	return id, ok
}

// CallerUsername returns the authenticated username set by TokenAuth.
func CallerUsername(c *fiber.Ctx) string {
	name, _ := c.Locals("username").(string)
	return name
}
