package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/notesapi/internal/models"
	"github.com/yourorg/notesapi/internal/validation"
)

type AuthHandler struct {
	db *sql.DB
}

func NewAuthHandler(db *sql.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Malformed JSON body"})
	}
	req.Username = strings.TrimSpace(req.Username)

	fieldErrs := models.FieldErrors{}
	if req.Username == "" {
		fieldErrs["username"] = append(fieldErrs["username"], "This field may not be blank.")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "This field may not be blank.")
	} else if errs := validation.ValidatePassword(req.Username, req.Password); len(errs) > 0 {
		fieldErrs["password"] = append(fieldErrs["password"], errs...)
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fieldErrs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Failed to secure password"})
	}

	res, err := h.db.Exec(`INSERT INTO users (username, password_hash) VALUES (?, ?)`, req.Username, string(hash))
	if err != nil {
		if isDuplicateEntry(err) {
			return c.Status(fiber.StatusBadRequest).JSON(models.FieldErrors{
				"username": {"A user with that username already exists."},
			})
		}
		log.Printf("❌ Error inserting user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	userID, _ := res.LastInsertId()

	token, err := h.getOrCreateToken(userID)
	if err != nil {
		log.Printf("❌ Error issuing token for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	log.Printf("✅ User registered: id=%d, username=%s", userID, req.Username)

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusCreated).JSON(models.RegisterResponse{
		ID:       userID,
		Username: req.Username,
		Token:    token,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Malformed JSON body"})
	}
	req.Username = strings.TrimSpace(req.Username)

	fieldErrs := models.FieldErrors{}
	if req.Username == "" {
		fieldErrs["username"] = append(fieldErrs["username"], "This field may not be blank.")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "This field may not be blank.")
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fieldErrs)
	}

	var (
		id           int64
		passwordHash string
	)
	err := h.db.QueryRow(`SELECT id, password_hash FROM users WHERE username = ?`, req.Username).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Invalid credentials"})
		}
		log.Printf("❌ Error querying user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.Detail{Detail: "Invalid credentials"})
	}

	token, err := h.getOrCreateToken(id)
	if err != nil {
		log.Printf("❌ Error issuing token for user %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.Detail{Detail: "Internal server error"})
	}

	c.Set("Cache-Control", "no-store")
	return c.Status(fiber.StatusOK).JSON(models.TokenResponse{Token: token})
}

// getOrCreateToken returns the user's stored token, creating one on first
// call. The upsert on the user_id unique key makes concurrent logins converge
// on a single row: the losing insert is a no-op and both callers read back
// the same key.
func (h *AuthHandler) getOrCreateToken(userID int64) (string, error) {
	key := newTokenKey()
	if _, err := h.db.Exec(`
		INSERT INTO auth_tokens (token_key, user_id) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`, key, userID); err != nil {
		return "", err
	}

	var stored string
	err := h.db.QueryRow(`SELECT token_key FROM auth_tokens WHERE user_id = ?`, userID).Scan(&stored)
	return stored, err
}

// newTokenKey generates an opaque 40-char hex key.
func newTokenKey() string {
	raw := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	return raw[:40]
}

// isDuplicateEntry reports whether err is a MySQL unique-key violation
// (error 1062).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
