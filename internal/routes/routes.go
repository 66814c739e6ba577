package routes

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/notesapi/internal/handlers"
	"github.com/yourorg/notesapi/internal/middleware"
)

func Register(app *fiber.App, db *sql.DB) {
	// Health check (no auth, no rate limiting)
	app.Get("/health", handlers.Health)

	// ============================================================================
	// AUTH (strict rate limiting against brute force)
	// ============================================================================
	authHandler := handlers.NewAuthHandler(db)
	auth := app.Group("/auth")
	auth.Use(middleware.StrictRateLimiter())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// ============================================================================
	// NOTES (bearer token required)
	// ============================================================================
	notesHandler := handlers.NewNotesHandler(db)
	notes := app.Group("/notes")
	notes.Use(middleware.TokenAuth(db))
	notes.Get("/", notesHandler.List)
	notes.Post("/", notesHandler.Create)
	notes.Get("/:id", notesHandler.Get)
	notes.Put("/:id", notesHandler.Update)
	notes.Patch("/:id", notesHandler.PartialUpdate)
	notes.Delete("/:id", notesHandler.Delete)
}
