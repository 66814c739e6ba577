package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	appdb "github.com/yourorg/notesapi/internal/db"
	"github.com/yourorg/notesapi/internal/middleware"
	"github.com/yourorg/notesapi/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.RateLimiter())

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	var dbReady bool

	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			routes.Register(app, db)
			dbReady = true
			log.Printf("✅ Database ready and routes registered")
			return
		}
	}()

	// Wait briefly for DB to be ready
	for i := 0; i < 10 && !dbReady; i++ {
		time.Sleep(500 * time.Millisecond)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("🛑 Termination signal received, shutting down...")

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error shutting down server: %v", err)
		}

		log.Println("✅ Server stopped")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server listening on :%s", port)
	log.Println("📍 Endpoints:")
	log.Println("   GET    /health/          - Health check")
	log.Println("   POST   /auth/register    - Register a new user")
	log.Println("   POST   /auth/login       - Login, returns bearer token")
	log.Println("   GET    /notes/           - List own notes (paginated)")
	log.Println("   POST   /notes/           - Create a note")
	log.Println("   GET    /notes/:id/       - Retrieve a note")
	log.Println("   PUT    /notes/:id/       - Replace a note")
	log.Println("   PATCH  /notes/:id/       - Partially update a note")
	log.Println("   DELETE /notes/:id/       - Delete a note")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
