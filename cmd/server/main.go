package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/bookdesk/bookdesk/internal/config"
	"github.com/bookdesk/bookdesk/internal/database"
	"github.com/bookdesk/bookdesk/internal/handlers"
	"github.com/bookdesk/bookdesk/internal/middleware"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create admin user if it doesn't exist
	if err := database.EnsureAdminUser(db, cfg); err != nil {
		log.Printf("Warning: Could not ensure admin user: %v", err)
	}

	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set, AI order parsing will report a configuration error")
	}
	if cfg.NaverClientID == "" || cfg.NaverClientSecret == "" {
		log.Println("Naver credentials not set, book search will report a configuration error")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Create handler with dependencies
	h := handlers.New(db, cfg)

	// Expire abandoned review sessions in the background
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if removed := h.Sessions().Sweep(); removed > 0 {
				log.Printf("Expired %d review session(s)", removed)
			}
		}
	}()

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)
	auth.Post("/find-account", h.FindAccount)
	auth.Get("/me", middleware.AuthRequired(cfg), h.GetCurrentUser)

	// Book search (authenticated)
	api.Get("/search", middleware.AuthRequired(cfg), h.SearchBooks)

	// Order text extraction (authenticated)
	api.Post("/parse-order", middleware.AuthRequired(cfg), h.ParseOrder)

	// AI order review sessions (authenticated)
	aiOrders := api.Group("/ai-orders", middleware.AuthRequired(cfg))
	aiOrders.Post("/", h.StartAIOrder)
	aiOrders.Get("/:id", h.GetAIOrder)
	aiOrders.Delete("/:id", h.DiscardAIOrder)
	aiOrders.Put("/:id/items/:index", h.EditAIOrderItem)
	aiOrders.Post("/:id/items/:index/retry", h.RetryAIOrderItem)
	aiOrders.Post("/:id/items/:index/merge", h.MergeAIOrderItem)
	aiOrders.Post("/:id/merge-all", h.MergeAllAIOrderItems)
	aiOrders.Delete("/:id/items/:index", h.RemoveAIOrderItem)

	// Order routes (authenticated)
	orders := api.Group("/orders", middleware.AuthRequired(cfg))
	orders.Post("/", h.CreateOrder)
	orders.Get("/", h.ListOrders)
	orders.Get("/:id", h.GetOrder)

	// Admin routes (admin only)
	admin := api.Group("/admin", middleware.AuthRequired(cfg), middleware.AdminRequired())
	admin.Get("/orders", h.AdminListOrders)
	admin.Patch("/orders/:id/status", h.AdminUpdateOrderStatus)
	admin.Get("/users", h.AdminListUsers)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
