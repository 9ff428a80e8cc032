package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/bookdesk/bookdesk/internal/config"
	"github.com/bookdesk/bookdesk/internal/database"
	"github.com/bookdesk/bookdesk/internal/models"
	"github.com/bookdesk/bookdesk/internal/services"
)

// OrderParser turns free order text into structured line items.
// Satisfied by *services.OrderExtractor.
type OrderParser interface {
	Extract(ctx context.Context, text string) ([]models.ExtractedItem, error)
}

// Handler holds all handler dependencies
type Handler struct {
	db        *database.DB
	cfg       *config.Config
	catalog   services.BookSearcher
	extractor OrderParser
	resolver  *services.LineItemResolver
	sessions  *services.SessionStore
}

// New creates a new Handler instance wired to the real external services
func New(db *database.DB, cfg *config.Config) *Handler {
	catalog := services.NewCatalogService(cfg.NaverClientID, cfg.NaverClientSecret)
	generator := services.NewGeminiGenerator(cfg.GeminiAPIKey)
	extractor := services.NewOrderExtractor(generator, cfg.GeminiModels)
	return NewWithServices(db, cfg, catalog, extractor)
}

// NewWithServices creates a Handler with explicit service dependencies.
// Tests use this to substitute stub searchers and parsers.
func NewWithServices(db *database.DB, cfg *config.Config, catalog services.BookSearcher, extractor OrderParser) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		catalog:   catalog,
		extractor: extractor,
		resolver:  services.NewLineItemResolver(catalog),
		sessions:  services.NewSessionStore(),
	}
}

// Sessions exposes the review session store for the expiry sweep
func (h *Handler) Sessions() *services.SessionStore {
	return h.sessions
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// APIResponse is a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   message,
	})
}
