package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookdesk/bookdesk/internal/database"
	"github.com/bookdesk/bookdesk/internal/middleware"
	"github.com/bookdesk/bookdesk/internal/models"
)

// Signup handles academy account registration
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Password == "" || req.AcademyName == "" || req.Contact == "" {
		return Error(c, fiber.StatusBadRequest, "all fields are required")
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return Error(c, fiber.StatusBadRequest, "username must be between 3 and 50 characters")
	}
	if len(req.Password) < 8 {
		return Error(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to process password")
	}

	user, err := h.db.CreateUser(c.Context(), req.Username, string(hashedPassword), req.Name, req.AcademyName, req.Contact)
	if err != nil {
		if errors.Is(err, database.ErrUsernameExists) {
			return Error(c, fiber.StatusConflict, "username already taken")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to create user")
	}

	token, err := h.generateToken(user)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  user,
	})
}

// Login handles user authentication
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return Error(c, fiber.StatusBadRequest, "username and password are required")
	}

	user, err := h.db.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return Error(c, fiber.StatusInternalServerError, "authentication failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return Error(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	// Update last login
	h.db.UpdateUserLastLogin(c.Context(), user.ID)

	token, err := h.generateToken(user)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  user,
	})
}

// GetCurrentUser returns the currently authenticated user
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	user, err := h.db.GetUserByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Error(c, fiber.StatusNotFound, "user not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get user")
	}

	return Success(c, user)
}

// FindAccount handles username recovery by name and contact number.
// Password recovery is not supported: passwords are stored hashed, so
// there is nothing to return.
func (h *Handler) FindAccount(c *fiber.Ctx) error {
	var req models.FindAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	switch req.Type {
	case "find-id":
		if req.Name == "" || req.Contact == "" {
			return Error(c, fiber.StatusBadRequest, "name and contact are required")
		}
		username, err := h.db.FindUsernameByNameAndContact(c.Context(), req.Name, req.Contact)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				return Error(c, fiber.StatusNotFound, "no matching account found")
			}
			return Error(c, fiber.StatusInternalServerError, "account lookup failed")
		}
		return Success(c, fiber.Map{"username": username})
	case "find-password":
		return Error(c, fiber.StatusGone, "password recovery is not available, contact the administrator")
	default:
		return Error(c, fiber.StatusBadRequest, "invalid request type")
	}
}

// generateToken creates a signed JWT for the user
func (h *Handler) generateToken(user *models.User) (string, error) {
	claims := middleware.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.cfg.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
