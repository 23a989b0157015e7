package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", middleware.AuthRequired(), h.HandleMe)
}

// HandleRegister signs up a new customer.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	result, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.CurrentUser(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(user)
}
