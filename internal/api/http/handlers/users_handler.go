package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// CookieOptions controls the credential cookie attributes.
type CookieOptions struct {
	Secure bool
}

// UsersHandler exposes auth endpoints.
type UsersHandler struct {
	auth   *service.AuthService
	cookie CookieOptions
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookie CookieOptions) *UsersHandler {
	return &UsersHandler{auth: authService, cookie: cookie}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data":    fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// Login handles POST /api/auth/login and sets the credential cookie.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(h.credentialCookie(token, exp))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"data":    dto.AuthResponse{User: dto.NewUserResponse(user), ExpiresAt: exp},
	})
}

// Logout handles POST /api/auth/logout. Credentials are stateless, so this
// only clears the cookie.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(h.credentialCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// Me handles GET /api/auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Me(c.UserContext(), claims)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user": dto.NewUserResponse(user)}})
}

func (h *UsersHandler) credentialCookie(value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if value != "" {
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	return cookie
}
