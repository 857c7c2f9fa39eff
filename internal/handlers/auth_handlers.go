package handlers

import (
	"errors"
	"net/http"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/services"

	"github.com/labstack/echo/v4"
)

type AuthHandlers struct {
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandlers(authService services.AuthService, userService services.UserService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userService: userService,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserPayload `json:"user"`
}

// Login authenticates a username/password pair and issues a bearer token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return common.SendValidationError(c, "username", "username and password are required")
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "Failed to authenticate")
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return common.SendServerError(c, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  userPayload(user),
	})
}

type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Register creates an account and logs it in by issuing a token right away.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Password == "" {
		return common.SendValidationError(c, "password", "password is required")
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleEmployee
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
	}

	if err := h.userService.Create(c.Request().Context(), user, req.Password, nil); err != nil {
		return common.SendClientError(c, err.Error())
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return common.SendServerError(c, "Failed to issue token")
	}

	return c.JSON(http.StatusCreated, LoginResponse{
		Token: token,
		User:  userPayload(user),
	})
}

// Me returns the profile of the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to load user")
	}

	return c.JSON(http.StatusOK, map[string]any{"user": userPayload(user)})
}
