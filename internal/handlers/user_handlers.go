package handlers

import (
	"errors"
	"net/http"
	"time"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandlers covers team member management: only administrators reach
// these routes.
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// UserPayload is the JSON shape of a user; the password hash never leaves
// the server.
type UserPayload struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    *string     `json:"first_name,omitempty"`
	LastName     *string     `json:"last_name,omitempty"`
	Role         models.Role `json:"role"`
	IsActive     bool        `json:"is_active"`
	ProfileImage *string     `json:"profile_image,omitempty"`
	DisplayName  string      `json:"display_name"`
}

func userPayload(user *models.User) *UserPayload {
	return &UserPayload{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		IsActive:     user.IsActive,
		ProfileImage: user.ProfileImage,
		DisplayName:  user.DisplayName(),
	}
}

type CreateUserRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FirstName   *string  `json:"first_name"`
	LastName    *string  `json:"last_name"`
	Role        string   `json:"role"`
	CategoryIDs []string `json:"category_ids"`
}

type ListUsersRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func parseCategoryIDs(raw []string) ([]uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := common.ValidateUUID(s, "category_ids")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *UserHandlers) ListUsers(c echo.Context) error {
	var req ListUsersRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	users, err := h.userService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}

	payload := make([]*UserPayload, 0, len(users))
	for _, user := range users {
		payload = append(payload, userPayload(user))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"users":  payload,
		"limit":  req.Limit,
		"offset": req.Offset,
	})
}

func (h *UserHandlers) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.userService.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to load user")
	}

	categories, err := h.userService.AssignedCategories(ctx, id)
	if err != nil {
		return common.SendServerError(c, "Failed to load assigned categories")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user":                userPayload(user),
		"assigned_categories": categories,
	})
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}
	if req.Password == "" {
		return common.SendValidationError(c, "password", "password is required")
	}

	categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
	if err != nil {
		return common.SendValidationError(c, "category_ids", err.Error())
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.Role(req.Role),
	}

	if err := h.userService.Create(c.Request().Context(), user, req.Password, categoryIDs); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"user": userPayload(user)})
}

type UpdateUserRequest struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   *string  `json:"first_name"`
	LastName    *string  `json:"last_name"`
	Role        string   `json:"role"`
	IsActive    *bool    `json:"is_active"`
	CategoryIDs []string `json:"category_ids"`
}

func (h *UserHandlers) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	categoryIDs, err := parseCategoryIDs(req.CategoryIDs)
	if err != nil {
		return common.SendValidationError(c, "category_ids", err.Error())
	}

	existing, err := h.userService.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to load user")
	}

	if req.Username != "" {
		existing.Username = req.Username
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.FirstName != nil {
		existing.FirstName = req.FirstName
	}
	if req.LastName != nil {
		existing.LastName = req.LastName
	}
	if req.Role != "" {
		existing.Role = models.Role(req.Role)
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := h.userService.Update(ctx, existing, categoryIDs); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"user": userPayload(existing)})
}

func (h *UserHandlers) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	requesterID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.userService.Delete(ctx, requesterID, id); err != nil {
		if errors.Is(err, services.ErrSelfDelete) {
			return common.SendClientError(c, "You cannot delete your own account")
		}
		if errors.Is(err, services.ErrLastAdmin) {
			return common.SendClientError(c, "You cannot delete the only administrator")
		}
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to delete user")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadUserProfileImage stores the multipart "image" file and records its
// object key on the user.
func (h *UserHandlers) UploadUserProfileImage(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "image file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	if err := h.userService.UploadProfileImage(c.Request().Context(), id, fileHeader.Filename, src, fileHeader.Size); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to upload image")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Image uploaded"})
}

func (h *UserHandlers) GetUserProfileImageURL(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.userService.ProfileImageURL(c.Request().Context(), id, 15*time.Minute)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Profile image")
		}
		return common.SendServerError(c, "Failed to generate image URL")
	}
	return c.JSON(http.StatusOK, map[string]any{"url": url})
}
