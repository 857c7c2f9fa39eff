package handlers

import (
	"net/http"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/services"

	"github.com/labstack/echo/v4"
)

type CategoryHandlers struct {
	categoryService services.CategoryService
}

func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService}
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type ListRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (r *ListRequest) normalize() {
	if r.Limit <= 0 {
		r.Limit = 50
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	req.normalize()

	categories, err := h.categoryService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"categories": categories,
		"limit":      req.Limit,
		"offset":     req.Offset,
	})
}

func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	category, err := h.categoryService.GetByID(c.Request().Context(), id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Category")
		}
		return common.SendServerError(c, "Failed to load category")
	}
	return c.JSON(http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.categoryService.Create(c.Request().Context(), category); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"category": category})
}

func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	category, err := h.categoryService.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Category")
		}
		return common.SendServerError(c, "Failed to load category")
	}

	if req.Name != "" {
		category.Name = req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}

	if err := h.categoryService.Update(ctx, category); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"category": category})
}

// DeleteCategory removes a category; its products go with it.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Category")
		}
		return common.SendServerError(c, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}
