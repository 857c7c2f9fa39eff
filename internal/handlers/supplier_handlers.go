package handlers

import (
	"net/http"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/services"

	"github.com/labstack/echo/v4"
)

type SupplierHandlers struct {
	supplierService services.SupplierService
}

func NewSupplierHandlers(supplierService services.SupplierService) *SupplierHandlers {
	return &SupplierHandlers{supplierService: supplierService}
}

type SupplierRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Website     *string `json:"website"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
}

func (h *SupplierHandlers) ListSuppliers(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	req.normalize()

	suppliers, err := h.supplierService.List(c.Request().Context(), req.Limit, req.Offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list suppliers")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"suppliers": suppliers,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}

func (h *SupplierHandlers) GetSupplier(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	supplier, err := h.supplierService.GetByID(c.Request().Context(), id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Supplier")
		}
		return common.SendServerError(c, "Failed to load supplier")
	}
	return c.JSON(http.StatusOK, map[string]any{"supplier": supplier})
}

func (h *SupplierHandlers) CreateSupplier(c echo.Context) error {
	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	supplier := &models.Supplier{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Website:     req.Website,
		Address:     req.Address,
		Description: req.Description,
	}
	if err := h.supplierService.Create(c.Request().Context(), supplier); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"supplier": supplier})
}

func (h *SupplierHandlers) UpdateSupplier(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	supplier, err := h.supplierService.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Supplier")
		}
		return common.SendServerError(c, "Failed to load supplier")
	}

	if req.Name != "" {
		supplier.Name = req.Name
	}
	if req.Email != "" {
		supplier.Email = req.Email
	}
	if req.Phone != "" {
		supplier.Phone = req.Phone
	}
	if req.Website != nil {
		supplier.Website = req.Website
	}
	if req.Address != nil {
		supplier.Address = req.Address
	}
	if req.Description != nil {
		supplier.Description = req.Description
	}

	if err := h.supplierService.Update(ctx, supplier); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"supplier": supplier})
}

func (h *SupplierHandlers) DeleteSupplier(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.supplierService.Delete(c.Request().Context(), id); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Supplier")
		}
		return common.SendServerError(c, "Failed to delete supplier")
	}
	return c.NoContent(http.StatusNoContent)
}
