package handlers

import (
	"net/http"
	"time"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

type ProductRequest struct {
	Name            string   `json:"name"`
	CategoryID      string   `json:"category_id"`
	BatchNumber     string   `json:"batch_number"`
	QuantityInStock *int     `json:"quantity_in_stock"`
	ReorderLevel    *int     `json:"reorder_level"`
	UnitPrice       string   `json:"unit_price"`
	ExpiryDate      string   `json:"expiry_date"`
	Description     *string  `json:"description"`
	AssignedTo      *string  `json:"assigned_to"`
	SupplierIDs     []string `json:"supplier_ids"`
}

type ListProductsRequest struct {
	Query      string `query:"q"`
	CategoryID string `query:"category_id"`
	SupplierID string `query:"supplier_id"`
	LowStock   bool   `query:"low_stock"`
	Expiring   bool   `query:"expiring"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

func (h *ProductHandlers) ListProducts(c echo.Context) error {
	var req ListProductsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}

	filter := &models.ProductFilter{
		Query:      req.Query,
		LowStock:   req.LowStock,
		NearExpiry: req.Expiring,
		AsOf:       time.Now(),
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.CategoryID != "" {
		id, err := common.ValidateUUID(req.CategoryID, "category_id")
		if err != nil {
			return common.SendValidationError(c, "category_id", err.Error())
		}
		filter.CategoryID = &id
	}
	if req.SupplierID != "" {
		id, err := common.ValidateUUID(req.SupplierID, "supplier_id")
		if err != nil {
			return common.SendValidationError(c, "supplier_id", err.Error())
		}
		filter.SupplierID = &id
	}

	products, err := h.productService.List(c.Request().Context(), filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to load product")
	}
	return c.JSON(http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	product, supplierIDs, err := h.productFromRequest(&req, nil)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.Create(c.Request().Context(), product, supplierIDs); err != nil {
		if common.IsNotFound(err) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]any{"product": product})
}

func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request body")
	}

	existing, err := h.productService.GetByID(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to load product")
	}

	product, supplierIDs, err := h.productFromRequest(&req, existing)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	product.ID = id

	if err := h.productService.Update(ctx, product, supplierIDs); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProductImage stores the multipart "image" file and records its
// object key on the product.
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
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

	if err := h.productService.UploadImage(c.Request().Context(), id, fileHeader.Filename, src, fileHeader.Size); err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to upload image")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Image uploaded"})
}

func (h *ProductHandlers) GetProductImageURL(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.productService.ImageURL(c.Request().Context(), id, 15*time.Minute)
	if err != nil {
		if common.IsNotFound(err) {
			return common.SendNotFoundError(c, "Product image")
		}
		return common.SendServerError(c, "Failed to generate image URL")
	}
	return c.JSON(http.StatusOK, map[string]any{"url": url})
}

func (h *ProductHandlers) productFromRequest(req *ProductRequest, existing *models.Product) (*models.Product, []uuid.UUID, error) {
	product := &models.Product{}
	if existing != nil {
		*product = *existing
		product.Suppliers = nil
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.BatchNumber != "" {
		product.BatchNumber = req.BatchNumber
	}
	if req.CategoryID != "" {
		categoryID, err := common.ValidateUUID(req.CategoryID, "category_id")
		if err != nil {
			return nil, nil, err
		}
		product.CategoryID = categoryID
	}
	if req.QuantityInStock != nil {
		product.QuantityInStock = *req.QuantityInStock
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitPrice != "" {
		price, err := decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return nil, nil, err
		}
		product.UnitPrice = price
	}
	if req.ExpiryDate != "" {
		expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, nil, err
		}
		product.ExpiryDate = expiry
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.AssignedTo != nil {
		assignedTo, err := common.ValidateUUID(*req.AssignedTo, "assigned_to")
		if err != nil {
			return nil, nil, err
		}
		product.AssignedTo = &assignedTo
	}

	var supplierIDs []uuid.UUID
	if req.SupplierIDs != nil {
		supplierIDs = make([]uuid.UUID, 0, len(req.SupplierIDs))
		for _, s := range req.SupplierIDs {
			id, err := common.ValidateUUID(s, "supplier_ids")
			if err != nil {
				return nil, nil, err
			}
			supplierIDs = append(supplierIDs, id)
		}
	}
	return product, supplierIDs, nil
}
