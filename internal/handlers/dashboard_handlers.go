package handlers

import (
	"net/http"
	"time"

	"stockmed/internal/analytics"
	"stockmed/internal/common"
	"stockmed/internal/models"

	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	analyticsSvc *analytics.Service
}

func NewDashboardHandlers(analyticsSvc *analytics.Service) *DashboardHandlers {
	return &DashboardHandlers{analyticsSvc: analyticsSvc}
}

// GetDashboard returns the aggregate stock health snapshot.
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	summary, err := h.analyticsSvc.Dashboard(c.Request().Context(), time.Now())
	if err != nil {
		return common.SendServerError(c, "Failed to build dashboard")
	}
	return c.JSON(http.StatusOK, summary)
}

// GetLowStock returns the full low stock list, beyond the dashboard preview.
func (h *DashboardHandlers) GetLowStock(c echo.Context) error {
	products, err := h.analyticsSvc.LowStock(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to load low stock products")
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}

// GetNearExpiry returns the full near expiry list.
func (h *DashboardHandlers) GetNearExpiry(c echo.Context) error {
	products, err := h.analyticsSvc.NearExpiry(c.Request().Context(), time.Now(), models.ExpiryHorizonDays)
	if err != nil {
		return common.SendServerError(c, "Failed to load near expiry products")
	}
	return c.JSON(http.StatusOK, map[string]any{"products": products})
}
