package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"stockmed/internal/common"
	"stockmed/internal/jobs"

	"github.com/labstack/echo/v4"
)

const maxImportSize = 10 << 20 // 10 MiB

// JobHandlers exposes the CSV import/export pipeline and the manual alert
// trigger.
type JobHandlers struct {
	importer   *jobs.ProductImporter
	exporter   *jobs.ProductExporter
	dispatcher *jobs.AlertDispatcher
}

func NewJobHandlers(importer *jobs.ProductImporter, exporter *jobs.ProductExporter, dispatcher *jobs.AlertDispatcher) *JobHandlers {
	return &JobHandlers{
		importer:   importer,
		exporter:   exporter,
		dispatcher: dispatcher,
	}
}

// ImportProducts ingests a product CSV uploaded as the multipart "file"
// field. Row errors are reported in the response, not as a failed request.
func (h *JobHandlers) ImportProducts(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "CSV file is required")
	}
	if fileHeader.Size > maxImportSize {
		return common.SendClientError(c, "File too large")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}

	result, err := h.importer.Import(c.Request().Context(), string(data))
	if err != nil {
		return common.SendServerError(c, "Import failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"records_processed": result.RecordsProcessed,
		"records_imported":  result.RecordsImported,
		"errors":            result.Errors,
	})
}

// ExportProducts streams the product catalog as a CSV attachment.
func (h *JobHandlers) ExportProducts(c echo.Context) error {
	result, err := h.exporter.Export(c.Request().Context(), time.Now())
	if err != nil {
		return common.SendServerError(c, "Export failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.FileName))
	return c.Blob(http.StatusOK, "text/csv", []byte(result.FileContent))
}

// TriggerAlerts runs the alert dispatch immediately instead of waiting for
// the scheduled run.
func (h *JobHandlers) TriggerAlerts(c echo.Context) error {
	sent, err := h.dispatcher.Dispatch(c.Request().Context(), time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"emails_sent": sent,
			"error":       err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"emails_sent": sent})
}
