package jobs

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockmed/internal/models"
	"stockmed/internal/repositories"
)

// csvHeader is the column order shared by export and import.
var csvHeader = []string{"name", "category", "suppliers", "batch_number", "quantity_in_stock", "reorder_level", "unit_price", "expiry_date"}

type ProductExporter struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
}

type ExportResult struct {
	FileName        string
	FileContent     string
	RecordsExported int
}

func NewProductExporter(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository) *ProductExporter {
	return &ProductExporter{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Export renders the full product catalog as CSV. Supplier names are joined
// with ", " inside a single cell so a re-import reconstructs the same set.
func (e *ProductExporter) Export(ctx context.Context, now time.Time) (*ExportResult, error) {
	products, err := e.productRepo.Filter(ctx, &models.ProductFilter{Limit: -1})
	if err != nil {
		return nil, fmt.Errorf("failed to load products for export: %w", err)
	}

	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	categoryNames := make(map[string]string)
	for _, product := range products {
		categoryName, ok := categoryNames[product.CategoryID.String()]
		if !ok {
			category, err := e.categoryRepo.GetByID(ctx, product.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve category for product %s: %w", product.Name, err)
			}
			categoryName = category.Name
			categoryNames[product.CategoryID.String()] = categoryName
		}

		suppliers, err := e.productRepo.ListSuppliers(ctx, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve suppliers for product %s: %w", product.Name, err)
		}
		supplierNames := make([]string, 0, len(suppliers))
		for _, supplier := range suppliers {
			supplierNames = append(supplierNames, supplier.Name)
		}

		record := []string{
			product.Name,
			categoryName,
			strings.Join(supplierNames, ", "),
			product.BatchNumber,
			strconv.Itoa(product.QuantityInStock),
			strconv.Itoa(product.ReorderLevel),
			product.UnitPrice.StringFixed(2),
			product.ExpiryDate.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName:        fmt.Sprintf("products_%s.csv", now.Format("20060102_150405")),
		FileContent:     buf.String(),
		RecordsExported: len(products),
	}, nil
}
