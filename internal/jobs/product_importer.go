package jobs

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductImporter struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	supplierRepo repositories.SupplierRepository
}

type ImportResult struct {
	RecordsProcessed int
	RecordsImported  int
	Errors           []string
}

func NewProductImporter(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, supplierRepo repositories.SupplierRepository) *ProductImporter {
	return &ProductImporter{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// Import ingests a product CSV. Rows are keyed by the header line, so column
// order does not matter. Each row is processed independently: a bad row is
// recorded in Errors and the batch moves on.
//
// Products are de-duplicated on (name, batch_number). A re-imported row
// updates quantity, reorder level, price and expiry, but never moves the
// product to a different category. Supplier cells are additive across
// imports: names already attached to the product stay attached.
func (i *ProductImporter) Import(ctx context.Context, data string) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}}

	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to parse CSV: %v", err))
		return result, nil
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "CSV file is empty")
		return result, nil
	}

	columns := make(map[string]int, len(records[0]))
	for idx, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	for _, required := range csvHeader {
		if _, ok := columns[required]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("missing required column %q", required))
			return result, nil
		}
	}

	for rowNum, record := range records[1:] {
		result.RecordsProcessed++
		if err := i.importRow(ctx, columns, record); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum+2, err))
			continue
		}
		result.RecordsImported++
	}
	return result, nil
}

func (i *ProductImporter) importRow(ctx context.Context, columns map[string]int, record []string) error {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := field("name")
	if name == "" {
		return fmt.Errorf("name is required")
	}
	batchNumber := field("batch_number")
	if batchNumber == "" {
		return fmt.Errorf("batch_number is required")
	}
	categoryName := field("category")
	if categoryName == "" {
		return fmt.Errorf("category is required")
	}

	quantity, err := strconv.Atoi(field("quantity_in_stock"))
	if err != nil || quantity < 0 {
		return fmt.Errorf("invalid quantity_in_stock %q", field("quantity_in_stock"))
	}
	reorderLevel, err := strconv.Atoi(field("reorder_level"))
	if err != nil || reorderLevel < 0 {
		return fmt.Errorf("invalid reorder_level %q", field("reorder_level"))
	}
	unitPrice, err := decimal.NewFromString(field("unit_price"))
	if err != nil || unitPrice.LessThan(decimal.Zero) {
		return fmt.Errorf("invalid unit_price %q", field("unit_price"))
	}
	expiryDate, err := time.Parse("2006-01-02", field("expiry_date"))
	if err != nil {
		return fmt.Errorf("invalid expiry_date %q, expected YYYY-MM-DD", field("expiry_date"))
	}

	category, err := i.findOrCreateCategory(ctx, categoryName)
	if err != nil {
		return fmt.Errorf("failed to resolve category %q: %v", categoryName, err)
	}

	product, err := i.productRepo.GetByNameAndBatch(ctx, name, batchNumber)
	switch {
	case err == nil:
		// Existing product keeps its original category.
		product.QuantityInStock = quantity
		product.ReorderLevel = reorderLevel
		product.UnitPrice = unitPrice
		product.ExpiryDate = expiryDate
		if err := i.productRepo.Update(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %v", err)
		}
	case common.IsNotFound(err):
		product = &models.Product{
			ID:              uuid.New(),
			Name:            name,
			CategoryID:      category.ID,
			BatchNumber:     batchNumber,
			QuantityInStock: quantity,
			ReorderLevel:    reorderLevel,
			UnitPrice:       unitPrice,
			ExpiryDate:      expiryDate,
		}
		if err := i.productRepo.Create(ctx, product); err != nil {
			return fmt.Errorf("failed to create product: %v", err)
		}
	default:
		return fmt.Errorf("failed to look up product: %v", err)
	}

	for _, supplierName := range strings.Split(field("suppliers"), ",") {
		supplierName = strings.TrimSpace(supplierName)
		if supplierName == "" {
			continue
		}
		supplier, err := i.findOrCreateSupplier(ctx, supplierName)
		if err != nil {
			return fmt.Errorf("failed to resolve supplier %q: %v", supplierName, err)
		}
		if err := i.productRepo.AddSupplier(ctx, product.ID, supplier.ID); err != nil {
			return fmt.Errorf("failed to attach supplier %q: %v", supplierName, err)
		}
	}
	return nil
}

func (i *ProductImporter) findOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category, err := i.categoryRepo.GetByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !common.IsNotFound(err) {
		return nil, err
	}

	category = &models.Category{ID: uuid.New(), Name: name}
	if err := i.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (i *ProductImporter) findOrCreateSupplier(ctx context.Context, name string) (*models.Supplier, error) {
	supplier, err := i.supplierRepo.GetByName(ctx, name)
	if err == nil {
		return supplier, nil
	}
	if !common.IsNotFound(err) {
		return nil, err
	}

	supplier = &models.Supplier{ID: uuid.New(), Name: name}
	if err := i.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}
