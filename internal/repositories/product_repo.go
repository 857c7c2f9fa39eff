package repositories

import (
	"context"
	"fmt"
	"time"

	"stockmed/internal/models"

	"github.com/google/uuid"
)

// CategoryQuantity is one row of the per-category stock totals.
type CategoryQuantity struct {
	CategoryName  string `json:"category_name"`
	TotalQuantity int    `json:"total_quantity"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByNameAndBatch(ctx context.Context, name, batchNumber string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Filter(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)

	LowStock(ctx context.Context) ([]*models.Product, error)
	NearExpiry(ctx context.Context, asOf time.Time, horizonDays int) ([]*models.Product, error)
	QuantityByCategory(ctx context.Context) ([]CategoryQuantity, error)
	LowStockCount(ctx context.Context) (int, error)
	InStockCount(ctx context.Context) (int, error)

	AddSupplier(ctx context.Context, productID, supplierID uuid.UUID) error
	RemoveSupplier(ctx context.Context, productID, supplierID uuid.UUID) error
	ListSuppliers(ctx context.Context, productID uuid.UUID) ([]*models.Supplier, error)
}

type productRepo struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, category_id, batch_number, quantity_in_stock, reorder_level, unit_price, expiry_date, image, description, assigned_to, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.Name, &product.CategoryID, &product.BatchNumber, &product.QuantityInStock, &product.ReorderLevel, &product.UnitPrice, &product.ExpiryDate, &product.Image, &product.Description, &product.AssignedTo, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, category_id, batch_number, quantity_in_stock, reorder_level, unit_price, expiry_date, image, description, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, product.ID, product.Name, product.CategoryID, product.BatchNumber, product.QuantityInStock, product.ReorderLevel, product.UnitPrice, product.ExpiryDate, product.Image, product.Description, product.AssignedTo)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

// GetByNameAndBatch resolves a product by its natural key. Imports de-duplicate
// on this pair.
func (r *productRepo) GetByNameAndBatch(ctx context.Context, name, batchNumber string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 AND batch_number = $2`
	return scanProduct(r.db.QueryRow(ctx, query, name, batchNumber))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, category_id = $2, batch_number = $3, quantity_in_stock = $4, reorder_level = $5, unit_price = $6, expiry_date = $7, image = $8, description = $9, assigned_to = $10, updated_at = NOW()
		WHERE id = $11
	`
	_, err := r.db.Exec(ctx, query, product.Name, product.CategoryID, product.BatchNumber, product.QuantityInStock, product.ReorderLevel, product.UnitPrice, product.ExpiryDate, product.Image, product.Description, product.AssignedTo, product.ID)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name ASC, batch_number ASC LIMIT $1 OFFSET $2`
	return r.queryProducts(ctx, query, limit, offset)
}

func (r *productRepo) Filter(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `
		SELECT DISTINCT p.id, p.name, p.category_id, p.batch_number, p.quantity_in_stock, p.reorder_level, p.unit_price, p.expiry_date, p.image, p.description, p.assigned_to, p.created_at, p.updated_at
		FROM products p
		WHERE 1=1
	`
	var args []any
	argCount := 0

	if filter.Query != "" {
		argCount++
		queryBase += fmt.Sprintf(` AND p.name ILIKE $%d`, argCount)
		args = append(args, "%"+filter.Query+"%")
	}

	if filter.CategoryID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND p.category_id = $%d`, argCount)
		args = append(args, *filter.CategoryID)
	}

	if filter.SupplierID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM product_suppliers ps
			WHERE ps.product_id = p.id AND ps.supplier_id = $%d
		)`, argCount)
		args = append(args, *filter.SupplierID)
	}

	if filter.LowStock {
		queryBase += ` AND p.quantity_in_stock <= p.reorder_level`
	}

	if filter.NearExpiry {
		asOf := filter.AsOf
		if asOf.IsZero() {
			asOf = time.Now()
		}
		argCount++
		queryBase += fmt.Sprintf(` AND p.expiry_date <= $%d`, argCount)
		args = append(args, asOf.AddDate(0, 0, models.ExpiryHorizonDays))
	}

	queryBase += ` ORDER BY p.name ASC, p.batch_number ASC`
	if filter.Limit > 0 {
		argCount++
		queryBase += fmt.Sprintf(` LIMIT $%d`, argCount)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		argCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argCount)
		args = append(args, filter.Offset)
	}

	return r.queryProducts(ctx, queryBase, args...)
}

func (r *productRepo) LowStock(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity_in_stock <= reorder_level
		ORDER BY name ASC, batch_number ASC
	`
	return r.queryProducts(ctx, query)
}

func (r *productRepo) NearExpiry(ctx context.Context, asOf time.Time, horizonDays int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE expiry_date <= $1
		ORDER BY expiry_date ASC, name ASC
	`
	return r.queryProducts(ctx, query, asOf.AddDate(0, 0, horizonDays))
}

// QuantityByCategory sums stock per category name, ordered by name.
// Categories without products do not appear.
func (r *productRepo) QuantityByCategory(ctx context.Context) ([]CategoryQuantity, error) {
	query := `
		SELECT c.name, SUM(p.quantity_in_stock)
		FROM products p
		JOIN categories c ON c.id = p.category_id
		GROUP BY c.name
		ORDER BY c.name ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryQuantity
	for rows.Next() {
		var cq CategoryQuantity
		if err := rows.Scan(&cq.CategoryName, &cq.TotalQuantity); err != nil {
			return nil, err
		}
		totals = append(totals, cq)
	}
	return totals, rows.Err()
}

func (r *productRepo) LowStockCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE quantity_in_stock <= reorder_level`).Scan(&count)
	return count, err
}

func (r *productRepo) InStockCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE quantity_in_stock > reorder_level`).Scan(&count)
	return count, err
}

// AddSupplier associates a supplier with the product. Re-adding an existing
// association is a no-op, which keeps repeated imports additive.
func (r *productRepo) AddSupplier(ctx context.Context, productID, supplierID uuid.UUID) error {
	query := `
		INSERT INTO product_suppliers (product_id, supplier_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, supplier_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, productID, supplierID)
	return err
}

func (r *productRepo) RemoveSupplier(ctx context.Context, productID, supplierID uuid.UUID) error {
	query := `DELETE FROM product_suppliers WHERE product_id = $1 AND supplier_id = $2`
	_, err := r.db.Exec(ctx, query, productID, supplierID)
	return err
}

func (r *productRepo) ListSuppliers(ctx context.Context, productID uuid.UUID) ([]*models.Supplier, error) {
	query := `
		SELECT s.id, s.name, s.email, s.phone, s.website, s.address, s.image, s.description, s.created_at, s.updated_at
		FROM suppliers s
		JOIN product_suppliers ps ON ps.supplier_id = s.id
		WHERE ps.product_id = $1
		ORDER BY s.name ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []*models.Supplier
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}
