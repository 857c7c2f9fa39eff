package repositories

import (
	"context"

	"stockmed/internal/models"

	"github.com/google/uuid"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	GetByName(ctx context.Context, name string) (*models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Supplier, error)
	Count(ctx context.Context) (int, error)
}

type supplierRepo struct {
	db DB
}

func NewSupplierRepository(db DB) SupplierRepository {
	return &supplierRepo{db: db}
}

const supplierColumns = `id, name, email, phone, website, address, image, description, created_at, updated_at`

func scanSupplier(row interface{ Scan(dest ...any) error }) (*models.Supplier, error) {
	supplier := &models.Supplier{}
	err := row.Scan(&supplier.ID, &supplier.Name, &supplier.Email, &supplier.Phone, &supplier.Website, &supplier.Address, &supplier.Image, &supplier.Description, &supplier.CreatedAt, &supplier.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *supplierRepo) Create(ctx context.Context, supplier *models.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, email, phone, website, address, image, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, supplier.ID, supplier.Name, supplier.Email, supplier.Phone, supplier.Website, supplier.Address, supplier.Image, supplier.Description)
	return err
}

func (r *supplierRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`
	return scanSupplier(r.db.QueryRow(ctx, query, id))
}

func (r *supplierRepo) GetByName(ctx context.Context, name string) (*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE name = $1`
	return scanSupplier(r.db.QueryRow(ctx, query, name))
}

func (r *supplierRepo) Update(ctx context.Context, supplier *models.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, email = $2, phone = $3, website = $4, address = $5, image = $6, description = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query, supplier.Name, supplier.Email, supplier.Phone, supplier.Website, supplier.Address, supplier.Image, supplier.Description, supplier.ID)
	return err
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM suppliers WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *supplierRepo) List(ctx context.Context, limit, offset int) ([]*models.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
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

func (r *supplierRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&count)
	return count, err
}
