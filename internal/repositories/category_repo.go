package repositories

import (
	"context"

	"stockmed/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
	ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
	ClearAssignments(ctx context.Context, userID uuid.UUID) error
	AssignTo(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) error
	CountAssignedTo(ctx context.Context, userID uuid.UUID) (int, error)
	Count(ctx context.Context) (int, error)
}

type categoryRepo struct {
	db DB
}

func NewCategoryRepository(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, name, description, assigned_to, created_at, updated_at`

func scanCategory(row interface{ Scan(dest ...any) error }) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(&category.ID, &category.Name, &category.Description, &category.AssignedTo, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, assigned_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description, category.AssignedTo)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRow(ctx, query, id))
}

// GetByName is a case-sensitive exact match; import resolution depends on that.
func (r *categoryRepo) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`
	return scanCategory(r.db.QueryRow(ctx, query, name))
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, assigned_to = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.Description, category.AssignedTo, category.ID)
	return err
}

// Delete removes the category. Its products go with it via the ON DELETE
// CASCADE foreign key on products.category_id.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE assigned_to = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) ClearAssignments(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE categories SET assigned_to = NULL, updated_at = NOW() WHERE assigned_to = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *categoryRepo) AssignTo(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE categories SET assigned_to = $1, updated_at = NOW() WHERE id = ANY($2)`
	_, err := r.db.Exec(ctx, query, userID, ids)
	return err
}

func (r *categoryRepo) CountAssignedTo(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE assigned_to = $1`, userID).Scan(&count)
	return count, err
}

func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}
