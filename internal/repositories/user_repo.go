package repositories

import (
	"context"

	"stockmed/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, role, is_active, profile_image, created_at, updated_at`

func (r *userRepo) scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Role, &user.IsActive, &user.ProfileImage, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, role, is_active, profile_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.IsActive, user.ProfileImage)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, first_name = $4, last_name = $5, role = $6, is_active = $7, profile_image = $8, updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.IsActive, user.ProfileImage, user.ID)
	return err
}

// Delete removes the user. Category and product assignments referencing the
// user are nulled by the ON DELETE SET NULL foreign keys, not cascaded.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY username ASC`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	return count, err
}
