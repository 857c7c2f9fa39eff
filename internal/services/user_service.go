package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/repositories"

	"github.com/google/uuid"
)

// ErrSelfDelete is returned when an admin tries to remove their own account.
var ErrSelfDelete = errors.New("cannot delete your own account")

// ErrLastAdmin is returned when deleting a user would leave no administrator.
var ErrLastAdmin = errors.New("cannot delete the only administrator")

const profileImageBucket = "profile-images"

// EmployeeLoad is one employee together with the number of categories they hold.
type EmployeeLoad struct {
	UserID        uuid.UUID `json:"user_id"`
	Label         string    `json:"label"`
	CategoryCount int       `json:"category_count"`
}

type UserService interface {
	Create(ctx context.Context, user *models.User, password string, categoryIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User, categoryIDs []uuid.UUID) error
	Delete(ctx context.Context, requesterID, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetAssignments(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error
	AssignedCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
	EmployeeLoads(ctx context.Context) ([]EmployeeLoad, error)
	UploadProfileImage(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) error
	ProfileImageURL(ctx context.Context, userID uuid.UUID, expiry time.Duration) (string, error)
}

type userService struct {
	userRepo     repositories.UserRepository
	categoryRepo repositories.CategoryRepository
	minioService MinioService
}

func NewUserService(userRepo repositories.UserRepository, categoryRepo repositories.CategoryRepository, minioService MinioService) UserService {
	return &userService{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		minioService: minioService,
	}
}

func (s *userService) Create(ctx context.Context, user *models.User, password string, categoryIDs []uuid.UUID) error {
	if user.Username == "" {
		return errors.New("username is required")
	}
	if user.Email == "" {
		return errors.New("email is required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role: %s", user.Role)
	}

	existing, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err != nil && !common.IsNotFound(err) {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return errors.New("username already taken")
	}

	existingEmail, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil && !common.IsNotFound(err) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existingEmail != nil {
		return errors.New("email already registered")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.ID = uuid.New()
	user.PasswordHash = hash
	user.IsActive = true

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	return s.SetAssignments(ctx, user.ID, categoryIDs)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.TranslateNotFound(err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *models.User, categoryIDs []uuid.UUID) error {
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role: %s", user.Role)
	}

	existing, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return common.TranslateNotFound(err)
	}

	// Password changes go through a dedicated flow; keep the stored hash.
	user.PasswordHash = existing.PasswordHash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// nil means the caller did not touch assignments; an empty slice clears
	// them. Same convention as product supplier updates.
	if categoryIDs == nil {
		return nil
	}
	return s.SetAssignments(ctx, user.ID, categoryIDs)
}

// Delete removes a member. The requesting admin cannot remove themselves,
// and the last administrator cannot be removed at all; everything the user
// touched survives with assignments nulled by the store.
func (s *userService) Delete(ctx context.Context, requesterID, id uuid.UUID) error {
	if requesterID == id {
		return ErrSelfDelete
	}

	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return common.TranslateNotFound(err)
	}

	if target.Role == models.RoleAdmin {
		admins, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.userRepo.Delete(ctx, id)
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// SetAssignments replaces the user's category set wholesale: assignments not
// in categoryIDs are cleared, then the selected ones are pointed at the user.
// A replace, not a merge.
func (s *userService) SetAssignments(ctx context.Context, userID uuid.UUID, categoryIDs []uuid.UUID) error {
	if err := s.categoryRepo.ClearAssignments(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear category assignments: %w", err)
	}
	if err := s.categoryRepo.AssignTo(ctx, categoryIDs, userID); err != nil {
		return fmt.Errorf("failed to assign categories: %w", err)
	}
	return nil
}

func (s *userService) AssignedCategories(ctx context.Context, userID uuid.UUID) ([]*models.Category, error) {
	return s.categoryRepo.ListAssignedTo(ctx, userID)
}

func (s *userService) UploadProfileImage(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader, size int64) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return common.TranslateNotFound(err)
	}

	fileExt := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), fileExt)
	objectKey := fmt.Sprintf("%s/%s%s", userID.String(), baseName, fileExt)

	if err := s.minioService.EnsureBucketExists(ctx, profileImageBucket); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	if err := s.minioService.UploadImage(ctx, profileImageBucket, objectKey, reader, size); err != nil {
		return fmt.Errorf("failed to upload image to storage: %w", err)
	}

	user.ProfileImage = &objectKey
	return s.userRepo.Update(ctx, user)
}

func (s *userService) ProfileImageURL(ctx context.Context, userID uuid.UUID, expiry time.Duration) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", common.TranslateNotFound(err)
	}
	if user.ProfileImage == nil {
		return "", common.ErrNotFound
	}

	url, err := s.minioService.GetPresignedURL(profileImageBucket, *user.ProfileImage, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// EmployeeLoads returns every employee with their assigned-category count.
// Employees with zero categories are included.
func (s *userService) EmployeeLoads(ctx context.Context) ([]EmployeeLoad, error) {
	employees, err := s.userRepo.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, err
	}

	loads := make([]EmployeeLoad, 0, len(employees))
	for _, employee := range employees {
		count, err := s.categoryRepo.CountAssignedTo(ctx, employee.ID)
		if err != nil {
			return nil, err
		}
		loads = append(loads, EmployeeLoad{
			UserID:        employee.ID,
			Label:         employee.DisplayName(),
			CategoryCount: count,
		})
	}
	return loads, nil
}
