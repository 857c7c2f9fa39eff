package services

import (
	"context"
	"errors"
	"fmt"

	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/repositories"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) Create(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return errors.New("category name is required")
	}

	existing, err := s.categoryRepo.GetByName(ctx, category.Name)
	if err != nil && !common.IsNotFound(err) {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if existing != nil {
		return errors.New("category with this name already exists")
	}

	category.ID = uuid.New()
	return s.categoryRepo.Create(ctx, category)
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.TranslateNotFound(err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, category *models.Category) error {
	if category.Name == "" {
		return errors.New("category name is required")
	}

	if _, err := s.categoryRepo.GetByID(ctx, category.ID); err != nil {
		return common.TranslateNotFound(err)
	}

	return s.categoryRepo.Update(ctx, category)
}

// Delete removes the category and, through the store's cascade, its products.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return common.TranslateNotFound(err)
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *categoryService) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, limit, offset)
}
