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

type SupplierService interface {
	Create(ctx context.Context, supplier *models.Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Supplier, error)
	GetByName(ctx context.Context, name string) (*models.Supplier, error)
}

type supplierService struct {
	supplierRepo repositories.SupplierRepository
}

func NewSupplierService(supplierRepo repositories.SupplierRepository) SupplierService {
	return &supplierService{
		supplierRepo: supplierRepo,
	}
}

func (s *supplierService) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.Name == "" {
		return errors.New("supplier name is required")
	}
	if supplier.Email == "" {
		return errors.New("supplier email is required")
	}

	existing, err := s.supplierRepo.GetByName(ctx, supplier.Name)
	if err != nil && !common.IsNotFound(err) {
		return fmt.Errorf("failed to check supplier name: %w", err)
	}
	if existing != nil {
		return errors.New("supplier with this name already exists")
	}

	supplier.ID = uuid.New()
	return s.supplierRepo.Create(ctx, supplier)
}

func (s *supplierService) GetByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.TranslateNotFound(err)
	}
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, supplier *models.Supplier) error {
	if supplier.Name == "" {
		return errors.New("supplier name is required")
	}

	if _, err := s.supplierRepo.GetByID(ctx, supplier.ID); err != nil {
		return common.TranslateNotFound(err)
	}

	return s.supplierRepo.Update(ctx, supplier)
}

func (s *supplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.supplierRepo.GetByID(ctx, id); err != nil {
		return common.TranslateNotFound(err)
	}
	return s.supplierRepo.Delete(ctx, id)
}

func (s *supplierService) List(ctx context.Context, limit, offset int) ([]*models.Supplier, error) {
	return s.supplierRepo.List(ctx, limit, offset)
}

func (s *supplierService) GetByName(ctx context.Context, name string) (*models.Supplier, error) {
	supplier, err := s.supplierRepo.GetByName(ctx, name)
	if err != nil {
		return nil, common.TranslateNotFound(err)
	}
	return supplier, nil
}
