package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"stockmed/internal/caching"
	"stockmed/internal/common"
	"stockmed/internal/models"
	"stockmed/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const productImageBucket = "product-images"

type ProductService interface {
	Create(ctx context.Context, product *models.Product, supplierIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product, supplierIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	UploadImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64) error
	ImageURL(ctx context.Context, productID uuid.UUID, expiry time.Duration) (string, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	supplierRepo repositories.SupplierRepository
	minioService MinioService
	cacheService caching.CacheService
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, supplierRepo repositories.SupplierRepository, minioService MinioService, cacheService caching.CacheService) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		minioService: minioService,
		cacheService: cacheService,
	}
}

func validateProduct(product *models.Product) error {
	if product.Name == "" {
		return errors.New("product name is required")
	}
	if product.BatchNumber == "" {
		return errors.New("batch number is required")
	}
	if product.QuantityInStock < 0 {
		return errors.New("quantity in stock cannot be negative")
	}
	if product.ReorderLevel < 0 {
		return errors.New("reorder level cannot be negative")
	}
	if product.UnitPrice.LessThan(decimal.Zero) {
		return errors.New("unit price cannot be negative")
	}
	if product.ExpiryDate.IsZero() {
		return errors.New("expiry date is required")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, product *models.Product, supplierIDs []uuid.UUID) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	if _, err := s.categoryRepo.GetByID(ctx, product.CategoryID); err != nil {
		if common.IsNotFound(err) {
			return fmt.Errorf("category not found: %w", common.ErrNotFound)
		}
		return err
	}

	product.ID = uuid.New()
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}

	if err := s.setSuppliers(ctx, product.ID, supplierIDs); err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheService.GetProduct(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors must not fail the read
		log.Printf("cache error for product %s: %v", id.String(), err)
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.TranslateNotFound(err)
	}

	suppliers, err := s.productRepo.ListSuppliers(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Suppliers = suppliers

	if cacheErr := s.cacheService.SetProduct(ctx, product, 15*time.Minute); cacheErr != nil {
		log.Printf("failed to cache product %s: %v", id.String(), cacheErr)
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product, supplierIDs []uuid.UUID) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return common.TranslateNotFound(err)
	}
	if product.Image == nil {
		product.Image = existing.Image
	}

	if _, err := s.categoryRepo.GetByID(ctx, product.CategoryID); err != nil {
		if common.IsNotFound(err) {
			return fmt.Errorf("category not found: %w", common.ErrNotFound)
		}
		return err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	if err := s.setSuppliers(ctx, product.ID, supplierIDs); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, product.ID); cacheErr != nil {
		log.Printf("failed to invalidate cache for product %s: %v", product.ID.String(), cacheErr)
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return common.TranslateNotFound(err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("failed to invalidate cache for product %s: %v", id.String(), cacheErr)
	}
	s.invalidateDashboard(ctx)
	return nil
}

func (s *productService) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductFilter{}
	}
	products, err := s.productRepo.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		suppliers, err := s.productRepo.ListSuppliers(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		product.Suppliers = suppliers
	}
	return products, nil
}

// setSuppliers reconciles the form-selected supplier set: form edits are a
// replace, unlike the additive CSV import path.
func (s *productService) setSuppliers(ctx context.Context, productID uuid.UUID, supplierIDs []uuid.UUID) error {
	if supplierIDs == nil {
		return nil
	}

	current, err := s.productRepo.ListSuppliers(ctx, productID)
	if err != nil {
		return err
	}

	wanted := make(map[uuid.UUID]bool, len(supplierIDs))
	for _, id := range supplierIDs {
		if _, err := s.supplierRepo.GetByID(ctx, id); err != nil {
			if common.IsNotFound(err) {
				return fmt.Errorf("supplier %s not found: %w", id, common.ErrNotFound)
			}
			return err
		}
		wanted[id] = true
	}

	for _, supplier := range current {
		if !wanted[supplier.ID] {
			if err := s.productRepo.RemoveSupplier(ctx, productID, supplier.ID); err != nil {
				return err
			}
		}
		delete(wanted, supplier.ID)
	}
	for id := range wanted {
		if err := s.productRepo.AddSupplier(ctx, productID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *productService) UploadImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return common.TranslateNotFound(err)
	}

	fileExt := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), fileExt)
	objectKey := fmt.Sprintf("%s/%s%s", productID.String(), baseName, fileExt)

	if err := s.minioService.EnsureBucketExists(ctx, productImageBucket); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	if err := s.minioService.UploadImage(ctx, productImageBucket, objectKey, reader, size); err != nil {
		return fmt.Errorf("failed to upload image to storage: %w", err)
	}

	product.Image = &objectKey
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	if cacheErr := s.cacheService.DeleteProduct(ctx, productID); cacheErr != nil {
		log.Printf("failed to invalidate cache for product %s: %v", productID.String(), cacheErr)
	}
	return nil
}

func (s *productService) ImageURL(ctx context.Context, productID uuid.UUID, expiry time.Duration) (string, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", common.TranslateNotFound(err)
	}
	if product.Image == nil {
		return "", common.ErrNotFound
	}

	url, err := s.minioService.GetPresignedURL(productImageBucket, *product.Image, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

func (s *productService) invalidateDashboard(ctx context.Context) {
	if err := s.cacheService.InvalidateDashboard(ctx); err != nil {
		log.Printf("failed to invalidate dashboard cache: %v", err)
	}
}
