package analytics

import (
	"context"
	"log"
	"time"

	"stockmed/internal/caching"
	"stockmed/internal/models"
	"stockmed/internal/repositories"
	"stockmed/internal/services"

	"github.com/shopspring/decimal"
)

const (
	dashboardCacheKey = "summary"
	dashboardCacheTTL = 5 * time.Minute
	previewSize       = 5
)

// Service computes the stock health aggregates backing the dashboard and
// the alert dispatcher.
type Service struct {
	productRepo  repositories.ProductRepository
	supplierRepo repositories.SupplierRepository
	categoryRepo repositories.CategoryRepository
	userService  services.UserService
	cacheService caching.CacheService
}

func NewService(productRepo repositories.ProductRepository, supplierRepo repositories.SupplierRepository, categoryRepo repositories.CategoryRepository, userService services.UserService, cacheService caching.CacheService) *Service {
	return &Service{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		categoryRepo: categoryRepo,
		userService:  userService,
		cacheService: cacheService,
	}
}

// DashboardSummary is the aggregate snapshot rendered on the landing page.
type DashboardSummary struct {
	ProductCount       int                             `json:"product_count"`
	SupplierCount      int                             `json:"supplier_count"`
	CategoryCount      int                             `json:"category_count"`
	EmployeeCount      int                             `json:"employee_count"`
	LowStockCount      int                             `json:"low_stock_count"`
	InStockCount       int                             `json:"in_stock_count"`
	InventoryValue     decimal.Decimal                 `json:"inventory_value"`
	LowStockPreview    []*models.Product               `json:"low_stock_preview"`
	NearExpiryPreview  []*models.Product               `json:"near_expiry_preview"`
	QuantityByCategory []repositories.CategoryQuantity `json:"quantity_by_category"`
	EmployeeLoads      []services.EmployeeLoad         `json:"employee_loads"`
	GeneratedAt        time.Time                       `json:"generated_at"`
}

// LowStock lists every product whose quantity has fallen to or below its
// reorder level.
func (s *Service) LowStock(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.LowStock(ctx)
}

// NearExpiry lists every product expiring within horizonDays of now.
func (s *Service) NearExpiry(ctx context.Context, now time.Time, horizonDays int) ([]*models.Product, error) {
	return s.productRepo.NearExpiry(ctx, now, horizonDays)
}

// InventoryValue totals quantity times unit price across the given products.
func (s *Service) InventoryValue(products []*models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock))))
	}
	return total
}

// QuantityByCategory returns per-category stock totals ordered by category
// name, for the dashboard chart.
func (s *Service) QuantityByCategory(ctx context.Context) ([]repositories.CategoryQuantity, error) {
	return s.productRepo.QuantityByCategory(ctx)
}

// Dashboard assembles the dashboard summary, serving from cache when a fresh
// snapshot exists. Cache failures degrade to a direct computation.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	var cached DashboardSummary
	hit, err := s.cacheService.GetDashboard(ctx, dashboardCacheKey, &cached)
	if err != nil {
		log.Printf("dashboard cache read failed: %v", err)
	} else if hit {
		return &cached, nil
	}

	summary, err := s.compute(ctx, now)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cacheService.SetDashboard(ctx, dashboardCacheKey, summary, dashboardCacheTTL); cacheErr != nil {
		log.Printf("dashboard cache write failed: %v", cacheErr)
	}
	return summary, nil
}

// Refresh recomputes the dashboard snapshot and overwrites the cached copy.
func (s *Service) Refresh(ctx context.Context, now time.Time) error {
	summary, err := s.compute(ctx, now)
	if err != nil {
		return err
	}
	return s.cacheService.SetDashboard(ctx, dashboardCacheKey, summary, dashboardCacheTTL)
}

func (s *Service) compute(ctx context.Context, now time.Time) (*DashboardSummary, error) {
	all, err := s.productRepo.Filter(ctx, &models.ProductFilter{Limit: -1})
	if err != nil {
		return nil, err
	}

	lowStock, err := s.productRepo.LowStock(ctx)
	if err != nil {
		return nil, err
	}

	nearExpiry, err := s.productRepo.NearExpiry(ctx, now, models.ExpiryHorizonDays)
	if err != nil {
		return nil, err
	}

	lowStockCount, err := s.productRepo.LowStockCount(ctx)
	if err != nil {
		return nil, err
	}

	inStockCount, err := s.productRepo.InStockCount(ctx)
	if err != nil {
		return nil, err
	}

	byCategory, err := s.productRepo.QuantityByCategory(ctx)
	if err != nil {
		return nil, err
	}

	loads, err := s.userService.EmployeeLoads(ctx)
	if err != nil {
		return nil, err
	}

	supplierCount, err := s.supplierRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	categoryCount, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		ProductCount:       len(all),
		SupplierCount:      supplierCount,
		CategoryCount:      categoryCount,
		EmployeeCount:      len(loads),
		LowStockCount:      lowStockCount,
		InStockCount:       inStockCount,
		InventoryValue:     s.InventoryValue(all),
		LowStockPreview:    preview(lowStock),
		NearExpiryPreview:  preview(nearExpiry),
		QuantityByCategory: byCategory,
		EmployeeLoads:      loads,
		GeneratedAt:        now,
	}, nil
}

func preview(products []*models.Product) []*models.Product {
	if len(products) > previewSize {
		return products[:previewSize]
	}
	return products
}
