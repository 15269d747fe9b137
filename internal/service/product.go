package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/pkg/logging"
	"gorm.io/gorm"
)

type ProductService struct {
	Repo *repo.GormRepo
}

func (s *ProductService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.PriceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}
	if req.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}

	if req.SKU != nil && *req.SKU != "" {
		if err := s.checkSKUFree(ctx, *req.SKU); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		SKU:           req.SKU,
		IsActive:      true,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: Product with this SKU already exists", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("product_created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Product not found", ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

func (s *ProductService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Product not found", ErrNotFound)
		}
		return nil, err
	}

	if req.SKU != nil && *req.SKU != "" && (product.SKU == nil || *req.SKU != *product.SKU) {
		if err := s.checkSKUFree(ctx, *req.SKU); err != nil {
			return nil, err
		}
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return nil, fmt.Errorf("%w: price must be greater than 0", ErrValidation)
		}
		product.PriceCents = *req.PriceCents
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.SKU != nil {
		product.SKU = req.SKU
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("product_updated", "product_id", product.ID)
	return product, nil
}

// DeleteProduct deactivates the product instead of removing the row: order
// items keep referencing it, so catalog deletion is always soft.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: Product not found", ErrNotFound)
		}
		return err
	}

	product.IsActive = false
	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("product_deactivated", "product_id", id)
	return nil
}

// CheckAvailability is advisory only: it does not reserve stock, and a later
// CreateOrder re-validates against live quantities.
func (s *ProductService) CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) transport.Availability {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return transport.Availability{Available: false, Message: "Product not found"}
	}
	if !product.IsActive {
		return transport.Availability{Available: false, Message: "Product is not active"}
	}
	if product.StockQuantity < quantity {
		return transport.Availability{
			Available: false,
			Message:   fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", product.StockQuantity, quantity),
		}
	}
	return transport.Availability{Available: true, Message: "Product is available"}
}

func (s *ProductService) checkSKUFree(ctx context.Context, sku string) error {
	_, err := s.Repo.GetProductBySKU(ctx, sku)
	if err == nil {
		return fmt.Errorf("%w: Product with this SKU already exists", ErrConflict)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
