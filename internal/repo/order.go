package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom-app/stockroom/internal/models"
	"gorm.io/gorm"
)

// GetOrderWithItems loads an order with its line items, each item's product
// and the owning customer joined in.
func (r *GormRepo) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Customer").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	CustomerID *uuid.UUID
	Status     string
	FromDate   *time.Time
	ToDate     *time.Time
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FromDate != nil {
		q = q.Where("created_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("created_at <= ?", *f.ToDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	err := q.Preload("Items").Preload("Items.Product").Preload("Customer").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// In-transaction helpers for the order workflow.

func CreateOrder(tx *gorm.DB, order *models.Order) error {
	return tx.Create(order).Error
}

func CreateOrderItem(tx *gorm.DB, item *models.OrderItem) error {
	return tx.Create(item).Error
}

func OrderForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func SaveOrder(tx *gorm.DB, order *models.Order) error {
	return tx.Save(order).Error
}
