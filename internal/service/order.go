package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/pkg/logging"
	"gorm.io/gorm"
)

const (
	maxItemQuantity    = 1000
	maxShippingAddress = 500
	maxNotes           = 1000
)

type OrderService struct {
	Repo *repo.GormRepo
}

// CreateOrder places an order for customerID: it validates the cart, snapshots
// unit prices, decrements stock and persists the order atomically. The whole
// read-validate-write sequence re-runs from fresh state on a transient
// conflict; validation failures are final and leave stock untouched.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	customer, err := s.Repo.GetUser(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Customer not found", ErrNotFound)
		}
		return nil, err
	}

	ids := distinctProductIDs(req.Items)
	requested := quantityByProduct(req.Items)

	var orderID uuid.UUID
	txErr := s.Repo.RunWithRetry(ctx, func(tx *gorm.DB) error {
		products, err := repo.ProductsForUpdate(tx, ids)
		if err != nil {
			return err
		}
		if len(products) != len(ids) {
			return fmt.Errorf("%w: One or more products not found", ErrNotFound)
		}

		byID := make(map[uuid.UUID]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		// Both checks run over every product so one response can report
		// every violation, not just the first.
		var inactive, shortages []string
		for _, id := range ids {
			p := byID[id]
			qty := requested[id]
			if !p.IsActive {
				inactive = append(inactive, fmt.Sprintf("%s is not available", p.Name))
			}
			if p.StockQuantity < qty {
				shortages = append(shortages, fmt.Sprintf("%s: requested %d, available %d", p.Name, qty, p.StockQuantity))
			}
		}
		if len(inactive) > 0 {
			return fmt.Errorf("%w: Inactive products: %s", ErrValidation, strings.Join(inactive, ", "))
		}
		if len(shortages) > 0 {
			return fmt.Errorf("%w: Insufficient stock: %s", ErrValidation, strings.Join(shortages, "; "))
		}

		order := &models.Order{
			OrderNumber:     generateOrderNumber(),
			CustomerID:      customer.ID,
			Status:          models.OrderStatusPending,
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
			TotalCents:      0,
		}
		if err := repo.CreateOrder(tx, order); err != nil {
			return err
		}

		var total int64
		for _, line := range req.Items {
			p := byID[line.ProductID]
			item := &models.OrderItem{
				OrderID:        order.ID,
				ProductID:      p.ID,
				Quantity:       line.Quantity,
				UnitPriceCents: p.PriceCents,
				TotalCents:     p.PriceCents * int64(line.Quantity),
			}
			if err := repo.CreateOrderItem(tx, item); err != nil {
				return err
			}
			total += item.TotalCents
		}

		for _, id := range ids {
			if err := repo.DecrementStock(tx, id, requested[id]); err != nil {
				return err
			}
		}

		order.TotalCents = total
		if err := repo.SaveOrder(tx, order); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if txErr != nil {
		if repo.IsRetryable(txErr) {
			logging.FromContext(ctx).Error("create_order_conflict", "customer_id", customerID, "error", txErr)
			return nil, fmt.Errorf("%w: Unable to complete order due to concurrent updates. Please try again", ErrConflict)
		}
		return nil, txErr
	}

	created, err := s.Repo.GetOrderWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("order_created", "order_id", created.ID, "order_number", created.OrderNumber)
	return created, nil
}

// GetOrderByID returns an order to its owner or to an admin. An ownership
// mismatch is reported as forbidden rather than not found.
func (s *OrderService) GetOrderByID(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error) {
	caller, err := s.Repo.GetUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Customer not found", ErrNotFound)
		}
		return nil, err
	}

	order, err := s.Repo.GetOrderWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Order not found", ErrNotFound)
		}
		return nil, err
	}

	if caller.Role != models.RoleAdmin && order.CustomerID != caller.ID {
		logging.FromContext(ctx).Warn("order_access_denied",
			"caller_id", callerID, "order_id", orderID, "owner_id", order.CustomerID)
		return nil, fmt.Errorf("%w: You do not have permission to view this order", ErrForbidden)
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f repo.OrderFilter, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, f, offset, limit)
}

// CancelOrder moves a pending order to cancelled and hands every line item's
// quantity back to its product, in one transaction. Cancellation carries no
// retry wrapper: the stock restore is a blind increment, so the only conflict
// source is the store itself and that surfaces to the caller.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, callerID uuid.UUID) error {
	caller, err := s.Repo.GetUser(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: Customer not found", ErrNotFound)
		}
		return err
	}

	txErr := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := repo.OrderForUpdate(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: Order not found", ErrNotFound)
			}
			return err
		}

		if caller.Role != models.RoleAdmin && order.CustomerID != caller.ID {
			return fmt.Errorf("%w: You do not have permission to cancel this order", ErrForbidden)
		}

		switch order.Status {
		case models.OrderStatusCancelled:
			return fmt.Errorf("%w: Order is already cancelled", ErrValidation)
		case models.OrderStatusCompleted:
			return fmt.Errorf("%w: Cannot cancel a completed order", ErrValidation)
		}

		for _, item := range order.Items {
			if err := repo.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{
				"status":       models.OrderStatusCancelled,
				"cancelled_at": now,
			}).Error
	})
	if txErr != nil {
		return txErr
	}

	logging.FromContext(ctx).Info("order_cancelled", "order_id", orderID)
	return nil
}

func validateCreateOrder(req transport.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: Order must contain at least one item", ErrValidation)
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: product_id is required", ErrValidation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
		}
		if item.Quantity > maxItemQuantity {
			return fmt.Errorf("%w: quantity cannot exceed %d per order", ErrValidation, maxItemQuantity)
		}
	}
	if req.ShippingAddress != nil && len(*req.ShippingAddress) > maxShippingAddress {
		return fmt.Errorf("%w: shipping address must not exceed %d characters", ErrValidation, maxShippingAddress)
	}
	if req.Notes != nil && len(*req.Notes) > maxNotes {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrValidation, maxNotes)
	}
	return nil
}

func distinctProductIDs(items []transport.CreateOrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// quantityByProduct sums line quantities per product so repeated lines for the
// same product are validated and decremented against stock as one demand.
func quantityByProduct(items []transport.CreateOrderItem) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
