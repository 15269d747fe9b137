package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items"`
	ShippingAddress *string           `json:"shipping_address,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
}

type OrderListQuery struct {
	CustomerID string `query:"customer_id"`
	Status     string `query:"status"`
	FromDate   string `query:"from_date"`
	ToDate     string `query:"to_date"`
	Page       int    `query:"page"`
	Size       int    `query:"size"`
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	PriceCents    int64   `json:"price_cents"`
	StockQuantity int     `json:"stock_quantity"`
	ImageURL      *string `json:"image_url,omitempty"`
	SKU           *string `json:"sku,omitempty"`
}

type PatchProductRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	PriceCents    *int64  `json:"price_cents"`
	StockQuantity *int    `json:"stock_quantity"`
	ImageURL      *string `json:"image_url"`
	SKU           *string `json:"sku"`
	IsActive      *bool   `json:"is_active"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Availability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type Paged[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func NewPaged[T any](data []T, page, size int, total int64) Paged[T] {
	return Paged[T]{
		Data: data,
		Meta: PageMeta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: (total + int64(size) - 1) / int64(size),
		},
	}
}
