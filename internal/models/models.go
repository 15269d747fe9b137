package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Money fields hold minor units (cents).

type Product struct {
	ID            uuid.UUID  `gorm:"primaryKey"                        json:"id"`
	Name          string     `gorm:"not null;index"                    json:"name"`
	Description   string     `gorm:"not null"                          json:"description"`
	PriceCents    int64      `gorm:"not null"                          json:"price_cents"`
	StockQuantity int        `gorm:"not null;check:stock_quantity>=0"  json:"stock_quantity"`
	IsActive      bool       `gorm:"not null;default:true"             json:"is_active"`
	ImageURL      *string    `json:"image_url,omitempty"`
	SKU           *string    `gorm:"uniqueIndex"                       json:"sku,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"            json:"id"`
	Email        string    `gorm:"unique;not null"       json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	FirstName    string    `gorm:"not null"              json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `gorm:"not null"              json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID              uuid.UUID   `gorm:"primaryKey"           json:"id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null" json:"order_number"`
	CustomerID      uuid.UUID   `gorm:"index;not null"       json:"customer_id"`
	Customer        *User       `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	Status          string      `gorm:"index;not null"       json:"status"`
	TotalCents      int64       `gorm:"not null"             json:"total_cents"`
	ShippingAddress *string     `json:"shipping_address,omitempty"`
	Notes           *string     `json:"notes,omitempty"`
	CreatedAt       time.Time   `gorm:"index"                json:"created_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID             uuid.UUID `gorm:"primaryKey"                json:"id"`
	OrderID        uuid.UUID `gorm:"index;not null"            json:"order_id"`
	ProductID      uuid.UUID `gorm:"not null"                  json:"product_id"`
	Product        *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity       int       `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null"                  json:"unit_price_cents"`
	TotalCents     int64     `gorm:"not null"                  json:"total_cents"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type AuditTrail struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActionName        string    `gorm:"not null" json:"action_name"`
	ActionDescription string    `gorm:"not null" json:"action_description"`
	Module            string    `gorm:"not null" json:"module"`
	Actor             string    `json:"actor"`
	Origin            string    `json:"origin"`
	ActionTime        time.Time `json:"action_time"`
	CreatedAt         time.Time `json:"created_at"`
}
