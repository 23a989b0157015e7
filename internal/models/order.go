package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts any letter case.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a customer cancellation is blocked.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ShippingAddress is embedded into the orders table.
type ShippingAddress struct {
	Street  string `json:"street" gorm:"type:varchar(255);not null" validate:"required"`
	City    string `json:"city" gorm:"type:varchar(100);not null" validate:"required"`
	ZipCode string `json:"zip_code" gorm:"type:varchar(20);not null" validate:"required"`
	Country string `json:"country" gorm:"type:varchar(100);not null" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from each field.
func (a ShippingAddress) Trimmed() ShippingAddress {
	return ShippingAddress{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

// OrderItem represents a single line within an order.
type OrderItem struct {
	ID       uint            `json:"-" gorm:"primaryKey;autoIncrement"` // Preserves request order
	OrderID  string          `json:"-" gorm:"type:varchar(36);index;not null"`
	BookID   string          `json:"book_id" gorm:"type:varchar(36);index;not null"`
	Quantity int             `json:"quantity" gorm:"not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"` // Price at the time of order
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ComputeTotal recomputes the total from the line items. It must always
// equal TotalAmount.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID != "" && o.UserID == userID
}
