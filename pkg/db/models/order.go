package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketkart/backoffice-backend/pkg/enums"
)

// Order is the marketplace order as the back office sees it: read-mostly,
// owned by the order service. Commissions may only be distributed once the
// status is delivered.
type Order struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        int64             `gorm:"column:order_number;not null"`
	Status             enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents      int64             `gorm:"column:subtotal_cents;not null"`
	DeliveryPartnerID  *uuid.UUID        `gorm:"column:delivery_partner_id;type:uuid"`
	DeliveryDistanceKm decimal.Decimal   `gorm:"column:delivery_distance_km;type:numeric(10,3);not null;default:0"`
	Items              []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveredAt        *time.Time        `gorm:"column:delivered_at"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is a single seller's line on an order.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	SellerID       uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
