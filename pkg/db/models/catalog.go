package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the top classification level. CommissionRate 0 means "not set"
// and falls through to the next resolution tier.
type Category struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SubCategory sits under a Category and may override its rate.
type SubCategory struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID     uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SubSubCategory is the leaf classification level, the most specific rate
// override source.
type SubSubCategory struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubCategoryID  uuid.UUID       `gorm:"column:sub_category_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,2);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Product references its classification chain for category-based rate lookup.
type Product struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID  `gorm:"column:seller_id;type:uuid;not null"`
	Name             string     `gorm:"column:name;not null"`
	CategoryID       uuid.UUID  `gorm:"column:category_id;type:uuid;not null"`
	SubCategoryID    *uuid.UUID `gorm:"column:sub_category_id;type:uuid"`
	SubSubCategoryID *uuid.UUID `gorm:"column:sub_sub_category_id;type:uuid"`
	PriceCents       int64      `gorm:"column:price_cents;not null"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
