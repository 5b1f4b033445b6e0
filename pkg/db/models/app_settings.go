package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsSingletonID is the fixed primary key of the one settings row.
const SettingsSingletonID = 1

// AppSettings is the singleton holding global default commission rates and
// the delivery pricing mode. Created lazily with defaults on first read.
type AppSettings struct {
	ID                        int             `gorm:"column:id;primaryKey"`
	SellerCommissionRate      decimal.Decimal `gorm:"column:seller_commission_rate;type:numeric(5,2);not null"`
	DeliveryBoyCommissionRate decimal.Decimal `gorm:"column:delivery_boy_commission_rate;type:numeric(5,2);not null"`
	MinimumWithdrawalCents    int64           `gorm:"column:minimum_withdrawal_cents;not null;default:0"`
	IsDistanceBased           bool            `gorm:"column:is_distance_based;not null;default:false"`
	DeliveryBoyKmRate         decimal.Decimal `gorm:"column:delivery_boy_km_rate;type:numeric(8,2);not null;default:0"`
	UpdatedAt                 time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singleton in a descriptive table.
func (AppSettings) TableName() string {
	return "app_settings"
}
