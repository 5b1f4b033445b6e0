package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketkart/backoffice-backend/pkg/enums"
)

// Commission is the platform's cut owed against one subject for one order.
// OrderAmount is the basis the rate was applied to: a money value for
// sellers and percentage-priced delivery, but the distance in kilometers for
// distance-priced delivery. Downstream reporting must special-case that.
// The unique index over (order_id, subject_type, subject_id) backs the
// exactly-once distribution guard.
type Commission struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_commissions_order_subject,priority:1"`
	SubjectType     enums.SubjectType      `gorm:"column:subject_type;type:text;not null;uniqueIndex:ux_commissions_order_subject,priority:2"`
	SubjectID       uuid.UUID              `gorm:"column:subject_id;type:uuid;not null;uniqueIndex:ux_commissions_order_subject,priority:3"`
	OrderAmount     decimal.Decimal        `gorm:"column:order_amount;type:numeric(12,3);not null"`
	Rate            decimal.Decimal        `gorm:"column:rate;type:numeric(8,2);not null"`
	CommissionCents int64                  `gorm:"column:commission_cents;not null"`
	Status          enums.CommissionStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaidAt          *time.Time             `gorm:"column:paid_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// UniqueConstraintOrderSubject is the constraint name used to detect races on
// concurrent distribution attempts.
const UniqueConstraintOrderSubject = "ux_commissions_order_subject"
