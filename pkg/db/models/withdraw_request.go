package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketkart/backoffice-backend/pkg/enums"
)

// WithdrawRequest is a subject's cash-out request. The amount was already
// deducted from the wallet at creation time by the requesting surface; this
// core only finalizes or refunds it.
type WithdrawRequest struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubjectType   enums.SubjectType    `gorm:"column:subject_type;type:text;not null"`
	SubjectID     uuid.UUID            `gorm:"column:subject_id;type:uuid;not null"`
	AmountCents   int64                `gorm:"column:amount_cents;not null"`
	Status        enums.WithdrawStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentMethod string               `gorm:"column:payment_method;not null"`
	Remarks       *string              `gorm:"column:remarks"`
	SettlementRef *string              `gorm:"column:settlement_ref"`
	ProcessedAt   *time.Time           `gorm:"column:processed_at"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
