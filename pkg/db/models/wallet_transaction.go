package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketkart/backoffice-backend/pkg/enums"
)

// WalletTransaction is an immutable ledger entry. Every balance mutation on a
// subject is paired with exactly one of these rows in the same transaction;
// the cached balance must always equal credits minus debits.
type WalletTransaction struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SubjectType  enums.SubjectType     `gorm:"column:subject_type;type:text;not null"`
	SubjectID    uuid.UUID             `gorm:"column:subject_id;type:uuid;not null"`
	AmountCents  int64                 `gorm:"column:amount_cents;not null"`
	Direction    enums.WalletDirection `gorm:"column:direction;type:text;not null"`
	Description  string                `gorm:"column:description;not null"`
	OrderID      *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	CommissionID *uuid.UUID            `gorm:"column:commission_id;type:uuid"`
	Status       enums.WalletTxStatus  `gorm:"column:status;type:text;not null;default:'completed'"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
