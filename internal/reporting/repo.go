package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
)

// Totals groups commission amounts by status for one scope.
type Totals struct {
	TotalCents   int64 `gorm:"column:total_cents"`
	PaidCents    int64 `gorm:"column:paid_cents"`
	PendingCents int64 `gorm:"column:pending_cents"`
	Count        int64 `gorm:"column:count"`
}

// Repository exposes the read-only commission aggregates reporting needs.
type Repository interface {
	SubjectTotals(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (*Totals, error)
	PlatformTotals(ctx context.Context) (*Totals, error)
	PaidSince(ctx context.Context, since time.Time) (int64, error)
	ListBySubject(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, limit int) ([]models.Commission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reporting repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// totalsSelect works on both postgres and sqlite. Cancelled commissions are
// excluded everywhere: reversed money is not an earning.
const totalsSelect = `
COALESCE(SUM(CASE WHEN status != 'cancelled' THEN commission_cents ELSE 0 END), 0) AS total_cents,
COALESCE(SUM(CASE WHEN status = 'paid' THEN commission_cents ELSE 0 END), 0) AS paid_cents,
COALESCE(SUM(CASE WHEN status = 'pending' THEN commission_cents ELSE 0 END), 0) AS pending_cents,
COALESCE(SUM(CASE WHEN status != 'cancelled' THEN 1 ELSE 0 END), 0) AS count`

func (r *repository) SubjectTotals(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Select(totalsSelect).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) PlatformTotals(ctx context.Context) (*Totals, error) {
	var totals Totals
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Select(totalsSelect).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) PaidSince(ctx context.Context, since time.Time) (int64, error) {
	var cents int64
	err := r.db.WithContext(ctx).
		Model(&models.Commission{}).
		Select("COALESCE(SUM(commission_cents), 0)").
		Where("status = ? AND created_at >= ?", enums.CommissionStatusPaid, since).
		Scan(&cents).Error
	if err != nil {
		return 0, err
	}
	return cents, nil
}

func (r *repository) ListBySubject(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, limit int) ([]models.Commission, error) {
	var commissions []models.Commission
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&commissions).Error
	if err != nil {
		return nil, err
	}
	return commissions, nil
}
