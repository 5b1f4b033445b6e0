package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
)

func setupReportingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS commissions (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  subject_type TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  order_amount NUMERIC NOT NULL,
  rate NUMERIC NOT NULL,
  commission_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedCommission(t *testing.T, db *gorm.DB, subjectID uuid.UUID, cents int64, status enums.CommissionStatus, createdAt time.Time) {
	t.Helper()
	c := &models.Commission{
		ID:              uuid.New(),
		OrderID:         uuid.New(),
		SubjectType:     enums.SubjectTypeSeller,
		SubjectID:       subjectID,
		OrderAmount:     decimal.NewFromInt(100),
		Rate:            decimal.NewFromInt(10),
		CommissionCents: cents,
		Status:          status,
	}
	require.NoError(t, db.Create(c).Error)
	require.NoError(t, db.Model(&models.Commission{}).
		Where("id = ?", c.ID).
		Update("created_at", createdAt).Error)
}

func TestCommissionSummaryGroupsByStatus(t *testing.T) {
	db := setupReportingTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	subjectID := uuid.New()
	now := time.Now().UTC()
	seedCommission(t, db, subjectID, 1000, enums.CommissionStatusPaid, now)
	seedCommission(t, db, subjectID, 300, enums.CommissionStatusPending, now)
	seedCommission(t, db, subjectID, 700, enums.CommissionStatusCancelled, now)

	summary, err := svc.CommissionSummary(context.Background(), enums.SubjectTypeSeller, subjectID)
	require.NoError(t, err)
	// Cancelled commissions are not earnings; they drop out of every total.
	require.Equal(t, int64(1300), summary.TotalCents)
	require.Equal(t, int64(1000), summary.PaidCents)
	require.Equal(t, int64(300), summary.PendingCents)
	require.Equal(t, int64(2), summary.Count)
	require.Len(t, summary.Commissions, 3)
}

func TestCommissionSummaryEmptySubject(t *testing.T) {
	db := setupReportingTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	summary, err := svc.CommissionSummary(context.Background(), enums.SubjectTypeDeliveryBoy, uuid.New())
	require.NoError(t, err)
	require.Zero(t, summary.TotalCents)
	require.Zero(t, summary.Count)
	require.Empty(t, summary.Commissions)
}

func TestCommissionSummaryValidatesSubject(t *testing.T) {
	db := setupReportingTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.CommissionSummary(context.Background(), "store", uuid.New())
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CommissionSummary(context.Background(), enums.SubjectTypeSeller, uuid.Nil)
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestFinancialDashboardMonthWindow(t *testing.T) {
	db := setupReportingTestDB(t)
	// Platform-wide aggregates see every row on the shared test DB.
	require.NoError(t, db.Exec(`DELETE FROM commissions`).Error)

	// Pin "now" so the month boundary is deterministic.
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := &service{repo: NewRepository(db), now: func() time.Time { return now }}

	subjectID := uuid.New()
	seedCommission(t, db, subjectID, 1000, enums.CommissionStatusPaid, now.AddDate(0, 0, -1))
	seedCommission(t, db, subjectID, 2000, enums.CommissionStatusPaid, now.AddDate(0, -2, 0))
	seedCommission(t, db, subjectID, 400, enums.CommissionStatusPending, now)
	seedCommission(t, db, subjectID, 900, enums.CommissionStatusCancelled, now)

	dashboard, err := svc.FinancialDashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3400), dashboard.TotalEarningsCents)
	require.Equal(t, int64(3000), dashboard.PaidEarningsCents)
	require.Equal(t, int64(400), dashboard.PendingEarningsCents)
	require.Equal(t, int64(1000), dashboard.ThisMonthEarningsCents)
}
