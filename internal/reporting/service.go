package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
)

// summaryListLimit caps how many recent commissions ride along on a summary.
const summaryListLimit = 50

// Summary is one subject's commission earnings overview.
type Summary struct {
	SubjectType  enums.SubjectType   `json:"subject_type"`
	SubjectID    uuid.UUID           `json:"subject_id"`
	TotalCents   int64               `json:"total_cents"`
	PaidCents    int64               `json:"paid_cents"`
	PendingCents int64               `json:"pending_cents"`
	Count        int64               `json:"count"`
	Commissions  []models.Commission `json:"commissions"`
}

// Dashboard is the platform-wide earnings aggregate for admins.
type Dashboard struct {
	TotalEarningsCents     int64 `json:"total_earnings_cents"`
	PaidEarningsCents      int64 `json:"paid_earnings_cents"`
	PendingEarningsCents   int64 `json:"pending_earnings_cents"`
	ThisMonthEarningsCents int64 `json:"this_month_earnings_cents"`
}

// Service serves the read-only reporting surfaces.
type Service interface {
	CommissionSummary(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (*Summary, error)
	FinancialDashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the reporting service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reporting repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) CommissionSummary(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (*Summary, error) {
	if !subjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid subject type %q", subjectType))
	}
	if subjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject id is required")
	}

	totals, err := s.repo.SubjectTotals(ctx, subjectType, subjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate commissions")
	}
	commissions, err := s.repo.ListBySubject(ctx, subjectType, subjectID, summaryListLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
	}

	return &Summary{
		SubjectType:  subjectType,
		SubjectID:    subjectID,
		TotalCents:   totals.TotalCents,
		PaidCents:    totals.PaidCents,
		PendingCents: totals.PendingCents,
		Count:        totals.Count,
		Commissions:  commissions,
	}, nil
}

func (s *service) FinancialDashboard(ctx context.Context) (*Dashboard, error) {
	totals, err := s.repo.PlatformTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate commissions")
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := s.repo.PaidSince(ctx, monthStart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate month earnings")
	}

	return &Dashboard{
		TotalEarningsCents:     totals.TotalCents,
		PaidEarningsCents:      totals.PaidCents,
		PendingEarningsCents:   totals.PendingCents,
		ThisMonthEarningsCents: thisMonth,
	}, nil
}
