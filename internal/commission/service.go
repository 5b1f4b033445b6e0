package commission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/pkg/db"
	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/metrics"
	"github.com/marketkart/backoffice-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// walletLedger is the slice of internal/wallet distribution needs.
type walletLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// DistributeResult reports the commission rows created by a distribution.
type DistributeResult struct {
	OrderID     uuid.UUID           `json:"order_id"`
	Commissions []models.Commission `json:"commissions"`
}

// ReverseResult reports how many commissions a reversal cancelled.
type ReverseResult struct {
	OrderID  uuid.UUID `json:"order_id"`
	Reversed int       `json:"reversed"`
}

// Service orchestrates the commission lifecycle of an order:
// not distributed → distributed → reversed. Distribution is exactly-once; the
// in-transaction existence check plus the unique (order, subject) index make
// concurrent retries collapse to one success and one AlreadyProcessed.
type Service interface {
	Distribute(ctx context.Context, orderID uuid.UUID) (*DistributeResult, error)
	Reverse(ctx context.Context, orderID uuid.UUID) (*ReverseResult, error)
}

type service struct {
	repo       Repository
	calculator *Calculator
	wallet     walletLedger
	tx         txRunner
	logg       *logger.Logger
	metrics    *metrics.CommissionMetrics
}

// NewService builds the commission distributor. metrics may be nil.
func NewService(repo Repository, calculator *Calculator, ledger walletLedger, tx txRunner, logg *logger.Logger, m *metrics.CommissionMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if calculator == nil {
		return nil, fmt.Errorf("calculator required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       repo,
		calculator: calculator,
		wallet:     ledger,
		tx:         tx,
		logg:       logg,
		metrics:    m,
	}, nil
}

// Distribute computes and pays out commissions for a delivered order.
// Commission rows, wallet transactions, and balance updates commit as one
// unit; any failure aborts the whole distribution.
func (s *service) Distribute(ctx context.Context, orderID uuid.UUID) (*DistributeResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	result, err := s.distribute(ctx, orderID)
	s.metrics.IncDistribution(outcomeLabel(err))
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    orderID.String(),
			"commissions": len(result.Commissions),
		})
		s.logg.Info(logCtx, "commissions distributed")
	}
	return result, nil
}

func (s *service) distribute(ctx context.Context, orderID uuid.UUID) (*DistributeResult, error) {
	result := &DistributeResult{OrderID: orderID}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "commissions can only be distributed for delivered orders").
				WithDetails(map[string]string{"status": order.Status.String()})
		}

		exists, err := repo.ExistsForOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing commissions")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "commissions already distributed for this order")
		}

		calc, err := s.calculator.Calculate(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calculate commissions")
		}

		now := time.Now().UTC()

		for _, sc := range calc.Sellers {
			record := &models.Commission{
				ID:              uuid.New(),
				OrderID:         order.ID,
				SubjectType:     enums.SubjectTypeSeller,
				SubjectID:       sc.SellerID,
				OrderAmount:     money.FromCents(sc.BasisCents),
				Rate:            sc.Rate,
				CommissionCents: sc.CommissionCents,
				Status:          enums.CommissionStatusPaid,
				PaidAt:          &now,
			}
			if err := repo.Create(ctx, record); err != nil {
				return mapCreateError(err)
			}

			// The seller's earning is the remainder after the platform cut.
			if _, err := s.wallet.Credit(ctx, tx, wallet.EntryInput{
				SubjectType:  enums.SubjectTypeSeller,
				SubjectID:    sc.SellerID,
				AmountCents:  sc.NetCents(),
				Description:  fmt.Sprintf("Net earnings for order #%d", order.OrderNumber),
				OrderID:      &order.ID,
				CommissionID: &record.ID,
			}); err != nil {
				return err
			}
			result.Commissions = append(result.Commissions, *record)
		}

		if dc := calc.Delivery; dc != nil {
			record := &models.Commission{
				ID:              uuid.New(),
				OrderID:         order.ID,
				SubjectType:     enums.SubjectTypeDeliveryBoy,
				SubjectID:       dc.PartnerID,
				OrderAmount:     dc.Basis,
				Rate:            dc.Rate,
				CommissionCents: dc.CommissionCents,
				Status:          enums.CommissionStatusPaid,
				PaidAt:          &now,
			}
			if err := repo.Create(ctx, record); err != nil {
				return mapCreateError(err)
			}

			// Unlike sellers, the delivery partner's money IS the commission.
			if _, err := s.wallet.Credit(ctx, tx, wallet.EntryInput{
				SubjectType:  enums.SubjectTypeDeliveryBoy,
				SubjectID:    dc.PartnerID,
				AmountCents:  dc.CommissionCents,
				Description:  fmt.Sprintf("Delivery commission for order #%d", order.OrderNumber),
				OrderID:      &order.ID,
				CommissionID: &record.ID,
			}); err != nil {
				return err
			}
			result.Commissions = append(result.Commissions, *record)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reverse cancels every paid commission on the order and debits the credited
// amounts back, atomically. An order with no commissions is a successful
// no-op: cancellation before delivery is common and must not fail.
func (s *service) Reverse(ctx context.Context, orderID uuid.UUID) (*ReverseResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	result := &ReverseResult{OrderID: orderID}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		commissions, err := repo.ListByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list commissions")
		}

		for _, c := range commissions {
			if c.Status != enums.CommissionStatusPaid {
				continue
			}
			affected, err := repo.CancelPaid(ctx, c.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel commission")
			}
			if affected == 0 {
				// A concurrent reversal got here first.
				continue
			}

			debitCents := c.CommissionCents
			if c.SubjectType == enums.SubjectTypeSeller {
				// The seller was credited the net amount; claw back exactly that.
				debitCents = money.ToCents(c.OrderAmount) - c.CommissionCents
			}
			if debitCents <= 0 {
				continue
			}
			if _, err := s.wallet.Debit(ctx, tx, wallet.EntryInput{
				SubjectType:  c.SubjectType,
				SubjectID:    c.SubjectID,
				AmountCents:  debitCents,
				Description:  fmt.Sprintf("Commission reversal for order %s", orderID),
				OrderID:      &c.OrderID,
				CommissionID: &c.ID,
			}); err != nil {
				return err
			}
			result.Reversed++
		}
		return nil
	})

	s.metrics.IncReversal(outcomeLabel(err))
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID.String(),
			"reversed": result.Reversed,
		})
		s.logg.Info(logCtx, "commissions reversed")
	}
	return result, nil
}

// mapCreateError folds a unique-index violation from a racing distribution
// into the same AlreadyProcessed failure the in-transaction guard produces.
func mapCreateError(err error) error {
	if db.IsUniqueViolation(err, models.UniqueConstraintOrderSubject) {
		return pkgerrors.Wrap(pkgerrors.CodeAlreadyProcessed, err, "commissions already distributed for this order")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist commission")
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "error"
}
