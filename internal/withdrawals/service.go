package withdrawals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// refundLedger is the slice of internal/wallet rejection refunds need.
type refundLedger interface {
	Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

// RequestPage is one page of withdrawal requests for admin review.
type RequestPage struct {
	Requests   []models.WithdrawRequest `json:"requests"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

// Service drives the withdrawal request state machine:
// pending → approved → completed, or pending → rejected. Funds were already
// deducted when the request was created, so approval moves no money; only a
// rejection refunds the wallet.
type Service interface {
	Process(ctx context.Context, requestID uuid.UUID, action enums.WithdrawAction, remark string) (*models.WithdrawRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) (*models.WithdrawRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, remark string) (*models.WithdrawRequest, error)
	Complete(ctx context.Context, requestID uuid.UUID, settlementRef string) (*models.WithdrawRequest, error)
	List(ctx context.Context, status *enums.WithdrawStatus, params pagination.Params) (*RequestPage, error)
}

type service struct {
	repo   Repository
	wallet refundLedger
	tx     txRunner
	logg   *logger.Logger
}

// NewService wires the withdrawal processor.
func NewService(repo Repository, ledger refundLedger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, wallet: ledger, tx: tx, logg: logg}, nil
}

// Process applies an admin approve/reject decision to a pending request.
func (s *service) Process(ctx context.Context, requestID uuid.UUID, action enums.WithdrawAction, remark string) (*models.WithdrawRequest, error) {
	switch action {
	case enums.WithdrawActionApprove:
		return s.Approve(ctx, requestID)
	case enums.WithdrawActionReject:
		return s.Reject(ctx, requestID, remark)
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid withdrawal action %q", action))
}

// Approve marks a pending request approved. No wallet movement happens here;
// the amount was deducted when the request was created.
func (s *service) Approve(ctx context.Context, requestID uuid.UUID) (*models.WithdrawRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var request *models.WithdrawRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now().UTC()
		affected, err := repo.TransitionFrom(ctx, requestID, enums.WithdrawStatusPending, map[string]any{
			"status":       enums.WithdrawStatusApproved,
			"processed_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve withdrawal")
		}
		if affected == 0 {
			return s.transitionConflict(ctx, repo, requestID)
		}

		request, err = repo.Find(ctx, requestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload withdrawal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logDecision(ctx, request, "withdrawal approved")
	return request, nil
}

// Reject refunds the full withdrawal amount to the requester's wallet and
// marks the request rejected, atomically.
func (s *service) Reject(ctx context.Context, requestID uuid.UUID, remark string) (*models.WithdrawRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	var request *models.WithdrawRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.Find(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdrawal")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":       enums.WithdrawStatusRejected,
			"processed_at": now,
		}
		if strings.TrimSpace(remark) != "" {
			updates["remarks"] = remark
		}
		affected, err := repo.TransitionFrom(ctx, requestID, enums.WithdrawStatusPending, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject withdrawal")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "withdrawal request already processed").
				WithDetails(map[string]string{"status": current.Status.String()})
		}

		// Refund what was reserved at request creation.
		if _, err := s.wallet.Credit(ctx, tx, wallet.EntryInput{
			SubjectType: current.SubjectType,
			SubjectID:   current.SubjectID,
			AmountCents: current.AmountCents,
			Description: fmt.Sprintf("Refund for rejected withdrawal %s", requestID),
		}); err != nil {
			return err
		}

		request, err = repo.Find(ctx, requestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload withdrawal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logDecision(ctx, request, "withdrawal rejected")
	return request, nil
}

// Complete records the external settlement reference on an approved request
// and marks it completed. The actual payout happened outside this system.
func (s *service) Complete(ctx context.Context, requestID uuid.UUID, settlementRef string) (*models.WithdrawRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if strings.TrimSpace(settlementRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement reference required")
	}

	var request *models.WithdrawRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		now := time.Now().UTC()
		affected, err := repo.TransitionFrom(ctx, requestID, enums.WithdrawStatusApproved, map[string]any{
			"status":         enums.WithdrawStatusCompleted,
			"settlement_ref": settlementRef,
			"processed_at":   now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete withdrawal")
		}
		if affected == 0 {
			current, err := repo.Find(ctx, requestID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdrawal")
			}
			if current.Status == enums.WithdrawStatusPending {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal must be approved before completion")
			}
			return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "withdrawal request already processed").
				WithDetails(map[string]string{"status": current.Status.String()})
		}

		request, err = repo.Find(ctx, requestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload withdrawal")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logDecision(ctx, request, "withdrawal completed")
	return request, nil
}

func (s *service) List(ctx context.Context, status *enums.WithdrawStatus, params pagination.Params) (*RequestPage, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid withdraw status %q", *status))
	}

	requests, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawal requests")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &RequestPage{Requests: requests}
	if len(requests) > limit {
		page.Requests = requests[:limit]
		last := page.Requests[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// transitionConflict distinguishes a missing request from one already past
// pending, after a conditional update matched nothing.
func (s *service) transitionConflict(ctx context.Context, repo Repository, requestID uuid.UUID) error {
	current, err := repo.Find(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load withdrawal")
	}
	return pkgerrors.New(pkgerrors.CodeAlreadyProcessed, "withdrawal request already processed").
		WithDetails(map[string]string{"status": current.Status.String()})
}

func (s *service) logDecision(ctx context.Context, request *models.WithdrawRequest, message string) {
	if s.logg == nil || request == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"request_id":   request.ID.String(),
		"subject_type": request.SubjectType.String(),
		"subject_id":   request.SubjectID.String(),
		"amount_cents": request.AmountCents,
	})
	s.logg.Info(logCtx, message)
}
