package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

// EntryInput describes one wallet mutation. OrderID and CommissionID tie the
// ledger entry back to the money movement that caused it.
type EntryInput struct {
	SubjectType  enums.SubjectType
	SubjectID    uuid.UUID
	AmountCents  int64
	Description  string
	OrderID      *uuid.UUID
	CommissionID *uuid.UUID
}

// TransactionPage is one page of ledger history.
type TransactionPage struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

// Service is the wallet ledger: every balance mutation appends exactly one
// immutable WalletTransaction in the caller's transaction, so the cached
// balance can never drift from the entry history. Credit and Debit must be
// called inside an open transaction; they do not commit.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Transactions(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, params pagination.Params) (*TransactionPage, error)
	Balance(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires the wallet ledger with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, input, enums.WalletDirectionCredit)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, input, enums.WalletDirectionDebit)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, input EntryInput, direction enums.WalletDirection) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet mutations require an open transaction")
	}
	if !input.SubjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid subject type %q", input.SubjectType))
	}
	if input.SubjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	repo := s.repo.WithTx(tx)

	delta := input.AmountCents
	guardFunds := false
	if direction == enums.WalletDirectionDebit {
		delta = -input.AmountCents
		guardFunds = true
	}

	affected, err := repo.AddBalance(ctx, input.SubjectType, input.SubjectID, delta, guardFunds)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update balance")
	}
	if affected == 0 {
		exists, err := repo.SubjectExists(ctx, input.SubjectType, input.SubjectID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subject")
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", input.SubjectType))
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "debit exceeds wallet balance")
	}

	entry := &models.WalletTransaction{
		ID:           uuid.New(),
		SubjectType:  input.SubjectType,
		SubjectID:    input.SubjectID,
		AmountCents:  input.AmountCents,
		Direction:    direction,
		Description:  input.Description,
		OrderID:      input.OrderID,
		CommissionID: input.CommissionID,
		Status:       enums.WalletTxStatusCompleted,
	}
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append wallet transaction")
	}
	return entry, nil
}

func (s *service) Transactions(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, params pagination.Params) (*TransactionPage, error) {
	if !subjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid subject type %q", subjectType))
	}
	if subjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject id is required")
	}

	entries, err := s.repo.ListBySubject(ctx, subjectType, subjectID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &TransactionPage{Transactions: entries}
	if len(entries) > limit {
		page.Transactions = entries[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Balance(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (int64, error) {
	if !subjectType.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid subject type %q", subjectType))
	}
	exists, err := s.repo.SubjectExists(ctx, subjectType, subjectID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check subject")
	}
	if !exists {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", subjectType))
	}
	return s.repo.BalanceOf(ctx, subjectType, subjectID)
}
