package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

// Repository manages wallet transactions and the cached subject balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error
	// AddBalance increments the subject balance and reports how many rows
	// matched. guardFunds makes the update conditional on the balance staying
	// non-negative, which is how debits enforce the insufficient-funds rule
	// without a read-then-write race.
	AddBalance(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, deltaCents int64, guardFunds bool) (int64, error)
	SubjectExists(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (bool, error)
	BalanceOf(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (int64, error)
	ListBySubject(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func subjectTable(subjectType enums.SubjectType) (string, error) {
	switch subjectType {
	case enums.SubjectTypeSeller:
		return "sellers", nil
	case enums.SubjectTypeDeliveryBoy:
		return "delivery_partners", nil
	}
	return "", fmt.Errorf("unknown subject type %q", subjectType)
}

func (r *repository) AddBalance(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, deltaCents int64, guardFunds bool) (int64, error) {
	table, err := subjectTable(subjectType)
	if err != nil {
		return 0, err
	}

	query := r.db.WithContext(ctx).Table(table).Where("id = ?", subjectID)
	if guardFunds {
		query = query.Where("balance_cents + ? >= 0", deltaCents)
	}
	res := query.Update("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) SubjectExists(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (bool, error) {
	table, err := subjectTable(subjectType)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Table(table).Where("id = ?", subjectID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) BalanceOf(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID) (int64, error) {
	table, err := subjectTable(subjectType)
	if err != nil {
		return 0, err
	}
	var balance int64
	err = r.db.WithContext(ctx).Table(table).
		Where("id = ?", subjectID).
		Select("balance_cents").
		Scan(&balance).Error
	return balance, err
}

func (r *repository) ListBySubject(ctx context.Context, subjectType enums.SubjectType, subjectID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.WalletTransaction
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
