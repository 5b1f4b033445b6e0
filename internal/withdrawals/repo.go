package withdrawals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

// Repository manages withdrawal request persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error)
	// TransitionFrom applies updates only when the request is still in the
	// expected status, reporting how many rows matched. Conditioning the
	// UPDATE on the prior status is what rejects double-processing inside the
	// mutating transaction rather than before it.
	TransitionFrom(ctx context.Context, id uuid.UUID, from enums.WithdrawStatus, updates map[string]any) (int64, error)
	List(ctx context.Context, status *enums.WithdrawStatus, params pagination.Params) ([]models.WithdrawRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a withdrawals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.WithdrawRequest, error) {
	var request models.WithdrawRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) TransitionFrom(ctx context.Context, id uuid.UUID, from enums.WithdrawStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.WithdrawRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) List(ctx context.Context, status *enums.WithdrawStatus, params pagination.Params) ([]models.WithdrawRequest, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if status != nil {
		query = query.Where("status = ?", *status)
	}

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

	var requests []models.WithdrawRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
