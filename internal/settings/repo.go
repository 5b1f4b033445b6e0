package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
)

// Repository manages persistence for the settings singleton.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context) (*models.AppSettings, error)
	Create(ctx context.Context, settings *models.AppSettings) error
	Save(ctx context.Context, settings *models.AppSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Find(ctx context.Context) (*models.AppSettings, error) {
	var settings models.AppSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", models.SettingsSingletonID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Create(ctx context.Context, settings *models.AppSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *repository) Save(ctx context.Context, settings *models.AppSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
