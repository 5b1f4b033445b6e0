package rates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
)

// Repository exposes the lookups rate resolution needs. All methods return
// gorm.ErrRecordNotFound for missing rows; the resolver decides how soft to
// fail.
type Repository interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindSubCategory(ctx context.Context, id uuid.UUID) (*models.SubCategory, error)
	FindSubSubCategory(ctx context.Context, id uuid.UUID) (*models.SubSubCategory, error)
	FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindDeliveryPartner(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a rates repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) FindSubCategory(ctx context.Context, id uuid.UUID) (*models.SubCategory, error) {
	var subCategory models.SubCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subCategory).Error; err != nil {
		return nil, err
	}
	return &subCategory, nil
}

func (r *repository) FindSubSubCategory(ctx context.Context, id uuid.UUID) (*models.SubSubCategory, error) {
	var subSubCategory models.SubSubCategory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&subSubCategory).Error; err != nil {
		return nil, err
	}
	return &subSubCategory, nil
}

func (r *repository) FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repository) FindDeliveryPartner(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}
