package rates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/metrics"
)

// Built-in fallbacks used when even the settings row is unreadable.
var (
	fallbackSellerRate   = decimal.NewFromInt(10)
	fallbackDeliveryRate = decimal.NewFromInt(5)
)

type settingsProvider interface {
	Get(ctx context.Context) (*models.AppSettings, error)
}

// Resolver determines the applicable commission rate for a subject.
// Lookups fail soft: a missing record falls back to the global default so a
// broken reference can never block order fulfillment. Every fallback is
// logged and counted because silent default-rate application can mask data
// integrity problems.
type Resolver interface {
	SellerRate(ctx context.Context, sellerID, productID uuid.UUID) decimal.Decimal
	DeliveryRate(ctx context.Context, partnerID uuid.UUID) decimal.Decimal
}

type resolver struct {
	repo     Repository
	settings settingsProvider
	logg     *logger.Logger
	metrics  *metrics.CommissionMetrics
}

// NewResolver wires a rate resolver. metrics may be nil.
func NewResolver(repo Repository, settings settingsProvider, logg *logger.Logger, m *metrics.CommissionMetrics) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("rates repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	return &resolver{repo: repo, settings: settings, logg: logg, metrics: m}, nil
}

// SellerRate resolves in priority order: the product's most specific
// classification level carrying a positive rate (leaf first), then the
// seller's individual override, then the global default.
func (r *resolver) SellerRate(ctx context.Context, sellerID, productID uuid.UUID) decimal.Decimal {
	if rate, ok := r.classificationRate(ctx, productID); ok {
		return rate
	}

	if sellerID != uuid.Nil {
		seller, err := r.repo.FindSeller(ctx, sellerID)
		if err != nil {
			r.fallback(ctx, enums.SubjectTypeSeller, "seller", sellerID, err)
			return r.defaultSellerRate(ctx)
		}
		if seller.CommissionRate.IsPositive() {
			return seller.CommissionRate
		}
	}

	return r.defaultSellerRate(ctx)
}

// DeliveryRate resolves the percentage-mode delivery rate: the partner's
// individual override if positive, else the global default. Distance-based
// pricing bypasses this entirely.
func (r *resolver) DeliveryRate(ctx context.Context, partnerID uuid.UUID) decimal.Decimal {
	if partnerID != uuid.Nil {
		partner, err := r.repo.FindDeliveryPartner(ctx, partnerID)
		if err != nil {
			r.fallback(ctx, enums.SubjectTypeDeliveryBoy, "delivery_partner", partnerID, err)
			return r.defaultDeliveryRate(ctx)
		}
		if partner.CommissionRate.IsPositive() {
			return partner.CommissionRate
		}
	}

	return r.defaultDeliveryRate(ctx)
}

// classificationRate walks the product's classification chain leaf to root
// and returns the first positive override.
func (r *resolver) classificationRate(ctx context.Context, productID uuid.UUID) (decimal.Decimal, bool) {
	if productID == uuid.Nil {
		return decimal.Zero, false
	}

	product, err := r.repo.FindProduct(ctx, productID)
	if err != nil {
		r.fallback(ctx, enums.SubjectTypeSeller, "product", productID, err)
		return decimal.Zero, false
	}

	if product.SubSubCategoryID != nil {
		if leaf, err := r.repo.FindSubSubCategory(ctx, *product.SubSubCategoryID); err == nil && leaf.CommissionRate.IsPositive() {
			return leaf.CommissionRate, true
		}
	}
	if product.SubCategoryID != nil {
		if sub, err := r.repo.FindSubCategory(ctx, *product.SubCategoryID); err == nil && sub.CommissionRate.IsPositive() {
			return sub.CommissionRate, true
		}
	}
	if category, err := r.repo.FindCategory(ctx, product.CategoryID); err == nil && category.CommissionRate.IsPositive() {
		return category.CommissionRate, true
	}
	return decimal.Zero, false
}

func (r *resolver) defaultSellerRate(ctx context.Context) decimal.Decimal {
	settings, err := r.settings.Get(ctx)
	if err != nil || !settings.SellerCommissionRate.IsPositive() {
		return fallbackSellerRate
	}
	return settings.SellerCommissionRate
}

func (r *resolver) defaultDeliveryRate(ctx context.Context) decimal.Decimal {
	settings, err := r.settings.Get(ctx)
	if err != nil || !settings.DeliveryBoyCommissionRate.IsPositive() {
		return fallbackDeliveryRate
	}
	return settings.DeliveryBoyCommissionRate
}

func (r *resolver) fallback(ctx context.Context, subjectType enums.SubjectType, kind string, id uuid.UUID, err error) {
	r.metrics.IncRateFallback(subjectType.String())
	if r.logg == nil {
		return
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"lookup":    kind,
		"lookup_id": id.String(),
		"error":     err.Error(),
	})
	r.logg.Warn(ctx, "rate lookup failed, using default rate")
}
