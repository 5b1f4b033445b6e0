package commission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/money"
)

// RateResolver is the slice of internal/rates the calculator depends on.
type RateResolver interface {
	SellerRate(ctx context.Context, sellerID, productID uuid.UUID) decimal.Decimal
	DeliveryRate(ctx context.Context, partnerID uuid.UUID) decimal.Decimal
}

type settingsProvider interface {
	Get(ctx context.Context) (*models.AppSettings, error)
}

// SellerCommission is the aggregate owed by one seller for one order: the
// seller may have several items, summed into a single basis and commission.
type SellerCommission struct {
	SellerID        uuid.UUID
	BasisCents      int64
	Rate            decimal.Decimal
	CommissionCents int64
}

// NetCents is the amount credited to the seller: the basis minus the
// platform's commission.
func (s SellerCommission) NetCents() int64 {
	return s.BasisCents - s.CommissionCents
}

// DeliveryCommission is the delivery partner's earning for one order. When
// DistanceBased is set, Basis is the distance in kilometers rather than a
// money value.
type DeliveryCommission struct {
	PartnerID       uuid.UUID
	Basis           decimal.Decimal
	Rate            decimal.Decimal
	DistanceBased   bool
	CommissionCents int64
}

// CalcResult is the outcome of commission calculation for one order.
type CalcResult struct {
	Sellers  []SellerCommission
	Delivery *DeliveryCommission
}

// Calculator computes per-seller and delivery commissions for an order.
type Calculator struct {
	rates    RateResolver
	settings settingsProvider
}

// NewCalculator wires a commission calculator.
func NewCalculator(rates RateResolver, settings settingsProvider) (*Calculator, error) {
	if rates == nil {
		return nil, fmt.Errorf("rate resolver required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	return &Calculator{rates: rates, settings: settings}, nil
}

// Calculate resolves rates and computes commission amounts for every seller
// on the order plus the assigned delivery partner. An order with no items or
// no delivery partner yields an empty/absent result, not an error.
func (c *Calculator) Calculate(ctx context.Context, order *models.Order) (*CalcResult, error) {
	if order == nil {
		return nil, fmt.Errorf("order required")
	}

	result := &CalcResult{}

	type accumulator struct {
		basisCents int64
		commission decimal.Decimal
		rate       decimal.Decimal
		mixedRates bool
	}
	perSeller := map[uuid.UUID]*accumulator{}
	sellerOrder := []uuid.UUID{}

	for _, item := range order.Items {
		rate := c.rates.SellerRate(ctx, item.SellerID, item.ProductID)
		acc, ok := perSeller[item.SellerID]
		if !ok {
			acc = &accumulator{rate: rate}
			perSeller[item.SellerID] = acc
			sellerOrder = append(sellerOrder, item.SellerID)
		} else if !acc.rate.Equal(rate) {
			acc.mixedRates = true
		}
		acc.basisCents += item.TotalCents
		acc.commission = acc.commission.Add(money.Percent(money.FromCents(item.TotalCents), rate))
	}

	for _, sellerID := range sellerOrder {
		acc := perSeller[sellerID]
		commissionCents := money.ToCents(acc.commission)
		rate := acc.rate
		if acc.mixedRates && acc.basisCents > 0 {
			// Items resolved to different rates; record the basis-weighted
			// effective rate on the aggregate.
			rate = money.FromCents(commissionCents).
				Div(money.FromCents(acc.basisCents)).
				Mul(decimal.NewFromInt(100)).
				Round(2)
		}
		result.Sellers = append(result.Sellers, SellerCommission{
			SellerID:        sellerID,
			BasisCents:      acc.basisCents,
			Rate:            rate,
			CommissionCents: commissionCents,
		})
	}

	delivery, err := c.deliveryCommission(ctx, order)
	if err != nil {
		return nil, err
	}
	result.Delivery = delivery

	return result, nil
}

func (c *Calculator) deliveryCommission(ctx context.Context, order *models.Order) (*DeliveryCommission, error) {
	if order.DeliveryPartnerID == nil {
		return nil, nil
	}
	partnerID := *order.DeliveryPartnerID

	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if settings.IsDistanceBased && settings.DeliveryBoyKmRate.IsPositive() && order.DeliveryDistanceKm.IsPositive() {
		// Distance pricing: the recorded basis is the distance itself, not a
		// money value. The amount is rounded half-up to two places.
		amount := order.DeliveryDistanceKm.Mul(settings.DeliveryBoyKmRate).Round(2)
		return &DeliveryCommission{
			PartnerID:       partnerID,
			Basis:           order.DeliveryDistanceKm,
			Rate:            settings.DeliveryBoyKmRate,
			DistanceBased:   true,
			CommissionCents: money.ToCents(amount),
		}, nil
	}

	rate := c.rates.DeliveryRate(ctx, partnerID)
	return &DeliveryCommission{
		PartnerID:       partnerID,
		Basis:           money.FromCents(order.SubtotalCents),
		Rate:            rate,
		CommissionCents: money.PercentOfCents(order.SubtotalCents, rate),
	}, nil
}
