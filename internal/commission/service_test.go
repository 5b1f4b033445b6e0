package commission

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func setupCommissionTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS sellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  commission_rate NUMERIC NOT NULL DEFAULT 0,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS delivery_partners (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  commission_rate NUMERIC NOT NULL DEFAULT 0,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  delivery_partner_id TEXT,
  delivery_distance_km NUMERIC NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS commissions (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  subject_type TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  order_amount NUMERIC NOT NULL,
  rate NUMERIC NOT NULL,
  commission_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS ux_commissions_order_subject
  ON commissions (order_id, subject_type, subject_id);`, `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  subject_type TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  direction TEXT NOT NULL,
  description TEXT NOT NULL,
  order_id TEXT,
  commission_id TEXT,
  status TEXT NOT NULL DEFAULT 'completed',
  created_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type distributionEnv struct {
	db     *gorm.DB
	svc    Service
	wallet wallet.Service
}

func newDistributionEnv(t *testing.T, rates RateResolver, settings settingsProvider) distributionEnv {
	t.Helper()

	db := setupCommissionTestDB(t)

	walletSvc, err := wallet.NewService(wallet.NewRepository(db))
	require.NoError(t, err)

	calc, err := NewCalculator(rates, settings)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), calc, walletSvc, testTxRunner{db: db}, nil, nil)
	require.NoError(t, err)

	return distributionEnv{db: db, svc: svc, wallet: walletSvc}
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, sellerID uuid.UUID, itemTotals []int64) *models.Order {
	t.Helper()

	seller := &models.Seller{ID: sellerID, Name: "Seller", Email: "s@example.com"}
	require.NoError(t, db.Create(seller).Error)

	now := time.Now().UTC()
	var subtotal int64
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: now.UnixNano() % 1_000_000,
		Status:      enums.OrderStatusDelivered,
		DeliveredAt: &now,
	}
	for _, total := range itemTotals {
		subtotal += total
		order.Items = append(order.Items, models.OrderItem{
			ID:             uuid.New(),
			SellerID:       sellerID,
			ProductID:      uuid.New(),
			Qty:            1,
			UnitPriceCents: total,
			TotalCents:     total,
		})
	}
	order.SubtotalCents = subtotal
	require.NoError(t, db.Create(order).Error)
	return order
}

func tenPercent(sellerID uuid.UUID) *stubRates {
	return &stubRates{sellerRates: map[uuid.UUID]decimal.Decimal{
		sellerID: decimal.NewFromInt(10),
	}}
}

func TestDistributeCreditsNetAndRecordsCommission(t *testing.T) {
	sellerID := uuid.New()
	env := newDistributionEnv(t, tenPercent(sellerID), &stubSettings{})
	order := seedDeliveredOrder(t, env.db, sellerID, []int64{10000, 5000})

	ctx := context.Background()
	result, err := env.svc.Distribute(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, result.Commissions, 1)

	c := result.Commissions[0]
	require.Equal(t, enums.CommissionStatusPaid, c.Status)
	require.Equal(t, int64(1500), c.CommissionCents)
	require.NotNil(t, c.PaidAt)

	// Net plus commission must equal the seller's item totals.
	balance, err := env.wallet.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(13500), balance)
	require.Equal(t, order.SubtotalCents, balance+c.CommissionCents)
}

func TestDistributeIsExactlyOnce(t *testing.T) {
	sellerID := uuid.New()
	env := newDistributionEnv(t, tenPercent(sellerID), &stubSettings{})
	order := seedDeliveredOrder(t, env.db, sellerID, []int64{10000})

	ctx := context.Background()
	_, err := env.svc.Distribute(ctx, order.ID)
	require.NoError(t, err)

	_, err = env.svc.Distribute(ctx, order.ID)
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyProcessed))

	var commissionCount, txCount int64
	require.NoError(t, env.db.Model(&models.Commission{}).Where("order_id = ?", order.ID).Count(&commissionCount).Error)
	require.NoError(t, env.db.Model(&models.WalletTransaction{}).Where("order_id = ?", order.ID).Count(&txCount).Error)
	require.Equal(t, int64(1), commissionCount)
	require.Equal(t, int64(1), txCount)

	balance, err := env.wallet.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(9000), balance)
}

func TestDistributeRequiresDeliveredOrder(t *testing.T) {
	sellerID := uuid.New()
	env := newDistributionEnv(t, tenPercent(sellerID), &stubSettings{})
	order := seedDeliveredOrder(t, env.db, sellerID, []int64{10000})
	require.NoError(t, env.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", enums.OrderStatusShipped).Error)

	_, err := env.svc.Distribute(context.Background(), order.ID)
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	var count int64
	require.NoError(t, env.db.Model(&models.Commission{}).Where("order_id = ?", order.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestDistributeUnknownOrder(t *testing.T) {
	env := newDistributionEnv(t, &stubRates{}, &stubSettings{})

	_, err := env.svc.Distribute(context.Background(), uuid.New())
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDistributePaysDeliveryPartnerFullCommission(t *testing.T) {
	sellerID := uuid.New()
	partnerID := uuid.New()

	env := newDistributionEnv(t,
		&stubRates{
			sellerRates:  map[uuid.UUID]decimal.Decimal{sellerID: decimal.NewFromInt(10)},
			deliveryRate: decimal.NewFromInt(5),
		},
		&stubSettings{},
	)
	partner := &models.DeliveryPartner{ID: partnerID, Name: "Rider", Phone: "555"}
	require.NoError(t, env.db.Create(partner).Error)

	order := seedDeliveredOrder(t, env.db, sellerID, []int64{20000})
	require.NoError(t, env.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("delivery_partner_id", partnerID).Error)

	ctx := context.Background()
	result, err := env.svc.Distribute(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, result.Commissions, 2)

	// The rider is credited the commission itself, not a net remainder.
	balance, err := env.wallet.Balance(ctx, enums.SubjectTypeDeliveryBoy, partnerID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance)
}

func TestReverseRestoresBalances(t *testing.T) {
	sellerID := uuid.New()
	partnerID := uuid.New()

	env := newDistributionEnv(t,
		&stubRates{
			sellerRates:  map[uuid.UUID]decimal.Decimal{sellerID: decimal.NewFromInt(10)},
			deliveryRate: decimal.NewFromInt(5),
		},
		&stubSettings{},
	)
	partner := &models.DeliveryPartner{ID: partnerID, Name: "Rider", Phone: "555"}
	require.NoError(t, env.db.Create(partner).Error)

	order := seedDeliveredOrder(t, env.db, sellerID, []int64{10000, 5000})
	require.NoError(t, env.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("delivery_partner_id", partnerID).Error)

	ctx := context.Background()
	_, err := env.svc.Distribute(ctx, order.ID)
	require.NoError(t, err)

	result, err := env.svc.Reverse(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Reversed)

	sellerBalance, err := env.wallet.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Zero(t, sellerBalance)

	partnerBalance, err := env.wallet.Balance(ctx, enums.SubjectTypeDeliveryBoy, partnerID)
	require.NoError(t, err)
	require.Zero(t, partnerBalance)

	var commissions []models.Commission
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Find(&commissions).Error)
	require.Len(t, commissions, 2)
	for _, c := range commissions {
		require.Equal(t, enums.CommissionStatusCancelled, c.Status)
	}
}

func TestReverseTwiceDebitsOnlyOnce(t *testing.T) {
	sellerID := uuid.New()
	env := newDistributionEnv(t, tenPercent(sellerID), &stubSettings{})
	order := seedDeliveredOrder(t, env.db, sellerID, []int64{10000})

	ctx := context.Background()
	_, err := env.svc.Distribute(ctx, order.ID)
	require.NoError(t, err)

	first, err := env.svc.Reverse(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 1, first.Reversed)

	second, err := env.svc.Reverse(ctx, order.ID)
	require.NoError(t, err)
	require.Zero(t, second.Reversed)

	balance, err := env.wallet.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestReverseWithoutCommissionsIsNoOp(t *testing.T) {
	env := newDistributionEnv(t, &stubRates{}, &stubSettings{})

	result, err := env.svc.Reverse(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Zero(t, result.Reversed)
}
