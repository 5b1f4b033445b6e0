package withdrawals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func setupWithdrawalsTestDB(t *testing.T) *gorm.DB {
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
);`, `
CREATE TABLE IF NOT EXISTS withdraw_requests (
  id TEXT PRIMARY KEY,
  subject_type TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  remarks TEXT,
  settlement_ref TEXT,
  processed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type withdrawalEnv struct {
	db  *gorm.DB
	svc Service
}

func newWithdrawalEnv(t *testing.T) withdrawalEnv {
	t.Helper()

	db := setupWithdrawalsTestDB(t)
	walletSvc, err := wallet.NewService(wallet.NewRepository(db))
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), walletSvc, testTxRunner{db: db}, nil)
	require.NoError(t, err)
	return withdrawalEnv{db: db, svc: svc}
}

func seedRequest(t *testing.T, db *gorm.DB, amountCents int64, status enums.WithdrawStatus) *models.WithdrawRequest {
	t.Helper()

	seller := &models.Seller{ID: uuid.New(), Name: "Seller", Email: "s@example.com"}
	require.NoError(t, db.Create(seller).Error)

	request := &models.WithdrawRequest{
		ID:            uuid.New(),
		SubjectType:   enums.SubjectTypeSeller,
		SubjectID:     seller.ID,
		AmountCents:   amountCents,
		Status:        status,
		PaymentMethod: "bank_transfer",
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

func TestApprovePendingRequest(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusPending)

	approved, err := env.svc.Approve(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, enums.WithdrawStatusApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	// Approval moves no money; funds were reserved at request creation.
	var txCount int64
	require.NoError(t, env.db.Model(&models.WalletTransaction{}).
		Where("subject_id = ?", request.SubjectID).
		Count(&txCount).Error)
	require.Zero(t, txCount)
}

func TestApproveTwiceIsAlreadyProcessed(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusPending)

	ctx := context.Background()
	_, err := env.svc.Approve(ctx, request.ID)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, request.ID)
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyProcessed))
}

func TestRejectRefundsFullAmount(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 500, enums.WithdrawStatusPending)

	rejected, err := env.svc.Reject(context.Background(), request.ID, "invalid bank details")
	require.NoError(t, err)
	require.Equal(t, enums.WithdrawStatusRejected, rejected.Status)
	require.NotNil(t, rejected.Remarks)
	require.Equal(t, "invalid bank details", *rejected.Remarks)

	var seller models.Seller
	require.NoError(t, env.db.Where("id = ?", request.SubjectID).First(&seller).Error)
	require.Equal(t, int64(500), seller.BalanceCents)

	var entries []models.WalletTransaction
	require.NoError(t, env.db.Where("subject_id = ?", request.SubjectID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, enums.WalletDirectionCredit, entries[0].Direction)
	require.Equal(t, int64(500), entries[0].AmountCents)
}

func TestRejectApprovedRequestFails(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 500, enums.WithdrawStatusApproved)

	_, err := env.svc.Reject(context.Background(), request.ID, "too late")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyProcessed))

	// No refund on a failed rejection.
	var txCount int64
	require.NoError(t, env.db.Model(&models.WalletTransaction{}).
		Where("subject_id = ?", request.SubjectID).
		Count(&txCount).Error)
	require.Zero(t, txCount)
}

func TestCompleteApprovedRequest(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusApproved)

	completed, err := env.svc.Complete(context.Background(), request.ID, "SETTLE-42")
	require.NoError(t, err)
	require.Equal(t, enums.WithdrawStatusCompleted, completed.Status)
	require.NotNil(t, completed.SettlementRef)
	require.Equal(t, "SETTLE-42", *completed.SettlementRef)
}

func TestCompleteRequiresReference(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusApproved)

	_, err := env.svc.Complete(context.Background(), request.ID, "  ")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCompletePendingRequestIsStateConflict(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusPending)

	_, err := env.svc.Complete(context.Background(), request.ID, "SETTLE-42")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestProcessDispatchesAction(t *testing.T) {
	env := newWithdrawalEnv(t)
	request := seedRequest(t, env.db, 5000, enums.WithdrawStatusPending)

	ctx := context.Background()
	processed, err := env.svc.Process(ctx, request.ID, enums.WithdrawActionApprove, "")
	require.NoError(t, err)
	require.Equal(t, enums.WithdrawStatusApproved, processed.Status)

	_, err = env.svc.Process(ctx, request.ID, "escalate", "")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestProcessUnknownRequest(t *testing.T) {
	env := newWithdrawalEnv(t)

	_, err := env.svc.Process(context.Background(), uuid.New(), enums.WithdrawActionApprove, "")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	env := newWithdrawalEnv(t)
	pending := seedRequest(t, env.db, 100, enums.WithdrawStatusPending)
	seedRequest(t, env.db, 200, enums.WithdrawStatusCompleted)

	status := enums.WithdrawStatusPending
	page, err := env.svc.List(context.Background(), &status, pagination.Params{})
	require.NoError(t, err)

	found := false
	for _, r := range page.Requests {
		require.Equal(t, enums.WithdrawStatusPending, r.Status)
		if r.ID == pending.ID {
			found = true
		}
	}
	require.True(t, found)
}
