package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketkart/backoffice-backend/pkg/db/models"
	"github.com/marketkart/backoffice-backend/pkg/enums"
	pkgerrors "github.com/marketkart/backoffice-backend/pkg/errors"
	"github.com/marketkart/backoffice-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sellers := `
CREATE TABLE IF NOT EXISTS sellers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  commission_rate NUMERIC NOT NULL DEFAULT 0,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	partners := `
CREATE TABLE IF NOT EXISTS delivery_partners (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  commission_rate NUMERIC NOT NULL DEFAULT 0,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
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
);`
	require.NoError(t, db.Exec(sellers).Error)
	require.NoError(t, db.Exec(partners).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func seedSeller(t *testing.T, db *gorm.DB, balanceCents int64) uuid.UUID {
	t.Helper()
	seller := &models.Seller{
		ID:           uuid.New(),
		Name:         "Test Seller",
		Email:        "seller@example.com",
		BalanceCents: balanceCents,
	}
	require.NoError(t, db.Create(seller).Error)
	return seller.ID
}

func TestCreditAppendsEntryAndUpdatesBalance(t *testing.T) {
	db := setupWalletTestDB(t)
	sellerID := seedSeller(t, db, 0)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Credit(ctx, tx, EntryInput{
			SubjectType: enums.SubjectTypeSeller,
			SubjectID:   sellerID,
			AmountCents: 2500,
			Description: "test credit",
		})
		return err
	})
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(2500), balance)

	page, err := svc.Transactions(ctx, enums.SubjectTypeSeller, sellerID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 1)
	require.Equal(t, enums.WalletDirectionCredit, page.Transactions[0].Direction)
	require.Equal(t, int64(2500), page.Transactions[0].AmountCents)
}

func TestDebitGuardsAgainstOverdraft(t *testing.T) {
	db := setupWalletTestDB(t)
	sellerID := seedSeller(t, db, 1000)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Debit(ctx, tx, EntryInput{
			SubjectType: enums.SubjectTypeSeller,
			SubjectID:   sellerID,
			AmountCents: 1500,
			Description: "test overdraft",
		})
		return err
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientFunds))

	// The failed debit must leave no trace: same balance, no ledger entry.
	balance, err := svc.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance)

	page, err := svc.Transactions(ctx, enums.SubjectTypeSeller, sellerID, pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, page.Transactions)
}

func TestDebitExactBalanceSucceeds(t *testing.T) {
	db := setupWalletTestDB(t)
	sellerID := seedSeller(t, db, 1000)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Debit(ctx, tx, EntryInput{
			SubjectType: enums.SubjectTypeSeller,
			SubjectID:   sellerID,
			AmountCents: 1000,
			Description: "drain to zero",
		})
		return err
	})
	require.NoError(t, err)

	balance, err := svc.Balance(ctx, enums.SubjectTypeSeller, sellerID)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestCreditUnknownSubject(t *testing.T) {
	db := setupWalletTestDB(t)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Credit(context.Background(), tx, EntryInput{
			SubjectType: enums.SubjectTypeSeller,
			SubjectID:   uuid.New(),
			AmountCents: 100,
			Description: "ghost subject",
		})
		return err
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	db := setupWalletTestDB(t)
	sellerID := seedSeller(t, db, 0)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	cases := []EntryInput{
		{SubjectType: "store", SubjectID: sellerID, AmountCents: 100},
		{SubjectType: enums.SubjectTypeSeller, SubjectID: uuid.Nil, AmountCents: 100},
		{SubjectType: enums.SubjectTypeSeller, SubjectID: sellerID, AmountCents: 0},
		{SubjectType: enums.SubjectTypeSeller, SubjectID: sellerID, AmountCents: -5},
	}
	for _, input := range cases {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.Credit(context.Background(), tx, input)
			return err
		})
		require.Error(t, err)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	}
}

func TestTransactionsPaginates(t *testing.T) {
	db := setupWalletTestDB(t)
	sellerID := seedSeller(t, db, 0)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		err = db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.Credit(ctx, tx, EntryInput{
				SubjectType: enums.SubjectTypeSeller,
				SubjectID:   sellerID,
				AmountCents: 100,
				Description: "page fill",
			})
			return err
		})
		require.NoError(t, err)
	}

	page, err := svc.Transactions(ctx, enums.SubjectTypeSeller, sellerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.Transactions(ctx, enums.SubjectTypeSeller, sellerID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Transactions, 1)
	require.Empty(t, rest.NextCursor)
}
