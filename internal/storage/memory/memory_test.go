package memory

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
)

func seedAccounts(s *Store, n int) {
	// Seed in reverse to make sure ordering comes from the table, not insertion.
	for i := n; i >= 1; i-- {
		s.SeedAccount(ledger.Account{ID: int32(i), Name: fmt.Sprintf("Account %d", i), Level1: int16(i % 3)})
	}
}

func TestListPagesPartitionCollection(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccounts(s, 45)
	repo := s.Accounts()

	var seen []int32
	for offset := 0; offset < 45; offset += 20 {
		page, err := repo.List(ctx, offset, 20)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page), 20)
		for _, a := range page {
			seen = append(seen, a.ID)
		}
	}
	require.Len(t, seen, 45)
	for i, id := range seen {
		assert.Equal(t, int32(i+1), id)
	}

	page2, err := repo.List(ctx, 20, 20)
	require.NoError(t, err)
	assert.Equal(t, int32(21), page2[0].ID)
	assert.Equal(t, int32(40), page2[len(page2)-1].ID)

	beyond, err := repo.List(ctx, 100, 20)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	tail, err := repo.List(ctx, 40, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, tail, 5)

	_, err = repo.List(ctx, -2, 20)
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestLookupWithoutFiltersMatchesListing(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccounts(s, 12)

	all, err := s.Accounts().Lookup(ctx, ledger.AccountFilter{})
	require.NoError(t, err)
	listed, err := s.Accounts().List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, listed, all)

	two := int16(2)
	some, err := s.Accounts().Lookup(ctx, ledger.AccountFilter{Level1: &two})
	require.NoError(t, err)
	for _, a := range some {
		assert.Equal(t, int16(2), a.Level1)
	}
	assert.Len(t, some, 4)
}

func TestCommitAddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	s := New()
	repo := s.FiscalYears()

	tx := repo.Begin()
	tx.Add(ledger.FiscalYear{ID: 1, Description: "2024"})
	n, err := tx.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	tx = repo.Begin()
	tx.Update(ledger.FiscalYear{ID: 1, Description: "2024-25"})
	_, err = tx.Commit(ctx)
	require.NoError(t, err)
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-25", got.Description)

	tx = repo.Begin()
	tx.Remove(1)
	_, err = tx.Commit(ctx)
	require.NoError(t, err)
	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCommitDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	key := ledger.LedgerKey{FiscalYearID: 1, AccountID: 2, LedgerNo: 3}
	s.SeedLedger(ledger.AccountLedger{LedgerKey: key, Description: "Main"})

	tx := s.Ledgers().Begin()
	tx.Add(ledger.AccountLedger{LedgerKey: key, Description: "Again"})
	_, err := tx.Commit(ctx)
	assert.ErrorIs(t, err, errs.ErrConflict)

	got, err := s.Ledgers().Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Main", got.Description)
}

func TestCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccounts(s, 1)

	tx := s.Accounts().Begin()
	tx.Add(ledger.Account{ID: 2, Name: "New"})
	tx.Update(ledger.Account{ID: 1, Name: "Renamed"})
	tx.Remove(99)
	_, err := tx.Commit(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	n, err := s.Accounts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err := s.Accounts().Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Account 1", got.Name)
}

func TestUpdateAbsentLeavesRecordAbsent(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx := s.Vouchers().Begin()
	tx.Update(ledger.Voucher{ID: 7})
	_, err := tx.Commit(ctx)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = s.Vouchers().Get(ctx, 7)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReset(t *testing.T) {
	s := New()
	seedAccounts(s, 3)
	s.SeedFiscalYear(ledger.FiscalYear{ID: 1, Description: "2024"})
	s.Reset()

	n, err := s.Accounts().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.FiscalYears().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
