package gormstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
)

// newSQLiteStore opens an isolated shared-cache in-memory database so every
// pooled connection sees the same tables.
func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	d, err := Dialector("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	s, err := Open(context.Background(), d)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

// seedParents adds the fiscal years and accounts that ledgers refer to.
func seedParents(t *testing.T, s *Store, years []uint8, accounts []int32) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ytx := s.FiscalYears().Begin()
	for _, id := range years {
		ytx.Add(ledger.FiscalYear{ID: id, Description: "FY", StartDate: start, EndDate: start})
	}
	_, err := ytx.Commit(ctx)
	require.NoError(t, err)
	atx := s.Accounts().Begin()
	for _, id := range accounts {
		atx.Add(ledger.Account{ID: id, Name: "Account"})
	}
	_, err = atx.Commit(ctx)
	require.NoError(t, err)
}

// newMockStore creates a Store with a mocked postgres connection.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return New(gormDB), mock, mockDB
}

func TestSQLite_ListOrdersBeforePaging(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	tx := s.Accounts().Begin()
	for i := int32(45); i >= 1; i-- {
		tx.Add(ledger.Account{ID: i, Name: "Account", Level1: int16(i % 3)})
	}
	n, err := tx.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(45), n)

	total, err := s.Accounts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(45), total)

	page, err := s.Accounts().List(ctx, 20, 20)
	require.NoError(t, err)
	require.Len(t, page, 20)
	assert.Equal(t, int32(21), page[0].ID)
	assert.Equal(t, int32(40), page[19].ID)

	last, err := s.Accounts().List(ctx, 40, 20)
	require.NoError(t, err)
	assert.Len(t, last, 5)
}

func TestSQLite_LookupFilters(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	seedParents(t, s, []uint8{1, 2}, []int32{10, 11})

	tx := s.Ledgers().Begin()
	for _, k := range []ledger.LedgerKey{{FiscalYearID: 2, AccountID: 10, LedgerNo: 1}, {FiscalYearID: 1, AccountID: 10, LedgerNo: 2}, {FiscalYearID: 1, AccountID: 10, LedgerNo: 1}, {FiscalYearID: 1, AccountID: 11, LedgerNo: 1}} {
		tx.Add(ledger.AccountLedger{LedgerKey: k, Description: "L"})
	}
	_, err := tx.Commit(ctx)
	require.NoError(t, err)

	all, err := s.Ledgers().Lookup(ctx, ledger.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ledger.LedgerKey{FiscalYearID: 1, AccountID: 10, LedgerNo: 1}, all[0].LedgerKey)
	assert.Equal(t, ledger.LedgerKey{FiscalYearID: 2, AccountID: 10, LedgerNo: 1}, all[3].LedgerKey)

	fy, acc := uint8(1), int32(10)
	some, err := s.Ledgers().Lookup(ctx, ledger.LedgerFilter{KeyFilter: ledger.KeyFilter{FiscalYearID: &fy, AccountID: &acc}})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, int32(1), some[0].LedgerNo)
	assert.Equal(t, int32(2), some[1].LedgerNo)
}

func TestSQLite_VoucherRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	seedParents(t, s, []uint8{1}, []int32{5})
	ltx := s.Ledgers().Begin()
	ltx.Add(ledger.AccountLedger{LedgerKey: ledger.LedgerKey{FiscalYearID: 1, AccountID: 5, LedgerNo: 1}, Description: "Rent"})
	_, err := ltx.Commit(ctx)
	require.NoError(t, err)
	uid := int32(3)
	in := ledger.Voucher{
		ID:        9,
		LedgerKey: ledger.LedgerKey{FiscalYearID: 1, AccountID: 5, LedgerNo: 1},
		VoucherNo: 4,
		Date:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Side:      ledger.SideCredit,
		Amount:    decimal.RequireFromString("99.95"),
		Narration: "Rent",
		UserID:    &uid,
	}
	tx := s.Vouchers().Begin()
	tx.Add(in)
	_, err = tx.Commit(ctx)
	require.NoError(t, err)

	got, err := s.Vouchers().Get(ctx, 9)
	require.NoError(t, err)
	assert.True(t, in.Amount.Equal(got.Amount), "amount %s", got.Amount)
	assert.True(t, in.Date.Equal(got.Date))
	assert.Equal(t, in.LedgerKey, got.LedgerKey)
	assert.Equal(t, in.Side, got.Side)
	require.NotNil(t, got.UserID)
	assert.Equal(t, uid, *got.UserID)
}

func TestSQLite_WriteErrors(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	y := ledger.FiscalYear{ID: 1, Description: "2024", StartDate: start, EndDate: start.AddDate(1, 0, -1)}

	tx := s.FiscalYears().Begin()
	tx.Add(y)
	_, err := tx.Commit(ctx)
	require.NoError(t, err)

	t.Run("duplicate key is a conflict", func(t *testing.T) {
		tx := s.FiscalYears().Begin()
		tx.Add(y)
		_, err := tx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("update of an absent key is not found", func(t *testing.T) {
		tx := s.FiscalYears().Begin()
		tx.Update(ledger.FiscalYear{ID: 2, Description: "2025", StartDate: start, EndDate: start})
		_, err := tx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		_, err = s.FiscalYears().Get(ctx, 2)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("update replaces the record", func(t *testing.T) {
		changed := y
		changed.IsOpen = true
		changed.Description = "FY 2024"
		tx := s.FiscalYears().Begin()
		tx.Update(changed)
		_, err := tx.Commit(ctx)
		require.NoError(t, err)
		got, err := s.FiscalYears().Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "FY 2024", got.Description)
		assert.True(t, got.IsOpen)
	})

	t.Run("remove of an absent key is not found", func(t *testing.T) {
		tx := s.FiscalYears().Begin()
		tx.Remove(42)
		_, err := tx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("failed batch rolls back", func(t *testing.T) {
		tx := s.FiscalYears().Begin()
		tx.Add(ledger.FiscalYear{ID: 3, Description: "2026", StartDate: start, EndDate: start})
		tx.Remove(77)
		_, err := tx.Commit(ctx)
		require.ErrorIs(t, err, errs.ErrNotFound)
		_, err = s.FiscalYears().Get(ctx, 3)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestSQLite_ForeignKeysRestrict(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	seedParents(t, s, []uint8{1}, []int32{10})
	key := ledger.LedgerKey{FiscalYearID: 1, AccountID: 10, LedgerNo: 1}

	t.Run("ledger needs its fiscal year and account", func(t *testing.T) {
		for _, k := range []ledger.LedgerKey{{FiscalYearID: 9, AccountID: 10, LedgerNo: 1}, {FiscalYearID: 1, AccountID: 99, LedgerNo: 1}} {
			tx := s.Ledgers().Begin()
			tx.Add(ledger.AccountLedger{LedgerKey: k, Description: "Orphan"})
			_, err := tx.Commit(ctx)
			assert.ErrorIs(t, err, errs.ErrConflict, "%+v", k)
		}
	})

	ltx := s.Ledgers().Begin()
	ltx.Add(ledger.AccountLedger{LedgerKey: key, Description: "Cash"})
	_, err := ltx.Commit(ctx)
	require.NoError(t, err)

	t.Run("voucher needs its ledger", func(t *testing.T) {
		tx := s.Vouchers().Begin()
		tx.Add(ledger.Voucher{ID: 1, LedgerKey: ledger.LedgerKey{FiscalYearID: 1, AccountID: 10, LedgerNo: 2}, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Side: ledger.SideDebit, Amount: decimal.NewFromInt(1)})
		_, err := tx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("parents with children cannot be removed", func(t *testing.T) {
		ytx := s.FiscalYears().Begin()
		ytx.Remove(1)
		_, err := ytx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrConflict)

		atx := s.Accounts().Begin()
		atx.Remove(10)
		_, err = atx.Commit(ctx)
		assert.ErrorIs(t, err, errs.ErrConflict)

		_, err = s.FiscalYears().Get(ctx, 1)
		assert.NoError(t, err)
	})
}

func TestPostgres_GetQueryShape(t *testing.T) {
	t.Run("finds existing voucher", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"voucher_id", "fiscal_year_id", "account_id", "ledger_no", "voucher_no", "voucher_date", "side", "amount", "narration", "user_id"}).
			AddRow(7, 1, 10, 1, 3, date, "debit", "150.00", "Stationery", nil)

		mock.ExpectQuery(`SELECT \* FROM "vouchers" WHERE "voucher_id" = \$1 LIMIT .*`).
			WillReturnRows(rows)

		v, err := s.Vouchers().Get(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, int32(7), v.ID)
		assert.Equal(t, ledger.LedgerKey{FiscalYearID: 1, AccountID: 10, LedgerNo: 1}, v.LedgerKey)
		assert.True(t, v.Amount.Equal(decimal.NewFromInt(150)))
		assert.Nil(t, v.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing voucher", func(t *testing.T) {
		s, mock, mockDB := newMockStore(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "vouchers" WHERE "voucher_id" = \$1 LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := s.Vouchers().Get(context.Background(), 8)

		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgres_ListQueryShape(t *testing.T) {
	s, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "fiscal_years" ORDER BY year_description, fiscal_year_id LIMIT .* OFFSET .*`).
		WillReturnRows(sqlmock.NewRows([]string{"fiscal_year_id", "year_description", "start_date", "end_date", "is_current", "is_open"}).
			AddRow(2, "2025", time.Now(), time.Now(), true, true))

	ys, err := s.FiscalYears().List(context.Background(), 20, 20)

	require.NoError(t, err)
	require.Len(t, ys, 1)
	assert.Equal(t, uint8(2), ys[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LookupQueryShape(t *testing.T) {
	s, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE "level1" = \$1 AND "level2" = \$2 ORDER BY account_id`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"account_id", "account_name", "level1", "level2", "level3", "level4", "user_id", "remarks"}))

	one, two := int16(1), int16(2)
	accs, err := s.Accounts().Lookup(context.Background(), ledger.AccountFilter{Level1: &one, Level2: &two})

	require.NoError(t, err)
	assert.Empty(t, accs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Count(t *testing.T) {
	s, mock, mockDB := newMockStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "account_ledgers"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := s.Ledgers().Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialector(t *testing.T) {
	d, err := Dialector("sqlite", "file::memory:")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "file::memory:?_foreign_keys=1", withForeignKeys("file::memory:"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", withForeignKeys("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=0", withForeignKeys("file:x?_fk=0"))

	d, err = Dialector("postgres", "postgres://localhost/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector("oracle", "")
	assert.Error(t, err)
}
