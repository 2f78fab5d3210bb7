package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func migrateAndTruncate(t *testing.T, dsn string) {
	t.Helper()
	if _, err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := mustOpen(t, dsn)
	defer s.Close()
	if _, err := s.pool.Exec(ctx, `truncate table vouchers, account_ledgers, accounts, fiscal_years cascade`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/db":   "pgx5://u:p@localhost:5432/db",
		"postgresql://u:p@localhost:5432/db": "pgx5://u:p@localhost:5432/db",
		"pgx5://already":                     "pgx5://already",
	}
	for in, want := range cases {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStore_CRUDAndPaging(t *testing.T) {
	dsn := getTestDSN(t)
	migrateAndTruncate(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := mustOpen(t, dsn)
	defer s.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tx := s.FiscalYears().Begin()
	tx.Add(ledger.FiscalYear{ID: 1, Description: "2024", StartDate: start, EndDate: start.AddDate(1, 0, -1), IsCurrent: true, IsOpen: true})
	if _, err := tx.Commit(ctx); err != nil {
		t.Fatalf("add fiscal year: %v", err)
	}

	atx := s.Accounts().Begin()
	for i := int32(1); i <= 45; i++ {
		atx.Add(ledger.Account{ID: i, Name: "Account", Level1: int16(i % 3)})
	}
	n, err := atx.Commit(ctx)
	if err != nil || n != 45 {
		t.Fatalf("add accounts: n=%d err=%v", n, err)
	}

	total, err := s.Accounts().Count(ctx)
	if err != nil || total != 45 {
		t.Fatalf("count: %d %v", total, err)
	}
	page, err := s.Accounts().List(ctx, 20, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 20 || page[0].ID != 21 || page[19].ID != 40 {
		t.Fatalf("unexpected page 2: first=%d len=%d", page[0].ID, len(page))
	}

	// duplicate key
	dup := s.Accounts().Begin()
	dup.Add(ledger.Account{ID: 1, Name: "Dup"})
	if _, err := dup.Commit(ctx); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// update of absent id
	upd := s.Accounts().Begin()
	upd.Update(ledger.Account{ID: 999, Name: "Ghost"})
	if _, err := upd.Commit(ctx); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Accounts().Get(ctx, 999); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected absent after update, got %v", err)
	}

	key := ledger.LedgerKey{FiscalYearID: 1, AccountID: 7, LedgerNo: 1}
	ltx := s.Ledgers().Begin()
	ltx.Add(ledger.AccountLedger{LedgerKey: key, Description: "Main"})
	if _, err := ltx.Commit(ctx); err != nil {
		t.Fatalf("add ledger: %v", err)
	}

	vtx := s.Vouchers().Begin()
	vtx.Add(ledger.Voucher{ID: 1, LedgerKey: key, VoucherNo: 1, Date: start, Side: ledger.SideDebit, Amount: decimal.RequireFromString("1250.75"), Narration: "Opening"})
	if _, err := vtx.Commit(ctx); err != nil {
		t.Fatalf("add voucher: %v", err)
	}
	v, err := s.Vouchers().Get(ctx, 1)
	if err != nil {
		t.Fatalf("get voucher: %v", err)
	}
	if !v.Amount.Equal(decimal.RequireFromString("1250.75")) || v.Side != ledger.SideDebit || v.LedgerKey != key {
		t.Fatalf("voucher round trip mismatch: %+v", v)
	}
	if !v.Date.Equal(start) || v.VoucherNo != 1 || v.Narration != "Opening" || v.UserID != nil {
		t.Fatalf("voucher round trip mismatch: %+v", v)
	}

	y, err := s.FiscalYears().Get(ctx, 1)
	if err != nil {
		t.Fatalf("get fiscal year: %v", err)
	}
	if !y.StartDate.Equal(start) || !y.EndDate.Equal(start.AddDate(1, 0, -1)) || y.Description != "2024" || !y.IsCurrent || !y.IsOpen {
		t.Fatalf("fiscal year round trip mismatch: %+v", y)
	}

	// the largest amount the domain accepts survives unchanged; one past it is a 22003
	big := decimal.RequireFromString("9999999999999999.99")
	btx := s.Vouchers().Begin()
	btx.Add(ledger.Voucher{ID: 2, LedgerKey: key, VoucherNo: 2, Date: start, Side: ledger.SideCredit, Amount: big})
	if _, err := btx.Commit(ctx); err != nil {
		t.Fatalf("add max voucher: %v", err)
	}
	if got, err := s.Vouchers().Get(ctx, 2); err != nil || !got.Amount.Equal(big) {
		t.Fatalf("max amount round trip: %+v %v", got, err)
	}
	otx := s.Vouchers().Begin()
	otx.Add(ledger.Voucher{ID: 3, LedgerKey: key, VoucherNo: 3, Date: start, Side: ledger.SideCredit, Amount: ledger.MaxAmount})
	if _, err := otx.Commit(ctx); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("expected invalid for numeric overflow, got %v", err)
	}

	fy := uint8(1)
	vs, err := s.Vouchers().Lookup(ctx, ledger.VoucherFilter{KeyFilter: ledger.KeyFilter{FiscalYearID: &fy}})
	if err != nil || len(vs) != 2 {
		t.Fatalf("lookup vouchers: %d %v", len(vs), err)
	}

	// FK restrict: ledger with vouchers cannot be removed
	rm := s.Ledgers().Begin()
	rm.Remove(key)
	if _, err := rm.Commit(ctx); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict removing ledger with vouchers, got %v", err)
	}
}
