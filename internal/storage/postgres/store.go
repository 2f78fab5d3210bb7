// Package postgres provides a pgx-backed storage implementation of the
// repositories used by the service layer.
//
// The schema lives in the embedded migrations directory and is applied with
// Migrate. This package maps entities to SQL rows; each repository is a
// generic table configured with its columns, ordering and filters.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// Store holds a pgx connection pool and the four repositories built on it.
// All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool

	fiscalYears *table[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]
	accounts    *table[int32, ledger.Account, ledger.AccountFilter]
	ledgers     *table[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]
	vouchers    *table[int32, ledger.Voucher, ledger.VoucherFilter]
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{
		pool:        pool,
		fiscalYears: newTable(pool, fiscalYearDef),
		accounts:    newTable(pool, accountDef),
		ledgers:     newTable(pool, ledgerDef),
		vouchers:    newTable(pool, voucherDef),
	}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) FiscalYears() storage.Repository[uint8, ledger.FiscalYear, ledger.FiscalYearFilter] {
	return s.fiscalYears
}

func (s *Store) Accounts() storage.Repository[int32, ledger.Account, ledger.AccountFilter] {
	return s.accounts
}

func (s *Store) Ledgers() storage.Repository[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter] {
	return s.ledgers
}

func (s *Store) Vouchers() storage.Repository[int32, ledger.Voucher, ledger.VoucherFilter] {
	return s.vouchers
}

var _ storage.Store = (*Store)(nil)

// --- Fiscal years ---

var fiscalYearDef = tableDef[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]{
	name:       "fiscal_years",
	keyCols:    []string{"fiscal_year_id"},
	dataCols:   []string{"year_description", "start_date", "end_date", "is_current", "is_open"},
	selectList: "fiscal_year_id, year_description, start_date, end_date, is_current, is_open",
	orderBy:    "year_description, fiscal_year_id",
	scan: func(row pgx.Row) (ledger.FiscalYear, error) {
		var y ledger.FiscalYear
		var id int16
		if err := row.Scan(&id, &y.Description, &y.StartDate, &y.EndDate, &y.IsCurrent, &y.IsOpen); err != nil {
			return ledger.FiscalYear{}, err
		}
		y.ID = uint8(id)
		return y, nil
	},
	keyArgs: func(k uint8) []any { return []any{int16(k)} },
	dataArgs: func(y ledger.FiscalYear) []any {
		return []any{y.Description, y.StartDate, y.EndDate, y.IsCurrent, y.IsOpen}
	},
	filter: func(f ledger.FiscalYearFilter) []cond {
		var cs []cond
		if f.Year != nil {
			cs = append(cs, cond{"year_description", *f.Year})
		}
		if f.IsCurrent != nil {
			cs = append(cs, cond{"is_current", *f.IsCurrent})
		}
		if f.IsOpen != nil {
			cs = append(cs, cond{"is_open", *f.IsOpen})
		}
		return cs
	},
}

// --- Accounts ---

var accountDef = tableDef[int32, ledger.Account, ledger.AccountFilter]{
	name:       "accounts",
	keyCols:    []string{"account_id"},
	dataCols:   []string{"account_name", "level1", "level2", "level3", "level4", "user_id", "remarks"},
	selectList: "account_id, account_name, level1, level2, level3, level4, user_id, remarks",
	orderBy:    "account_id",
	scan: func(row pgx.Row) (ledger.Account, error) {
		var a ledger.Account
		err := row.Scan(&a.ID, &a.Name, &a.Level1, &a.Level2, &a.Level3, &a.Level4, &a.UserID, &a.Remarks)
		return a, err
	},
	keyArgs: func(k int32) []any { return []any{k} },
	dataArgs: func(a ledger.Account) []any {
		return []any{a.Name, a.Level1, a.Level2, a.Level3, a.Level4, a.UserID, a.Remarks}
	},
	filter: func(f ledger.AccountFilter) []cond {
		var cs []cond
		for _, l := range []struct {
			col string
			v   *int16
		}{{"level1", f.Level1}, {"level2", f.Level2}, {"level3", f.Level3}, {"level4", f.Level4}} {
			if l.v != nil {
				cs = append(cs, cond{l.col, *l.v})
			}
		}
		return cs
	},
}

// --- Account ledgers ---

var ledgerDef = tableDef[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]{
	name:       "account_ledgers",
	keyCols:    []string{"fiscal_year_id", "account_id", "ledger_no"},
	dataCols:   []string{"ledger", "remarks", "user_id"},
	selectList: "fiscal_year_id, account_id, ledger_no, ledger, remarks, user_id",
	orderBy:    "fiscal_year_id, account_id, ledger_no",
	scan: func(row pgx.Row) (ledger.AccountLedger, error) {
		var l ledger.AccountLedger
		var fy int16
		if err := row.Scan(&fy, &l.AccountID, &l.LedgerNo, &l.Description, &l.Remarks, &l.UserID); err != nil {
			return ledger.AccountLedger{}, err
		}
		l.FiscalYearID = uint8(fy)
		return l, nil
	},
	keyArgs: func(k ledger.LedgerKey) []any { return []any{int16(k.FiscalYearID), k.AccountID, k.LedgerNo} },
	dataArgs: func(l ledger.AccountLedger) []any {
		return []any{l.Description, l.Remarks, l.UserID}
	},
	filter: func(f ledger.LedgerFilter) []cond { return keyConds(f.KeyFilter) },
}

// --- Vouchers ---

var voucherDef = tableDef[int32, ledger.Voucher, ledger.VoucherFilter]{
	name:     "vouchers",
	keyCols:  []string{"voucher_id"},
	dataCols: []string{"fiscal_year_id", "account_id", "ledger_no", "voucher_no", "voucher_date", "side", "amount", "narration", "user_id"},
	selectList: "voucher_id, fiscal_year_id, account_id, ledger_no, voucher_no, voucher_date, side, " +
		"amount::text, narration, user_id",
	orderBy: "voucher_id",
	casts:   map[string]string{"amount": "$%d::text::numeric"},
	scan: func(row pgx.Row) (ledger.Voucher, error) {
		var v ledger.Voucher
		var fy int16
		var side, amount string
		if err := row.Scan(&v.ID, &fy, &v.AccountID, &v.LedgerNo, &v.VoucherNo, &v.Date, &side, &amount, &v.Narration, &v.UserID); err != nil {
			return ledger.Voucher{}, err
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return ledger.Voucher{}, err
		}
		v.FiscalYearID = uint8(fy)
		v.Side = ledger.Side(side)
		v.Amount = amt
		return v, nil
	},
	keyArgs: func(k int32) []any { return []any{k} },
	dataArgs: func(v ledger.Voucher) []any {
		return []any{int16(v.FiscalYearID), v.AccountID, v.LedgerNo, v.VoucherNo, v.Date, string(v.Side), v.Amount.String(), v.Narration, v.UserID}
	},
	filter: func(f ledger.VoucherFilter) []cond { return keyConds(f.KeyFilter) },
}

func keyConds(f ledger.KeyFilter) []cond {
	var cs []cond
	if f.FiscalYearID != nil {
		cs = append(cs, cond{"fiscal_year_id", int16(*f.FiscalYearID)})
	}
	if f.AccountID != nil {
		cs = append(cs, cond{"account_id", *f.AccountID})
	}
	if f.LedgerNo != nil {
		cs = append(cs, cond{"ledger_no", *f.LedgerNo})
	}
	return cs
}
