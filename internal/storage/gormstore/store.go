// Package gormstore implements the repositories on gorm, with sqlite and
// postgres dialects. The schema is created with AutoMigrate.
package gormstore

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// Store holds a gorm connection and the four repositories built on it.
type Store struct {
	db *gorm.DB

	fiscalYears *table[uint8, ledger.FiscalYear, ledger.FiscalYearFilter, FiscalYearModel]
	accounts    *table[int32, ledger.Account, ledger.AccountFilter, AccountModel]
	ledgers     *table[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter, AccountLedgerModel]
	vouchers    *table[int32, ledger.Voucher, ledger.VoucherFilter, VoucherModel]
}

// Dialector returns the gorm dialector for a dialect name ("sqlite" or "postgres").
func Dialector(dialect, dsn string) (gorm.Dialector, error) {
	switch dialect {
	case "sqlite", "":
		return sqlite.Open(withForeignKeys(dsn)), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported gorm dialect %q", dialect)
	}
}

// withForeignKeys turns on sqlite foreign key enforcement for every pooled
// connection unless the DSN already sets it.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// Open connects through d and verifies the connection.
func Open(ctx context.Context, d gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(d, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := New(db)
	if err := s.Ready(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return s, nil
}

// New builds a Store on an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{
		db: db,
		fiscalYears: &table[uint8, ledger.FiscalYear, ledger.FiscalYearFilter, FiscalYearModel]{
			db:       db,
			name:     "fiscal_years",
			order:    "year_description, fiscal_year_id",
			toModel:  fiscalYearModel,
			keyWhere: func(k uint8) map[string]any { return map[string]any{"fiscal_year_id": int16(k)} },
			filter: func(f ledger.FiscalYearFilter) map[string]any {
				w := map[string]any{}
				if f.Year != nil {
					w["year_description"] = *f.Year
				}
				if f.IsCurrent != nil {
					w["is_current"] = *f.IsCurrent
				}
				if f.IsOpen != nil {
					w["is_open"] = *f.IsOpen
				}
				return w
			},
		},
		accounts: &table[int32, ledger.Account, ledger.AccountFilter, AccountModel]{
			db:       db,
			name:     "accounts",
			order:    "account_id",
			toModel:  accountModel,
			keyWhere: func(k int32) map[string]any { return map[string]any{"account_id": k} },
			filter: func(f ledger.AccountFilter) map[string]any {
				w := map[string]any{}
				for col, v := range map[string]*int16{"level1": f.Level1, "level2": f.Level2, "level3": f.Level3, "level4": f.Level4} {
					if v != nil {
						w[col] = *v
					}
				}
				return w
			},
		},
		ledgers: &table[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter, AccountLedgerModel]{
			db:       db,
			name:     "account_ledgers",
			order:    "fiscal_year_id, account_id, ledger_no",
			toModel:  accountLedgerModel,
			keyWhere: func(k ledger.LedgerKey) map[string]any { return keyWhere(ledger.Exact(k)) },
			filter:   func(f ledger.LedgerFilter) map[string]any { return keyWhere(f.KeyFilter) },
		},
		vouchers: &table[int32, ledger.Voucher, ledger.VoucherFilter, VoucherModel]{
			db:       db,
			name:     "vouchers",
			order:    "voucher_id",
			toModel:  voucherModel,
			keyWhere: func(k int32) map[string]any { return map[string]any{"voucher_id": k} },
			filter:   func(f ledger.VoucherFilter) map[string]any { return keyWhere(f.KeyFilter) },
		},
	}
}

func keyWhere(f ledger.KeyFilter) map[string]any {
	w := map[string]any{}
	if f.FiscalYearID != nil {
		w["fiscal_year_id"] = int16(*f.FiscalYearID)
	}
	if f.AccountID != nil {
		w["account_id"] = *f.AccountID
	}
	if f.LedgerNo != nil {
		w["ledger_no"] = *f.LedgerNo
	}
	return w
}

// AutoMigrate creates or updates the tables for every model.
func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(AllModels()...)
}

// Ready pings the underlying sql.DB.
func (s *Store) Ready(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

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
