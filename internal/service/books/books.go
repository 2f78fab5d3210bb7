// Package books assembles the entity services of the ledger and enforces the
// references between them: an account ledger needs its fiscal year and
// account, a voucher needs its account ledger, and parents with dependents
// cannot be deleted.
package books

import (
	"context"
	"errors"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/service/crud"
	"github.com/tinoosan/awqaf/internal/storage"
)

type (
	FiscalYearService = crud.Service[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]
	AccountService    = crud.Service[int32, ledger.Account, ledger.AccountFilter]
	LedgerService     = crud.Service[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]
	VoucherService    = crud.Service[int32, ledger.Voucher, ledger.VoucherFilter]
)

// Options tune every service.
type Options struct {
	MaxItemsPerPage int
}

// Books holds one service per entity.
type Books struct {
	FiscalYears FiscalYearService
	Accounts    AccountService
	Ledgers     LedgerService
	Vouchers    VoucherService
}

// New wires the services over store.
func New(store storage.Store, opts Options) *Books {
	years, accounts, ledgers, vouchers := store.FiscalYears(), store.Accounts(), store.Ledgers(), store.Vouchers()
	r := refs{years: years, accounts: accounts, ledgers: ledgers, vouchers: vouchers}

	return &Books{
		FiscalYears: crud.New[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]("fiscal year", years, years,
			crud.Config[uint8, ledger.FiscalYear]{
				MaxItemsPerPage: opts.MaxItemsPerPage,
				CheckRemove:     r.fiscalYearRemovable,
			}),
		Accounts: crud.New[int32, ledger.Account, ledger.AccountFilter]("account", accounts, accounts,
			crud.Config[int32, ledger.Account]{
				MaxItemsPerPage: opts.MaxItemsPerPage,
				CheckRemove:     r.accountRemovable,
			}),
		Ledgers: crud.New[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]("account ledger", ledgers, ledgers,
			crud.Config[ledger.LedgerKey, ledger.AccountLedger]{
				MaxItemsPerPage: opts.MaxItemsPerPage,
				CheckRefs:       r.ledgerParentsExist,
				CheckRemove:     r.ledgerRemovable,
			}),
		Vouchers: crud.New[int32, ledger.Voucher, ledger.VoucherFilter]("voucher", vouchers, vouchers,
			crud.Config[int32, ledger.Voucher]{
				MaxItemsPerPage: opts.MaxItemsPerPage,
				CheckRefs:       r.voucherLedgerExists,
			}),
	}
}

type refs struct {
	years    storage.Reader[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]
	accounts storage.Reader[int32, ledger.Account, ledger.AccountFilter]
	ledgers  storage.Reader[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]
	vouchers storage.Reader[int32, ledger.Voucher, ledger.VoucherFilter]
}

func (r refs) ledgerParentsExist(ctx context.Context, l ledger.AccountLedger) error {
	if err := exists(ctx, r.years, l.FiscalYearID); err != nil {
		return missing(err, "fiscal year %d does not exist", l.FiscalYearID)
	}
	if err := exists(ctx, r.accounts, l.AccountID); err != nil {
		return missing(err, "account %d does not exist", l.AccountID)
	}
	return nil
}

func (r refs) voucherLedgerExists(ctx context.Context, v ledger.Voucher) error {
	k := v.Ledger()
	if err := exists(ctx, r.ledgers, k); err != nil {
		return missing(err, "account ledger %d/%d/%d does not exist", k.FiscalYearID, k.AccountID, k.LedgerNo)
	}
	return nil
}

func (r refs) fiscalYearRemovable(ctx context.Context, id uint8) error {
	ls, err := r.ledgers.Lookup(ctx, ledger.LedgerFilter{KeyFilter: ledger.KeyFilter{FiscalYearID: &id}})
	if err != nil {
		return err
	}
	if len(ls) > 0 {
		return errs.Conflict("fiscal year %d has %d account ledger(s)", id, len(ls))
	}
	return nil
}

func (r refs) accountRemovable(ctx context.Context, id int32) error {
	ls, err := r.ledgers.Lookup(ctx, ledger.LedgerFilter{KeyFilter: ledger.KeyFilter{AccountID: &id}})
	if err != nil {
		return err
	}
	if len(ls) > 0 {
		return errs.Conflict("account %d has %d account ledger(s)", id, len(ls))
	}
	return nil
}

func (r refs) ledgerRemovable(ctx context.Context, k ledger.LedgerKey) error {
	vs, err := r.vouchers.Lookup(ctx, ledger.VoucherFilter{KeyFilter: ledger.Exact(k)})
	if err != nil {
		return err
	}
	if len(vs) > 0 {
		return errs.Conflict("account ledger %d/%d/%d has %d voucher(s)", k.FiscalYearID, k.AccountID, k.LedgerNo, len(vs))
	}
	return nil
}

func exists[K comparable, T ledger.Keyed[K], F any](ctx context.Context, r storage.Reader[K, T, F], key K) error {
	_, err := r.Get(ctx, key)
	return err
}

// missing turns a not-found parent into errs.ErrUnprocessable and passes any
// other failure through.
func missing(err error, format string, args ...any) error {
	if errors.Is(err, errs.ErrNotFound) {
		return errs.Unprocessable(format, args...)
	}
	return err
}
