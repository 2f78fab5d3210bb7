package ledger

import (
	"cmp"
	"strings"
)

// Filters hold optional equality predicates. A nil field imposes no
// constraint; set fields are combined with AND.

// FiscalYearFilter selects fiscal years.
type FiscalYearFilter struct {
	Year      *string
	IsCurrent *bool
	IsOpen    *bool
}

func (f FiscalYearFilter) Match(y FiscalYear) bool {
	if f.Year != nil && *f.Year != y.Description {
		return false
	}
	if f.IsCurrent != nil && *f.IsCurrent != y.IsCurrent {
		return false
	}
	if f.IsOpen != nil && *f.IsOpen != y.IsOpen {
		return false
	}
	return true
}

// AccountFilter selects accounts by their hierarchy level codes.
type AccountFilter struct {
	Level1 *int16
	Level2 *int16
	Level3 *int16
	Level4 *int16
}

func (f AccountFilter) Match(a Account) bool {
	return eq(f.Level1, a.Level1) && eq(f.Level2, a.Level2) && eq(f.Level3, a.Level3) && eq(f.Level4, a.Level4)
}

// KeyFilter is a partial LedgerKey.
type KeyFilter struct {
	FiscalYearID *uint8
	AccountID    *int32
	LedgerNo     *int32
}

// MatchKey reports whether k satisfies every set component.
func (f KeyFilter) MatchKey(k LedgerKey) bool {
	return eq(f.FiscalYearID, k.FiscalYearID) && eq(f.AccountID, k.AccountID) && eq(f.LedgerNo, k.LedgerNo)
}

// Exact returns a filter matching exactly one ledger key.
func Exact(k LedgerKey) KeyFilter {
	return KeyFilter{FiscalYearID: &k.FiscalYearID, AccountID: &k.AccountID, LedgerNo: &k.LedgerNo}
}

// LedgerFilter selects account ledgers by any part of their key.
type LedgerFilter struct{ KeyFilter }

func (f LedgerFilter) Match(l AccountLedger) bool { return f.MatchKey(l.LedgerKey) }

// VoucherFilter selects vouchers by the ledger they are posted to.
type VoucherFilter struct{ KeyFilter }

func (f VoucherFilter) Match(v Voucher) bool { return f.MatchKey(v.LedgerKey) }

func eq[T comparable](want *T, got T) bool { return want == nil || *want == got }

// Default orderings. Listings and lookups sort with these so that paging is
// deterministic.

func CompareFiscalYears(a, b FiscalYear) int {
	if c := strings.Compare(a.Description, b.Description); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func CompareAccounts(a, b Account) int { return cmp.Compare(a.ID, b.ID) }

func CompareLedgerKeys(a, b LedgerKey) int {
	if c := cmp.Compare(a.FiscalYearID, b.FiscalYearID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.AccountID, b.AccountID); c != 0 {
		return c
	}
	return cmp.Compare(a.LedgerNo, b.LedgerNo)
}

func CompareLedgers(a, b AccountLedger) int { return CompareLedgerKeys(a.LedgerKey, b.LedgerKey) }

func CompareVouchers(a, b Voucher) int { return cmp.Compare(a.ID, b.ID) }
