// Package memory provides an in-memory implementation used for development and tests.
// Each entity lives in its own Table guarded by an RWMutex.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// Matcher is implemented by the ledger filter types.
type Matcher[T any] interface {
	Match(T) bool
}

// Table stores one entity type keyed by its identity.
type Table[K comparable, T ledger.Keyed[K], F Matcher[T]] struct {
	mu      sync.RWMutex
	name    string
	rows    map[K]T
	compare func(a, b T) int
}

// NewTable returns an empty table sorted by compare.
func NewTable[K comparable, T ledger.Keyed[K], F Matcher[T]](name string, compare func(a, b T) int) *Table[K, T, F] {
	return &Table[K, T, F]{name: name, rows: make(map[K]T), compare: compare}
}

func (t *Table[K, T, F]) Count(_ context.Context) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int64(len(t.rows)), nil
}

// List sorts before slicing so pages partition the collection.
func (t *Table[K, T, F]) List(_ context.Context, offset, limit int) ([]T, error) {
	t.mu.RLock()
	all := t.sorted(func(T) bool { return true })
	t.mu.RUnlock()
	if offset < 0 || limit < 0 {
		return nil, errs.Invalid("offset and limit must not be negative")
	}
	if offset >= len(all) {
		return []T{}, nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (t *Table[K, T, F]) Lookup(_ context.Context, f F) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sorted(f.Match), nil
}

func (t *Table[K, T, F]) Get(_ context.Context, key K) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[key]
	if !ok {
		var zero T
		return zero, errs.ErrNotFound
	}
	return v, nil
}

func (t *Table[K, T, F]) Begin() *storage.Tx[K, T] { return storage.NewTx[K, T](t) }

// Apply runs ops under the write lock. On the first failure every op already
// applied in the batch is undone.
func (t *Table[K, T, F]) Apply(ctx context.Context, ops []storage.Op[K, T]) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	type undo struct {
		key     K
		prev    T
		existed bool
	}
	var log []undo
	rollback := func() {
		for i := len(log) - 1; i >= 0; i-- {
			u := log[i]
			if u.existed {
				t.rows[u.key] = u.prev
			} else {
				delete(t.rows, u.key)
			}
		}
	}

	var affected int64
	for _, op := range ops {
		prev, exists := t.rows[op.Key]
		switch op.Kind {
		case storage.OpAdd:
			if exists {
				rollback()
				return 0, fmt.Errorf("%s %v: %w", t.name, op.Key, errs.ErrConflict)
			}
			t.rows[op.Key] = op.Item
		case storage.OpUpdate:
			if !exists {
				rollback()
				return 0, fmt.Errorf("%s %v: %w", t.name, op.Key, errs.ErrNotFound)
			}
			t.rows[op.Key] = op.Item
		case storage.OpRemove:
			if !exists {
				rollback()
				return 0, fmt.Errorf("%s %v: %w", t.name, op.Key, errs.ErrNotFound)
			}
			delete(t.rows, op.Key)
		default:
			rollback()
			return 0, fmt.Errorf("%s: unknown op %d", t.name, op.Kind)
		}
		log = append(log, undo{key: op.Key, prev: prev, existed: exists})
		affected++
	}
	return affected, nil
}

// Seed inserts or replaces rows directly, bypassing staging.
func (t *Table[K, T, F]) Seed(items ...T) {
	t.mu.Lock()
	for _, it := range items {
		t.rows[it.Key()] = it
	}
	t.mu.Unlock()
}

func (t *Table[K, T, F]) reset() {
	t.mu.Lock()
	t.rows = make(map[K]T)
	t.mu.Unlock()
}

// sorted must be called with at least the read lock held.
func (t *Table[K, T, F]) sorted(keep func(T) bool) []T {
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, t.compare)
	return out
}

// Store is the in-memory backend holding all four tables.
type Store struct {
	fiscalYears *Table[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]
	accounts    *Table[int32, ledger.Account, ledger.AccountFilter]
	ledgers     *Table[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]
	vouchers    *Table[int32, ledger.Voucher, ledger.VoucherFilter]
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		fiscalYears: NewTable[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]("fiscal year", ledger.CompareFiscalYears),
		accounts:    NewTable[int32, ledger.Account, ledger.AccountFilter]("account", ledger.CompareAccounts),
		ledgers:     NewTable[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]("account ledger", ledger.CompareLedgers),
		vouchers:    NewTable[int32, ledger.Voucher, ledger.VoucherFilter]("voucher", ledger.CompareVouchers),
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

// Seed helpers for local dev/tests.
func (s *Store) SeedFiscalYear(ys ...ledger.FiscalYear) { s.fiscalYears.Seed(ys...) }
func (s *Store) SeedAccount(as ...ledger.Account)       { s.accounts.Seed(as...) }
func (s *Store) SeedLedger(ls ...ledger.AccountLedger)  { s.ledgers.Seed(ls...) }
func (s *Store) SeedVoucher(vs ...ledger.Voucher)       { s.vouchers.Seed(vs...) }

func (s *Store) Reset() {
	s.fiscalYears.reset()
	s.accounts.reset()
	s.ledgers.reset()
	s.vouchers.reset()
}

// Ready always succeeds for the in-memory backend.
func (s *Store) Ready(context.Context) error { return nil }

func (s *Store) Close() {}
