// Package storage defines the repository contract shared by every backend.
//
// A repository reads one entity type with a fixed default ordering and stages
// writes in a Tx. Nothing reaches the backend until Commit, which applies the
// staged operations atomically and reports the affected row count.
package storage

import (
	"context"
	"errors"

	"github.com/tinoosan/awqaf/internal/ledger"
)

// ErrTxDone is returned when a Tx is used after Commit or Rollback.
var ErrTxDone = errors.New("storage: transaction already committed or rolled back")

// Reader is the query side of a repository. Get returns errs.ErrNotFound for
// an absent key.
type Reader[K comparable, T ledger.Keyed[K], F any] interface {
	Count(ctx context.Context) (int64, error)
	// List returns limit rows starting at offset in the default ordering.
	List(ctx context.Context, offset, limit int) ([]T, error)
	// Lookup returns every row matching f in the default ordering.
	Lookup(ctx context.Context, f F) ([]T, error)
	Get(ctx context.Context, key K) (T, error)
}

// Repository adds staged writes to a Reader.
type Repository[K comparable, T ledger.Keyed[K], F any] interface {
	Reader[K, T, F]
	Begin() *Tx[K, T]
}

// Store bundles the four repositories of one backend.
type Store interface {
	FiscalYears() Repository[uint8, ledger.FiscalYear, ledger.FiscalYearFilter]
	Accounts() Repository[int32, ledger.Account, ledger.AccountFilter]
	Ledgers() Repository[ledger.LedgerKey, ledger.AccountLedger, ledger.LedgerFilter]
	Vouchers() Repository[int32, ledger.Voucher, ledger.VoucherFilter]
	Ready(ctx context.Context) error
	Close()
}

// OpKind is the type of a staged operation.
type OpKind int

const (
	OpAdd OpKind = iota + 1
	OpUpdate
	OpRemove
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op is one staged write. Item is set for add/update, Key for every kind.
type Op[K comparable, T any] struct {
	Kind OpKind
	Key  K
	Item T
}

// Applier executes staged operations in a single backend transaction. An
// update or remove that matches no row fails the whole batch with
// errs.ErrNotFound; a duplicate key fails it with errs.ErrConflict.
type Applier[K comparable, T any] interface {
	Apply(ctx context.Context, ops []Op[K, T]) (int64, error)
}

// Tx stages writes for one request. It is not safe for concurrent use.
type Tx[K comparable, T ledger.Keyed[K]] struct {
	applier Applier[K, T]
	ops     []Op[K, T]
	done    bool
}

// NewTx returns an empty Tx that commits through a.
func NewTx[K comparable, T ledger.Keyed[K]](a Applier[K, T]) *Tx[K, T] {
	return &Tx[K, T]{applier: a}
}

func (t *Tx[K, T]) Add(item T) { t.ops = append(t.ops, Op[K, T]{Kind: OpAdd, Key: item.Key(), Item: item}) }

func (t *Tx[K, T]) Update(item T) {
	t.ops = append(t.ops, Op[K, T]{Kind: OpUpdate, Key: item.Key(), Item: item})
}

func (t *Tx[K, T]) Remove(key K) { t.ops = append(t.ops, Op[K, T]{Kind: OpRemove, Key: key}) }

// Pending reports the number of staged operations.
func (t *Tx[K, T]) Pending() int { return len(t.ops) }

// Commit applies the staged operations and returns the affected row count.
func (t *Tx[K, T]) Commit(ctx context.Context) (int64, error) {
	if t.done {
		return 0, ErrTxDone
	}
	t.done = true
	ops := t.ops
	t.ops = nil
	if len(ops) == 0 {
		return 0, nil
	}
	return t.applier.Apply(ctx, ops)
}

// Rollback discards the staged operations.
func (t *Tx[K, T]) Rollback() {
	t.done = true
	t.ops = nil
}
