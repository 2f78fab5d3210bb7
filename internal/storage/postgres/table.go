package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// cond is one equality predicate of a lookup.
type cond struct {
	col string
	arg any
}

// tableDef maps one entity onto a table. Key and data columns are listed in
// the order keyArgs and dataArgs produce their values; selectList must scan in
// the order scan expects.
type tableDef[K comparable, T ledger.Keyed[K], F any] struct {
	name       string
	keyCols    []string
	dataCols   []string
	selectList string
	orderBy    string
	// casts overrides the placeholder for a column, e.g. "$%d::text::numeric".
	casts    map[string]string
	scan     func(pgx.Row) (T, error)
	keyArgs  func(K) []any
	dataArgs func(T) []any
	filter   func(F) []cond
}

// table is a generic repository over a pgx pool.
type table[K comparable, T ledger.Keyed[K], F any] struct {
	pool *pgxpool.Pool
	def  tableDef[K, T, F]

	countSQL  string
	listSQL   string
	getSQL    string
	insertSQL string
	updateSQL string
	deleteSQL string
}

func newTable[K comparable, T ledger.Keyed[K], F any](pool *pgxpool.Pool, def tableDef[K, T, F]) *table[K, T, F] {
	t := &table[K, T, F]{pool: pool, def: def}
	sel := "select " + def.selectList + " from " + def.name
	t.countSQL = "select count(*) from " + def.name
	t.listSQL = sel + " order by " + def.orderBy + " limit $1 offset $2"
	t.getSQL = sel + " where " + t.assign(def.keyCols, 1, " and ")

	cols := append(append([]string{}, def.keyCols...), def.dataCols...)
	ph := make([]string, len(cols))
	for i, c := range cols {
		ph[i] = t.placeholder(c, i+1)
	}
	t.insertSQL = "insert into " + def.name + " (" + strings.Join(cols, ", ") + ") values (" + strings.Join(ph, ", ") + ")"
	t.updateSQL = "update " + def.name + " set " + t.assign(def.dataCols, 1, ", ") +
		" where " + t.assign(def.keyCols, len(def.dataCols)+1, " and ")
	t.deleteSQL = "delete from " + def.name + " where " + t.assign(def.keyCols, 1, " and ")
	return t
}

func (t *table[K, T, F]) placeholder(col string, n int) string {
	if f, ok := t.def.casts[col]; ok {
		return fmt.Sprintf(f, n)
	}
	return "$" + strconv.Itoa(n)
}

// assign renders "col = $n" for each column starting at placeholder first.
func (t *table[K, T, F]) assign(cols []string, first int, sep string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " = " + t.placeholder(c, first+i)
	}
	return strings.Join(parts, sep)
}

func (t *table[K, T, F]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.pool.QueryRow(ctx, t.countSQL).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *table[K, T, F]) List(ctx context.Context, offset, limit int) ([]T, error) {
	return t.query(ctx, t.listSQL, limit, offset)
}

func (t *table[K, T, F]) Lookup(ctx context.Context, f F) ([]T, error) {
	conds := t.def.filter(f)
	q := "select " + t.def.selectList + " from " + t.def.name
	args := make([]any, 0, len(conds))
	if len(conds) > 0 {
		parts := make([]string, len(conds))
		for i, c := range conds {
			parts[i] = c.col + " = $" + strconv.Itoa(i+1)
			args = append(args, c.arg)
		}
		q += " where " + strings.Join(parts, " and ")
	}
	q += " order by " + t.def.orderBy
	return t.query(ctx, q, args...)
}

func (t *table[K, T, F]) Get(ctx context.Context, key K) (T, error) {
	v, err := t.def.scan(t.pool.QueryRow(ctx, t.getSQL, t.def.keyArgs(key)...))
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, errs.ErrNotFound
	}
	return v, err
}

func (t *table[K, T, F]) query(ctx context.Context, sql string, args ...any) ([]T, error) {
	rows, err := t.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := t.def.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t *table[K, T, F]) Begin() *storage.Tx[K, T] { return storage.NewTx[K, T](t) }

// Apply runs ops inside one database transaction.
func (t *table[K, T, F]) Apply(ctx context.Context, ops []storage.Op[K, T]) (int64, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var affected int64
	for _, op := range ops {
		var (
			ct  pgconn.CommandTag
			err error
		)
		switch op.Kind {
		case storage.OpAdd:
			args := append(t.def.keyArgs(op.Key), t.def.dataArgs(op.Item)...)
			ct, err = tx.Exec(ctx, t.insertSQL, args...)
		case storage.OpUpdate:
			args := append(t.def.dataArgs(op.Item), t.def.keyArgs(op.Key)...)
			ct, err = tx.Exec(ctx, t.updateSQL, args...)
		case storage.OpRemove:
			ct, err = tx.Exec(ctx, t.deleteSQL, t.def.keyArgs(op.Key)...)
		default:
			return 0, fmt.Errorf("%s: unknown op %d", t.def.name, op.Kind)
		}
		if err != nil {
			return 0, fmt.Errorf("%s %s: %w", t.def.name, op.Kind, mapErr(err))
		}
		if ct.RowsAffected() == 0 {
			return 0, fmt.Errorf("%s %s %v: %w", t.def.name, op.Kind, op.Key, errs.ErrNotFound)
		}
		affected += ct.RowsAffected()
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, mapErr(err)
	}
	return affected, nil
}

// mapErr classifies constraint violations.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505", "23503":
		return fmt.Errorf("%w: %s", errs.ErrConflict, pgErr.Message)
	case "23514", "22003", "22007", "22008":
		return fmt.Errorf("%w: %s", errs.ErrInvalid, pgErr.Message)
	default:
		return err
	}
}
