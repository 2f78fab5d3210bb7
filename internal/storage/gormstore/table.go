package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/storage"
)

// model is a persistence model convertible to its entity.
type model[T any] interface {
	ToDomain() T
}

// table is a generic gorm repository. M is the persistence model of T.
type table[K comparable, T ledger.Keyed[K], F any, M model[T]] struct {
	db      *gorm.DB
	name    string
	order   string
	toModel func(T) M
	// keyWhere returns the column conditions identifying one row.
	keyWhere func(K) map[string]any
	// filter returns the column conditions of a lookup; nil means no filter.
	filter func(F) map[string]any
}

func (t *table[K, T, F, M]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(new(M)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", t.name, err)
	}
	return n, nil
}

func (t *table[K, T, F, M]) List(ctx context.Context, offset, limit int) ([]T, error) {
	var ms []M
	if err := t.db.WithContext(ctx).Order(t.order).Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	return toDomain[T](ms), nil
}

func (t *table[K, T, F, M]) Lookup(ctx context.Context, f F) ([]T, error) {
	q := t.db.WithContext(ctx)
	if where := t.filter(f); len(where) > 0 {
		q = q.Where(where)
	}
	var ms []M
	if err := q.Order(t.order).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("lookup %s: %w", t.name, err)
	}
	return toDomain[T](ms), nil
}

func (t *table[K, T, F, M]) Get(ctx context.Context, key K) (T, error) {
	var m M
	err := t.db.WithContext(ctx).Where(t.keyWhere(key)).Take(&m).Error
	if err != nil {
		var zero T
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, errs.ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", t.name, err)
	}
	return m.ToDomain(), nil
}

func (t *table[K, T, F, M]) Begin() *storage.Tx[K, T] { return storage.NewTx[K, T](t) }

// Apply runs ops inside a gorm transaction.
func (t *table[K, T, F, M]) Apply(ctx context.Context, ops []storage.Op[K, T]) (int64, error) {
	var affected int64
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var res *gorm.DB
			switch op.Kind {
			case storage.OpAdd:
				m := t.toModel(op.Item)
				res = tx.Create(&m)
			case storage.OpUpdate:
				m := t.toModel(op.Item)
				res = tx.Model(&m).Where(t.keyWhere(op.Key)).Select("*").Updates(&m)
			case storage.OpRemove:
				res = tx.Where(t.keyWhere(op.Key)).Delete(new(M))
			default:
				return fmt.Errorf("%s: unknown op %d", t.name, op.Kind)
			}
			if res.Error != nil {
				return fmt.Errorf("%s %s: %w", t.name, op.Kind, mapErr(res.Error))
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%s %s %v: %w", t.name, op.Kind, op.Key, errs.ErrNotFound)
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// mapErr classifies translated gorm errors.
func mapErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: duplicate key", errs.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: foreign key violated", errs.ErrConflict)
	default:
		return err
	}
}

func toDomain[T any, M model[T]](ms []M) []T {
	out := make([]T, len(ms))
	for i, m := range ms {
		out[i] = m.ToDomain()
	}
	return out
}
